package view

import "fmt"

type Phase int

const (
	Idle Phase = iota
	Collecting
	Submitting
	Succeeded
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Collecting:
		return "collecting"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is the whole view state. Err overlays Idle and Collecting and is
// always empty in the other phases.
type State struct {
	Err   string
	Phase Phase
}

const (
	MessageSubmitFailed = "Something is wrong. Please try later"
	MessageSending      = "Sending data"
	MessageSucceeded    = "Data successfully sent"
)
