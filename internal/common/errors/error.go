package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth          = errors.New("missing authorization")
	ErrEmptyAccessToken   = errors.New("cart has no access token")
	ErrEmptySubject       = errors.New("missing subject")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrBelowMinimumOrder  = errors.New("total amount is below the minimum order amount")
	ErrInvalidTransition  = errors.New("action is not available in the current cart state")
	ErrViewClosed         = errors.New("cart view is closed")
	ErrOrderRejected      = errors.New("order service rejected the order")
	ErrOrderNotFound      = errors.New("order not found")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrUnknownAction      = errors.New("unknown cart action")
	ErrUnknownStoreDriver = errors.New("unknown cart store driver")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
