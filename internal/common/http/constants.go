package http

const (
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-Id"
	HeaderValueJson     = "application/json"
	HeaderValueSSE      = "text/event-stream"
	BearerPrefix        = "Bearer "
)
