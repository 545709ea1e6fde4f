package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyTraceID       = "traceId"
	KeySpanID        = "spanId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyRequest       = "request"
	KeyRequestBody   = "requestBody"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyConfig        = "config"
	KeyDbURL         = "dbURL"
	KeySessionID     = "sessionId"
	KeyUserID        = "userId"
	KeyOrderID       = "orderId"
	KeyOrderItems    = "orderItems"
	KeyCartItemID    = "cartItemId"
	KeyCartItems     = "cartItems"
	KeyCartTotal     = "cartTotal"
	KeyCacheKey      = "cacheKey"
	KeyAction        = "action"
	KeyPhase         = "phase"
	KeyStatusCode    = "statusCode"
	KeyURL           = "url"
	KeyPathValues    = "pathValues"
)
