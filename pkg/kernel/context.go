package kernel

// ContextKey keys values stored in fiber Locals or context.Context
type ContextKey string

const (
	// SessionKey holds the *auth.Session of the current request, when any
	SessionKey ContextKey = "auth_session"

	// RequestIDKey holds the request id
	RequestIDKey ContextKey = "request_id"
)
