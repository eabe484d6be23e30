package logging

import "context"

// KeyRequestID is the attribute name under which loggers emit the request
// id found in the context.
const KeyRequestID = "request_id"

type requestIDKey struct{}

// WithRequestID returns a copy of ctx that carries id. Loggers add it to
// every entry written with that context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
