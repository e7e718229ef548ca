package audit

import "context"

// RequestInfo is the request metadata stamped on every security event
type RequestInfo struct {
	IPAddress string
	UserAgent string
	Method    string
	Path      string
	RequestID string
}

type requestInfoKey struct{}

// WithRequest stores request metadata in the context
func WithRequest(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestFrom returns the request metadata stored in ctx, if any
func RequestFrom(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}
