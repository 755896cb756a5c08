package audit

import "context"

type requestMetaKey struct{}

// RequestMeta is the HTTP request information copied onto audit entries.
type RequestMeta struct {
	RequestID string
	ClientIP  string
	UserAgent string
}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the zero value outside of a request.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}
