package session

import "context"

type contextKey struct{}

// NewContext returns ctx carrying the verified claims of the current request.
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// FromContext returns the claims attached by the auth gate, if any.
func FromContext(ctx context.Context) (*Claims, bool) {
	if ctx == nil {
		return nil, false
	}
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}
