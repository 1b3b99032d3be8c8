package auth

import "context"

type principalContextKey struct{}

// ContextWithPrincipal attaches the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, principal AuthenticatedPrincipal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext extracts the authenticated principal from the context.
func PrincipalFromContext(ctx context.Context) (AuthenticatedPrincipal, bool) {
	if ctx == nil {
		return AuthenticatedPrincipal{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(AuthenticatedPrincipal)
	if !ok || v.ID == "" {
		return AuthenticatedPrincipal{}, false
	}
	return v, true
}
