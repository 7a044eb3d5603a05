package utils

import (
	"context"
	"net/http"
	"strings"

	"github.com/inkwell-hq/inkwell/internal/infrastructure/auth"
)

type contextKey string

const claimsKey contextKey = "authClaims"

// WithClaims stores the verified token claims on the request context.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims placed there by the auth
// middleware, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// BearerToken extracts the token from an Authorization header. Returns
// an empty string when the header is absent or not a bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
