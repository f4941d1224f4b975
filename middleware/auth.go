package middleware

import (
	"context"
	"net/http"
	"strings"

	"notes-api/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenVerifier is satisfied by *auth.Issuer.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// ClaimsFromContext returns the verified token claims of the request, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// OptionalAuth lets requests without an Authorization header through
// untouched. A header that is present must carry a valid bearer token, and its
// claims are put on the request context.
func OptionalAuth(tokens TokenVerifier, errs *ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifyHeader(tokens, header)
			if err != nil {
				errs.Respond(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func verifyHeader(tokens TokenVerifier, header string) (*auth.Claims, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, auth.ErrInvalidToken
	}
	return tokens.Verify(strings.TrimSpace(token))
}
