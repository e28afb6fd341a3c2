package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/snippetlab/auth/pkg/jwtx"
	"github.com/snippetlab/auth/pkg/slogx"
)

// Verifier validates a bearer token and returns its claims. Satisfied by
// *jwtx.Codec.
type Verifier interface {
	Verify(token string, now time.Time) (jwtx.Claims, error)
}

// AuthnMiddleware authenticates requests from the Authorization header.
// Only ACCESS tokens are accepted here; a refresh token presented as a
// bearer credential is rejected regardless of its signature.
func AuthnMiddleware(v Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw, time.Now().UTC())
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("bearer token rejected", "err", err)
				return
			}

			if claims.Type != jwtx.TypeAccess {
				writeBearerError(w, "access token required")
				log.Warn("non-access token presented as bearer credential")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose role claim is not one of
// the listed roles.
func RequireRole(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := want[RoleFromCtx(r.Context())]; !ok {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyEmail, c.Email)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
