package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/todovault/todovault/pkg/apierr"
	"github.com/todovault/todovault/pkg/jwtx"
	"github.com/todovault/todovault/pkg/slogx"
)

// AuthnMiddleware enforces `Authorization: Bearer <token>` using the access
// token verifier. CORS pre-flight requests bypass all checks. On success the
// decoded claims are attached to the request context for downstream handlers.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				apierr.Unauthorized("Not authorized").Write(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				apierr.Unauthorized("Not authorized").Write(w)
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
