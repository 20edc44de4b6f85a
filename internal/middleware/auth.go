package middleware

import (
	"net/http"
	"strings"

	"arbor/internal/auth"
	models "arbor/internal/domain/models/vfs"
	"arbor/internal/httputil"
)

// AuthMiddleware validates the bearer token on every request and attaches
// the resulting viewer to the request context. The health endpoint stays
// open for probes.
func AuthMiddleware(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			viewer := models.Viewer{
				UserID: claims.Subject,
				Admin:  claims.IsAdmin(),
			}
			next.ServeHTTP(w, httputil.WithViewer(r, viewer))
		})
	}
}
