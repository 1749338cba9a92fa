package providers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"signalkit/internal/structures"
)

// AdminAuthMiddleware guards the admin routes with a static bearer token.
func AdminAuthMiddleware(conf *structures.Config, logger Logger, next http.Handler) http.Handler {
	token := []byte(conf.Admin.Token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		presented, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || len(token) == 0 || subtle.ConstantTimeCompare([]byte(presented), token) != 1 {
			logger.Warnf(GetLogTypeByRequestType(r.Method), "admin auth failed on %s", r.URL.Path)
			w.Header().Set("WWW-Authenticate", `Bearer realm="signalkit"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
