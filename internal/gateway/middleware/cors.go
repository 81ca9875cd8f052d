package middleware

import (
	"net/http"
	"slices"
	"strings"
)

const (
	corsAllowHeaders  = "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms, Connect-Content-Encoding, Connect-Accept-Encoding, X-User-Agent"
	corsExposeHeaders = "Content-Disposition, Connect-Content-Encoding, Connect-Accept-Encoding"
)

// OriginAllowed reports whether a browser origin may talk to the gateway.
// Requests without an Origin header and an empty allow-list always pass.
func OriginAllowed(allowedOrigins []string, origin string) bool {
	origin = strings.TrimSpace(origin)
	return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
}

// CORS lets browser clients call the gateway. With no allowed origins every
// origin is accepted; otherwise requests from other origins get no CORS
// headers.
func CORS(allowedOrigins ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			switch {
			case origin == "":
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case OriginAllowed(allowedOrigins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			default:
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
			w.Header().Set("Access-Control-Expose-Headers", corsExposeHeaders)
			if r.Method == http.MethodOptions {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
