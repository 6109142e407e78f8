package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths bypass authentication so probes and scrapers need no key.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

const bearerPrefix = "Bearer "

// BearerAuthMiddleware returns a middleware that validates Bearer tokens against apiKeys.
// Empty keys are ignored; with no keys left authentication is disabled.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := bearerToken(r)
			if msg == "" && !validKey(keys, token) {
				msg = "invalid api key"
			}
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="asset-share"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token, or returns a client-facing reason why it cannot.
func bearerToken(r *http.Request) (string, string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", "authorization header must use Bearer scheme"
	}
	return auth[len(bearerPrefix):], ""
}

// validKey compares against every key in constant time.
func validKey(keys [][]byte, token string) bool {
	t := []byte(token)
	ok := 0
	for _, k := range keys {
		ok |= subtle.ConstantTimeCompare(k, t)
	}
	return ok == 1
}
