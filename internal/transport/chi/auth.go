package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const (
	bearerPrefix = "Bearer "
	// tokenParam carries the API key on websocket upgrades, where browsers cannot set headers.
	tokenParam = "access_token"
)

// publicPaths bypass authentication.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type apiKeys [][]byte

func newAPIKeys(keys []string) apiKeys {
	out := make(apiKeys, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, []byte(k))
		}
	}
	return out
}

// valid compares against every key so timing does not depend on which one matched.
func (k apiKeys) valid(token string) bool {
	match := 0
	for _, key := range k {
		match |= subtle.ConstantTimeCompare(key, []byte(token))
	}
	return match == 1
}

// BearerAuthMiddleware checks the Authorization header against apiKeys.
// An empty key list disables authentication.
func BearerAuthMiddleware(keys []string) func(http.Handler) http.Handler {
	valid := newAPIKeys(keys)

	return func(next http.Handler) http.Handler {
		if len(valid) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := credentials(r)
			if msg != "" {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, msg)
				return
			}
			if !valid.valid(token) {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// credentials extracts the presented token, or a reason it is missing.
func credentials(r *http.Request) (token, problem string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		if isUpgrade(r) {
			if t := r.URL.Query().Get(tokenParam); t != "" {
				return t, ""
			}
		}
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", "authorization header must use Bearer scheme"
	}
	return strings.TrimSpace(auth[len(bearerPrefix):]), ""
}

func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
