package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dosada05/chess-league/services"
)

// Authenticator checks basic credentials and bearer tokens.
// services.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) error
	ParseToken(tokenString string) (*services.Claims, error)
}

// Authenticate accepts either HTTP Basic credentials or a Bearer token.
func Authenticate(auth Authenticator) func(http.Handler) http.Handler {
	return authenticate(auth, false)
}

// AuthenticateWebSocket is Authenticate that also takes the bearer token from
// the ?token= query parameter when the Authorization header is absent.
// Browsers cannot set headers on a websocket handshake.
func AuthenticateWebSocket(auth Authenticator) func(http.Handler) http.Handler {
	return authenticate(auth, true)
}

func authenticate(auth Authenticator, queryToken bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := authenticateRequest(auth, r, queryToken)
			if !ok {
				w.Header().Add("WWW-Authenticate", `Basic realm="chess-league"`)
				w.Header().Add("WWW-Authenticate", `Bearer realm="chess-league"`)
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(withSubject(r.Context(), subject)))
		})
	}
}

func authenticateRequest(auth Authenticator, r *http.Request, queryToken bool) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		token := r.URL.Query().Get("token")
		if !queryToken || token == "" {
			return "", false
		}
		return parseBearer(auth, r, token)
	}

	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return parseBearer(auth, r, strings.TrimSpace(token))
	}

	username, password, ok := r.BasicAuth()
	if !ok {
		return "", false
	}
	if err := auth.Authenticate(r.Context(), username, password); err != nil {
		LoggerFromContext(r.Context()).Warn("basic credentials rejected", "username", username)
		return "", false
	}
	return username, true
}

func parseBearer(auth Authenticator, r *http.Request, token string) (string, bool) {
	claims, err := auth.ParseToken(token)
	if err != nil {
		LoggerFromContext(r.Context()).Debug("bearer token rejected", "error", err)
		return "", false
	}
	return claims.Subject, true
}
