package storefront

import (
	"context"
	"net/http"

	"RocketShoes/pkg/kit"
)

type ctxKey string

const sessionKey ctxKey = "session_id"

func SessionFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey).(string)
	return id, ok && id != ""
}

func RequireSession(m *SessionMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing session", nil)
				return
			}

			id, err := m.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid session", nil)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionKeyOf keys rate limiting by session once RequireSession has run.
func sessionKeyOf(r *http.Request) string {
	id, _ := SessionFromContext(r.Context())
	return id
}
