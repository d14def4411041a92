package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const sidKey ctxKey = "sid"

// SIDCookie identifies the anonymous browser session used for wizard state and
// flash messages. Separate from the auth cookie: it exists before sign-up.
const SIDCookie = "pc_sid"

// SessionID guarantees every request carries a session ID, minting a cookie on
// first contact.
func SessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(SIDCookie); err == nil && c.Value != "" {
			sid = c.Value
		} else {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SIDCookie,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sidKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetSessionID(ctx context.Context) string {
	if v, ok := ctx.Value(sidKey).(string); ok {
		return v
	}
	return ""
}
