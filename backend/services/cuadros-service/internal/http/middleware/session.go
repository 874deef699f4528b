package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/session"
)

// SessionRestorer rebuilds sessions from cookie claims.
type SessionRestorer interface {
	Restore(ctx context.Context, claims *session.Claims) (*session.Session, error)
	Ready(ctx context.Context) bool
}

// LoadSession puts the current session in the request context. A logged-out
// session is stored when there is nothing to restore. While the cookie
// subsystem is unavailable every request is answered by notReady.
func LoadSession(jar *CookieJar, restorer SessionRestorer, notReady http.Handler, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			anonymous := &session.Session{State: session.LoggedOut()}

			if jar.ConsumeLogout(w, r) {
				next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), anonymous)))
				return
			}

			if !jar.Ready() || !restorer.Ready(r.Context()) {
				notReady.ServeHTTP(w, r)
				return
			}

			sess := anonymous
			claims, err := jar.Read(r)
			switch {
			case errors.Is(err, http.ErrNoCookie):
			case err != nil:
				logger.Debug("discarding session cookie", zap.Error(err))
				jar.Clear(w)
			default:
				restored, err := restorer.Restore(r.Context(), claims)
				if err != nil {
					jar.Clear(w)
				} else {
					sess = restored
				}
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}
