package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Window is how long a stored session stays restorable after its last write.
const Window = 8 * time.Hour

// Expired reports whether a session stamped at ts is outside the window at now.
// Exactly Window old is still valid.
func Expired(ts, now time.Time) bool {
	return now.Sub(ts) > Window
}

// Session is the per-request view of who is logged in and where they are.
type Session struct {
	Token        string
	Usuario      string
	State        State
	NombreCentro string
	Timestamp    time.Time
}

// Authenticated reports whether the session belongs to a logged-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.Usuario != "" && s.State.Screen() != ScreenLogin
}

// NewToken returns an opaque, unguessable session token.
func NewToken() string {
	return uuid.NewString()
}

type contextKey struct{}

// WithSession stores the session in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext retrieves the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
