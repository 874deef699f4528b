package middleware

import (
	"net/http"
	"time"

	"inspecciones/backend/services/cuadros-service/internal/session"
)

// Cookie names.
const (
	SessionCookieName = "cuadros_sesion"
	LogoutCookieName  = "cuadros_logout"
)

// CookieJar reads and writes the signed session cookie and the one-shot logout flag.
type CookieJar struct {
	codec  *session.CookieCodec
	secure bool
}

// NewCookieJar builds a jar. secure marks cookies HTTPS only.
func NewCookieJar(codec *session.CookieCodec, secure bool) *CookieJar {
	return &CookieJar{codec: codec, secure: secure}
}

// Ready reports whether cookies can be signed.
func (j *CookieJar) Ready() bool {
	return j.codec.Configured()
}

// Write stores the session mirror in the client.
func (j *CookieJar) Write(w http.ResponseWriter, sess *session.Session) error {
	value, err := j.codec.Encode(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, j.cookie(SessionCookieName, value, sess.Timestamp.Add(session.Window)))
	return nil
}

// Read decodes the session cookie. A missing cookie is http.ErrNoCookie.
func (j *CookieJar) Read(r *http.Request) (*session.Claims, error) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}
	return j.codec.Decode(c.Value)
}

// Clear removes the session cookie.
func (j *CookieJar) Clear(w http.ResponseWriter) {
	http.SetCookie(w, j.expired(SessionCookieName))
}

// MarkLogout sets the flag that makes the next request skip session restore.
func (j *CookieJar) MarkLogout(w http.ResponseWriter) {
	c := j.cookie(LogoutCookieName, "1", time.Time{})
	c.MaxAge = 60
	http.SetCookie(w, c)
}

// ConsumeLogout reports whether the flag was present and removes it.
func (j *CookieJar) ConsumeLogout(w http.ResponseWriter, r *http.Request) bool {
	if _, err := r.Cookie(LogoutCookieName); err != nil {
		return false
	}
	http.SetCookie(w, j.expired(LogoutCookieName))
	return true
}

func (j *CookieJar) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (j *CookieJar) expired(name string) *http.Cookie {
	c := j.cookie(name, "", time.Unix(0, 0))
	c.MaxAge = -1
	return c
}
