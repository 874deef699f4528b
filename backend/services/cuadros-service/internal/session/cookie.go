package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrCookieInvalid covers tampered, malformed or expired cookies.
var ErrCookieInvalid = errors.New("session: invalid cookie")

// minSecretLen matches the HS256 key size.
const minSecretLen = 32

// Claims mirror the server-side record in the client cookie.
type Claims struct {
	Usuario            string `json:"usuario"`
	Pagina             string `json:"pagina"`
	CentroSeleccionado *int64 `json:"centro_seleccionado,omitempty"`
	Timestamp          string `json:"timestamp"`
	jwt.RegisteredClaims
}

// Token returns the server-side session token carried by the cookie.
func (c *Claims) Token() string {
	return c.ID
}

// CookieCodec signs and verifies the session cookie.
type CookieCodec struct {
	secret []byte
	now    func() time.Time
}

// NewCookieCodec builds a codec. now may be nil.
func NewCookieCodec(secret string, now func() time.Time) *CookieCodec {
	if now == nil {
		now = time.Now
	}
	return &CookieCodec{secret: []byte(secret), now: now}
}

// Configured reports whether the signing key is usable.
func (c *CookieCodec) Configured() bool {
	return c != nil && len(c.secret) >= minSecretLen
}

// Encode signs the four mirrored fields plus the session token.
func (c *CookieCodec) Encode(s *Session) (string, error) {
	if !c.Configured() {
		return "", errors.New("session: cookie secret not configured")
	}
	claims := Claims{
		Usuario:            s.Usuario,
		Pagina:             s.State.Screen().Pagina(),
		CentroSeleccionado: s.State.CentroPtr(),
		Timestamp:          s.Timestamp.Format(time.RFC3339Nano),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.Token,
			Subject:   s.Usuario,
			IssuedAt:  jwt.NewNumericDate(s.Timestamp),
			ExpiresAt: jwt.NewNumericDate(s.Timestamp.Add(Window)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies the cookie and returns its claims.
// The expiry check has a minute of leeway; Expired on the server record is the precise bound.
func (c *CookieCodec) Decode(raw string) (*Claims, error) {
	if !c.Configured() || raw == "" {
		return nil, ErrCookieInvalid
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(time.Minute),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrCookieInvalid
	}
	if claims.Usuario == "" || claims.ID == "" {
		return nil, ErrCookieInvalid
	}
	return claims, nil
}

// StampedAt parses the mirrored timestamp.
func (c *Claims) StampedAt() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, c.Timestamp)
}
