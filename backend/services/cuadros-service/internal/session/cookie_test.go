package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestCookieCodecRoundTrip(t *testing.T) {
	stamped := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	codec := NewCookieCodec(testSecret, func() time.Time { return stamped.Add(time.Hour) })

	st, err := Authenticated().SelectCentro(5)
	require.NoError(t, err)

	raw, err := codec.Encode(&Session{Token: "tok", Usuario: "ana", State: st, Timestamp: stamped})
	require.NoError(t, err)

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Usuario)
	assert.Equal(t, "gestion", claims.Pagina)
	require.NotNil(t, claims.CentroSeleccionado)
	assert.Equal(t, int64(5), *claims.CentroSeleccionado)
	assert.Equal(t, "tok", claims.Token())

	at, err := claims.StampedAt()
	require.NoError(t, err)
	assert.True(t, stamped.Equal(at))
}

func TestCookieCodecRejectsExpired(t *testing.T) {
	stamped := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	now := stamped
	codec := NewCookieCodec(testSecret, func() time.Time { return now })

	raw, err := codec.Encode(&Session{Token: "tok", Usuario: "ana", State: Authenticated(), Timestamp: stamped})
	require.NoError(t, err)

	now = stamped.Add(Window + 2*time.Minute)
	_, err = codec.Decode(raw)
	assert.ErrorIs(t, err, ErrCookieInvalid)
}

func TestCookieCodecRejectsTampering(t *testing.T) {
	codec := NewCookieCodec(testSecret, nil)
	raw, err := codec.Encode(&Session{Token: "tok", Usuario: "ana", State: Authenticated(), Timestamp: time.Now()})
	require.NoError(t, err)

	other := NewCookieCodec(strings.Repeat("x", 32), nil)
	_, err = other.Decode(raw)
	assert.ErrorIs(t, err, ErrCookieInvalid)

	_, err = codec.Decode(raw + "x")
	assert.ErrorIs(t, err, ErrCookieInvalid)

	_, err = codec.Decode("")
	assert.ErrorIs(t, err, ErrCookieInvalid)
}

func TestCookieCodecConfigured(t *testing.T) {
	assert.False(t, NewCookieCodec("short", nil).Configured())
	assert.True(t, NewCookieCodec(testSecret, nil).Configured())

	_, err := NewCookieCodec("short", nil).Encode(&Session{})
	assert.Error(t, err)
}
