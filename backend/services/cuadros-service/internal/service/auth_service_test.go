package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuthenticate(t *testing.T) {
	users := &fakeUsers{users: map[string]string{"ana": "hash:secreto"}}
	svc := NewAuthService(users, fakeHasher{}, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, svc.Authenticate(ctx, "ana", "secreto"))
	assert.NoError(t, svc.Authenticate(ctx, "  ana ", "secreto"))
	assert.ErrorIs(t, svc.Authenticate(ctx, "ana", "otro"), ErrInvalidCredentials)
	assert.ErrorIs(t, svc.Authenticate(ctx, "nadie", "secreto"), ErrInvalidCredentials)
}

func TestAuthenticateEmptyFieldsSkipStore(t *testing.T) {
	users := &fakeUsers{users: map[string]string{}}
	svc := NewAuthService(users, fakeHasher{}, zap.NewNop())

	assert.ErrorIs(t, svc.Authenticate(context.Background(), "", "x"), ErrInvalidCredentials)
	assert.ErrorIs(t, svc.Authenticate(context.Background(), "ana", ""), ErrInvalidCredentials)
	assert.Zero(t, users.calls)
}

func TestAuthenticateStoreErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	users := &fakeUsers{err: errors.New("connection refused")}
	svc := NewAuthService(users, fakeHasher{}, zap.New(core))

	err := svc.Authenticate(context.Background(), "ana", "secreto")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, logs.FilterMessage("user lookup failed").Len())
}
