package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound means the session token is unknown or expired.
var ErrTokenNotFound = errors.New("session token not found")

// TokenRecord is what the server remembers about an issued session token.
type TokenRecord struct {
	Username string    `json:"username"`
	IssuedAt time.Time `json:"issued_at"`
}

// TokenStore keeps session tokens in redis with a TTL equal to the session window.
type TokenStore struct {
	client *redis.Client
	prefix string
}

// NewTokenStore returns redis-backed store.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client, prefix: "cuadros:session:"}
}

func (s *TokenStore) key(token string) string {
	return fmt.Sprintf("%s%s", s.prefix, token)
}

// Save registers a token for a user.
func (s *TokenStore) Save(ctx context.Context, token, username string, issuedAt time.Time, ttl time.Duration) error {
	if token == "" || username == "" {
		return errors.New("redisstore: token and username are required")
	}
	data, err := json.Marshal(TokenRecord{Username: username, IssuedAt: issuedAt})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(token), data, ttl).Err()
}

// Lookup returns the record behind a token.
func (s *TokenStore) Lookup(ctx context.Context, token string) (*TokenRecord, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	var rec TokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Touch extends the token lifetime after a navigation.
func (s *TokenStore) Touch(ctx context.Context, token string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, s.key(token), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotFound
	}
	return nil
}

// Delete forgets a token. Unknown tokens are ignored.
func (s *TokenStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

// Ping reports whether redis answers.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
