package token

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker tracks refresh token jtis invalidated before their natural
// expiry (logout, rotation).
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RevocationList is the Redis-backed Revoker. Entries live exactly as
// long as the token they block would have.
type RevocationList struct {
	client *redis.Client
	prefix string
}

func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{
		client: client,
		prefix: "revoked:",
	}
}

func (l *RevocationList) key(jti string) string {
	return l.prefix + jti
}

func (l *RevocationList) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil // already expired, nothing to block
	}
	return l.client.Set(ctx, l.key(jti), "1", ttl).Err()
}

func (l *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
