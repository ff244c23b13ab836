package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cardregistry/internal/cache"
)

func TestTokenStore_WithoutRedis(t *testing.T) {
	store := NewTokenStore(nil)
	ctx := context.Background()

	assert.Error(t, store.Revoke(ctx, "token-id", time.Minute))
	assert.False(t, store.IsRevoked(ctx, "token-id"))
}

func TestTokenStore_RevokeReportsUnreachableRedis(t *testing.T) {
	// Nothing listens on port 1.
	c := cache.New("127.0.0.1:1", "", 0)
	defer c.Close()
	store := NewTokenStore(c)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := store.Revoke(ctx, "token-id", time.Minute)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store revoked token")
	assert.False(t, store.IsRevoked(ctx, "token-id"))
}

func TestTokenStore_SkipsExpiredTokens(t *testing.T) {
	store := NewTokenStore(nil)

	assert.NoError(t, store.Revoke(context.Background(), "token-id", -time.Second))
}
