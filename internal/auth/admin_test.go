package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolutally/matchbox-web/internal/config"
)

func TestAdminAuthenticator_Plain(t *testing.T) {
	a := NewAdminAuthenticator(&config.Config{AdminPassword: "s3cret"})
	ctx := context.Background()

	assert.True(t, a.Configured())
	assert.NoError(t, a.Verify(ctx, "s3cret"))
	assert.ErrorIs(t, a.Verify(ctx, "S3CRET"), ErrInvalidSecret)
	assert.ErrorIs(t, a.Verify(ctx, "s3cret "), ErrInvalidSecret)
	assert.ErrorIs(t, a.Verify(ctx, ""), ErrInvalidSecret)
}

func TestAdminAuthenticator_Hash(t *testing.T) {
	hash, err := HashSecret("hashed-secret")
	require.NoError(t, err)

	a := NewAdminAuthenticator(&config.Config{
		AdminPassword:     "plain-secret",
		AdminPasswordHash: hash,
	})
	ctx := context.Background()

	assert.NoError(t, a.Verify(ctx, "hashed-secret"))
	// The hash wins over the plain value
	assert.ErrorIs(t, a.Verify(ctx, "plain-secret"), ErrInvalidSecret)
}

func TestAdminAuthenticator_MalformedHashFallsBackToPlain(t *testing.T) {
	a := NewAdminAuthenticator(&config.Config{
		AdminPassword:     "plain-secret",
		AdminPasswordHash: "not-a-bcrypt-hash",
	})
	assert.NoError(t, a.Verify(context.Background(), "plain-secret"))
}

func TestAdminAuthenticator_NotConfigured(t *testing.T) {
	a := NewAdminAuthenticator(&config.Config{})
	ctx := context.Background()

	assert.False(t, a.Configured())
	assert.ErrorIs(t, a.Verify(ctx, ""), ErrSecretNotConfigured)
	assert.ErrorIs(t, a.Verify(ctx, "anything"), ErrSecretNotConfigured)
}
