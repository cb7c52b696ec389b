package magiclink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		value, err := GenerateToken()
		require.NoError(t, err)
		// 32 random bytes, unpadded base64url
		assert.Len(t, value, 43)
		assert.False(t, seen[value], "token values must not repeat")
		seen[value] = true
	}
}

func TestServiceIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("StoresPendingToken", func(t *testing.T) {
		repo := NewInMemoryRepository()
		svc := NewService(repo, WithTTL(10*time.Minute))

		issued, err := svc.Issue(ctx, "a@x.com", "/games")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", issued.Email)
		assert.Equal(t, "/games", issued.RedirectURL)
		assert.False(t, issued.Consumed())
		assert.WithinDuration(t, issued.CreatedAt.Add(10*time.Minute), issued.ExpiresAt, time.Second)

		stored, err := repo.Get(ctx, issued.Token)
		require.NoError(t, err)
		assert.Equal(t, issued.Token, stored.Token)
	})

	t.Run("RepeatedIssueKeepsBothValid", func(t *testing.T) {
		repo := NewInMemoryRepository()
		svc := NewService(repo)

		first, err := svc.Issue(ctx, "a@x.com", "")
		require.NoError(t, err)
		second, err := svc.Issue(ctx, "a@x.com", "")
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)

		// Both redeem independently
		_, err = svc.Consume(ctx, second.Token)
		require.NoError(t, err)
		_, err = svc.Consume(ctx, first.Token)
		require.NoError(t, err)
	})
}

func TestServiceConsume(t *testing.T) {
	ctx := context.Background()

	t.Run("ConsumeOnce", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository())
		issued, err := svc.Issue(ctx, "a@x.com", "")
		require.NoError(t, err)

		consumed, err := svc.Consume(ctx, issued.Token)
		require.NoError(t, err)
		assert.True(t, consumed.Consumed())

		_, err = svc.Consume(ctx, issued.Token)
		assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
	})

	t.Run("ExpiredTokenRejected", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository(), WithTTL(-time.Second))
		issued, err := svc.Issue(ctx, "a@x.com", "")
		require.NoError(t, err)

		_, err = svc.Consume(ctx, issued.Token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}
