package magiclink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingToken(value, email string, ttl time.Duration) Token {
	now := time.Now().UTC()
	return Token{
		Token:     value,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestInMemoryRepositoryConsumeIfValid(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("ConsumesPendingToken", func(t *testing.T) {
		repo := NewInMemoryRepository()
		require.NoError(t, repo.Create(ctx, pendingToken("tok-1", "a@x.com", time.Minute)))

		consumed, err := repo.ConsumeIfValid(ctx, "tok-1", now)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", consumed.Email)
		assert.True(t, consumed.Consumed())
	})

	t.Run("SecondConsumeFails", func(t *testing.T) {
		repo := NewInMemoryRepository()
		require.NoError(t, repo.Create(ctx, pendingToken("tok-1", "a@x.com", time.Minute)))

		_, err := repo.ConsumeIfValid(ctx, "tok-1", now)
		require.NoError(t, err)

		_, err = repo.ConsumeIfValid(ctx, "tok-1", now)
		assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
	})

	t.Run("UnknownTokenFails", func(t *testing.T) {
		repo := NewInMemoryRepository()
		_, err := repo.ConsumeIfValid(ctx, "missing", now)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("ExpiredTokenFailsBeforeSweep", func(t *testing.T) {
		repo := NewInMemoryRepository()
		require.NoError(t, repo.Create(ctx, pendingToken("tok-1", "a@x.com", time.Minute)))

		// Redemption attempted just past expiry, token not yet swept
		_, err := repo.ConsumeIfValid(ctx, "tok-1", now.Add(time.Minute+time.Second))
		assert.ErrorIs(t, err, ErrTokenExpired)

		// Still present for disambiguation
		_, err = repo.Get(ctx, "tok-1")
		assert.NoError(t, err)
	})
}

func TestInMemoryRepositoryConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	require.NoError(t, repo.Create(ctx, pendingToken("tok-race", "a@x.com", time.Minute)))

	const attempts = 50
	now := time.Now().UTC()

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ConsumeIfValid(ctx, "tok-race", now)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, alreadyUsed int
	for err := range results {
		switch {
		case err == nil:
			successes++
		default:
			assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
			alreadyUsed++
		}
	}

	assert.Equal(t, 1, successes, "exactly one concurrent redemption must win")
	assert.Equal(t, attempts-1, alreadyUsed)
}

func TestInMemoryRepositoryDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, pendingToken("live", "a@x.com", time.Hour)))
	require.NoError(t, repo.Create(ctx, pendingToken("dead-1", "a@x.com", -time.Minute)))
	require.NoError(t, repo.Create(ctx, pendingToken("dead-2", "b@x.com", -time.Hour)))

	deleted, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = repo.Get(ctx, "live")
	assert.NoError(t, err)
	_, err = repo.Get(ctx, "dead-1")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestInMemoryRepositoryCountPendingByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, pendingToken("t1", "a@x.com", time.Hour)))
	require.NoError(t, repo.Create(ctx, pendingToken("t2", "a@x.com", time.Hour)))
	require.NoError(t, repo.Create(ctx, pendingToken("t3", "a@x.com", -time.Minute)))
	require.NoError(t, repo.Create(ctx, pendingToken("t4", "b@x.com", time.Hour)))

	_, err := repo.ConsumeIfValid(ctx, "t2", now)
	require.NoError(t, err)

	count, err := repo.CountPendingByEmail(ctx, "a@x.com", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
