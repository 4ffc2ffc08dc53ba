package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/verification/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func TestStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	store := New(WithClock(newFakeClock()))

	token, err := store.Create(ctx, entity.Session{
		AccountID:   "735269466602",
		Phone:       "+918085745154",
		DisplayName: "Asha Kumari",
		Password:    "Password1",
		Region:      "MP",
		Subregion:   "Indore",
		ProviderID:  "prov-1",
	})
	require.NoError(t, err)
	assert.Len(t, token, 64)

	sess, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, token, sess.Token)
	assert.Equal(t, "735269466602", sess.AccountID)
	assert.Equal(t, "+918085745154", sess.Phone)
	assert.False(t, sess.CreatedAt.IsZero())
}

func TestStoreGetUnissuedToken(t *testing.T) {
	store := New()

	_, err := store.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestStoreTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	store := New()

	seen := make(map[string]struct{})
	for range 100 {
		token, err := store.Create(ctx, entity.Session{AccountID: "735269466602"})
		require.NoError(t, err)

		_, dup := seen[token]
		require.False(t, dup, "token issued twice: %s", token)
		seen[token] = struct{}{}
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	token, err := store.Create(ctx, entity.Session{AccountID: "735269466602"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, token))

	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	// deleting again is a no-op
	assert.NoError(t, store.Delete(ctx, token))
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	store := New(WithClock(clk))

	token, err := store.Create(ctx, entity.Session{AccountID: "735269466602"})
	require.NoError(t, err)

	clk.Advance(9 * time.Minute)
	_, err = store.Get(ctx, token)
	require.NoError(t, err, "session should still be valid before the TTL")

	clk.Advance(2 * time.Minute)
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestStoreSweepRemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	store := New(WithClock(clk))

	old, err := store.Create(ctx, entity.Session{AccountID: "735269466602"})
	require.NoError(t, err)

	clk.Advance(11 * time.Minute)

	fresh, err := store.Create(ctx, entity.Session{AccountID: "735269466603"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, old)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	_, err = store.Get(ctx, fresh)
	assert.NoError(t, err)
}

func TestStoreStartStop(t *testing.T) {
	store := New(WithSweepInterval(10 * time.Millisecond))
	store.Start()
	store.Start() // no-op
	store.Stop()
	store.Stop() // idempotent
}

func TestStoreStopWithoutStart(t *testing.T) {
	store := New()

	done := make(chan struct{})
	go func() {
		store.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a store that was never started")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := New()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range 50 {
				token, err := store.Create(ctx, entity.Session{AccountID: "735269466602"})
				if err != nil {
					t.Error(err)
					return
				}
				if _, err := store.Get(ctx, token); err != nil {
					t.Error(err)
					return
				}
				if err := store.Delete(ctx, token); err != nil {
					t.Error(err)
					return
				}
				store.Sweep()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, store.Len())
}
