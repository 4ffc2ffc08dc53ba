// Package session keeps pending OTP verification attempts in memory.
//
// Sessions are ephemeral: a process restart drops all pending attempts
// and users simply start over. Nothing here is shared across processes.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agrilink/idgate/internal/pkg/clock"
	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/verification/entity"
)

const (
	// DefaultTTL is how long a session stays valid after creation.
	DefaultTTL = 10 * time.Minute
	// DefaultSweepInterval is how often expired sessions are removed.
	DefaultSweepInterval = 5 * time.Minute

	tokenBytes = 32
)

// Store is a concurrency-safe in-memory session store with a background
// sweeper. Callers own the lifecycle: New, then Start, then Stop on shutdown.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entity.Session

	ttl      time.Duration
	interval time.Duration
	clock    clock.Clocker

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

// Option customizes a Store.
type Option func(*Store)

// WithTTL overrides the session time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithSweepInterval overrides the sweeper interval.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) { s.interval = d }
}

// WithClock overrides the time source.
func WithClock(c clock.Clocker) Option {
	return func(s *Store) { s.clock = c }
}

// New creates a session store. The sweeper does not run until Start is called.
func New(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]entity.Session),
		ttl:      DefaultTTL,
		interval: DefaultSweepInterval,
		clock:    clock.New(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the background sweeper goroutine. Calling Start again is a
// no-op.
func (s *Store) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)

		go func() {
			defer close(s.done)

			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					if n := s.Sweep(); n > 0 {
						slog.Info("session store swept expired sessions", "count", n)
					}
				case <-s.stop:
					return
				}
			}
		}()
	})
}

// Stop terminates the sweeper and waits for it to finish. Safe to call more
// than once, and on a store that was never started.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })

	if !s.started.Load() {
		return
	}
	<-s.done
}

// Create stores a new session and returns its freshly generated token. Any
// token or creation time already set on the input is ignored.
func (s *Store) Create(ctx context.Context, sess entity.Session) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	sess.Token = token
	sess.CreatedAt = s.clock.Now()

	s.mu.Lock()
	s.sessions[token] = sess
	s.mu.Unlock()

	return token, nil
}

// Get returns the session for the token. Unissued, deleted and expired
// tokens are indistinguishable: all return goerror.ErrNotFound.
func (s *Store) Get(ctx context.Context, token string) (*entity.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok || s.expired(sess, s.clock.Now()) {
		return nil, goerror.ErrNotFound
	}

	return &sess, nil
}

// Delete removes the session for the token. Deleting an absent token is a
// no-op.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	return nil
}

// Sweep removes all expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, token)
			removed++
		}
	}

	return removed
}

// Len reports the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

func (s *Store) expired(sess entity.Session, now time.Time) bool {
	return now.Sub(sess.CreatedAt) > s.ttl
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
