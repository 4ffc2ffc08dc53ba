package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

type stubUUID struct{ id string }

func (g stubUUID) Generate() string { return g.id }

func testConfig() Config {
	return Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:    "idgate",
		Audiences: []string{"idgate-clients"},
		TTL:       time.Hour,
		Clock:     stubClock{now: time.Now()},
		UUID:      stubUUID{id: "token-id-1"},
	}
}

func TestNewHS512RejectsShortSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Secret = []byte("too-short")

	_, err := NewHS512(cfg)
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestSymmetricGenerateVerify(t *testing.T) {
	s, err := NewHS512(testConfig())
	require.NoError(t, err)

	token, err := s.Generate("provider-sub-1", "+918085745154")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "provider-sub-1", claims.Subject)
	assert.Equal(t, "+918085745154", claims.Phone)
	assert.Equal(t, "idgate", claims.Issuer)
	assert.Equal(t, "token-id-1", claims.ID)
}

func TestSymmetricVerifyExpired(t *testing.T) {
	cfg := testConfig()
	cfg.Clock = stubClock{now: time.Now().Add(-2 * time.Hour)}

	s, err := NewHS512(cfg)
	require.NoError(t, err)

	token, err := s.Generate("provider-sub-1", "+918085745154")
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSymmetricVerifyWrongSecret(t *testing.T) {
	s, err := NewHS512(testConfig())
	require.NoError(t, err)

	token, err := s.Generate("provider-sub-1", "+918085745154")
	require.NoError(t, err)

	other := testConfig()
	other.Secret = []byte("fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210")
	s2, err := NewHS512(other)
	require.NoError(t, err)

	_, err = s2.Verify(token)
	assert.Error(t, err)
}
