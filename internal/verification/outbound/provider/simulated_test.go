package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrilink/idgate/internal/pkg/clock"
	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/pkg/jwt"
	"github.com/agrilink/idgate/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulated(t *testing.T) *Simulated {
	t.Helper()

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:    "idgate-test",
		Audiences: []string{"idgate"},
		TTL:       time.Hour,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	return NewSimulated("test-seed", signer, time.Hour)
}

func TestSimulatedSignupConfirmFlow(t *testing.T) {
	ctx := context.Background()
	sim := newTestSimulated(t)

	providerID, err := sim.CreatePendingIdentity(ctx, PendingIdentity{
		Username:    "+918085745154",
		Password:    "Password1",
		Phone:       "+918085745154",
		DisplayName: "Asha Kumari",
		AccountID:   "735269466602",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, providerID)

	identity, err := sim.GetIdentity(ctx, "+918085745154")
	require.NoError(t, err)
	assert.False(t, identity.Confirmed)
	assert.Equal(t, providerID, identity.ProviderID)

	err = sim.ConfirmIdentity(ctx, "+918085745154", "000000")
	require.Error(t, err)
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())

	code, err := sim.DeliveredCode("+918085745154")
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, sim.ConfirmIdentity(ctx, "+918085745154", code))

	identity, err = sim.GetIdentity(ctx, "+918085745154")
	require.NoError(t, err)
	assert.True(t, identity.Confirmed)
}

func TestSimulatedDeliveredCodeDeterministic(t *testing.T) {
	sim := newTestSimulated(t)

	first, err := sim.DeliveredCode("+918085745154")
	require.NoError(t, err)

	second, err := sim.DeliveredCode("+918085745154")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := sim.DeliveredCode("+911111111111")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestSimulatedProviderIDDeterministic(t *testing.T) {
	ctx := context.Background()
	sim := newTestSimulated(t)

	first, err := sim.CreatePendingIdentity(ctx, PendingIdentity{Username: "+918085745154", Password: "Password1"})
	require.NoError(t, err)

	second, err := sim.CreatePendingIdentity(ctx, PendingIdentity{Username: "+918085745154", Password: "Password1"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSimulatedResendUnknownUser(t *testing.T) {
	sim := newTestSimulated(t)

	err := sim.ResendCode(context.Background(), "+910000000000")
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, goerror.CodeNotFound, gerr.Code())
}

func TestSimulatedPasswordAuthenticate(t *testing.T) {
	ctx := context.Background()
	sim := newTestSimulated(t)

	_, err := sim.CreatePendingIdentity(ctx, PendingIdentity{Username: "+918085745154", Password: "Password1"})
	require.NoError(t, err)

	// unconfirmed identities cannot log in
	_, err = sim.PasswordAuthenticate(ctx, "+918085745154", "Password1")
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, goerror.CodeInvalidInput, gerr.Code())

	code, err := sim.DeliveredCode("+918085745154")
	require.NoError(t, err)
	require.NoError(t, sim.ConfirmIdentity(ctx, "+918085745154", code))

	_, err = sim.PasswordAuthenticate(ctx, "+918085745154", "WrongPass1")
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())

	tokens, err := sim.PasswordAuthenticate(ctx, "+918085745154", "Password1")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.IDToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Positive(t, tokens.ExpiresIn)
}

func TestSimulatedLoginChallenge(t *testing.T) {
	ctx := context.Background()
	sim := newTestSimulated(t)

	sim.RegisterConfirmed("+918085745154", "Password1", "sim-preseed")

	// no challenge opened yet
	err := sim.CompleteLoginChallenge(ctx, "+918085745154", "000000")
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())

	require.NoError(t, sim.BeginLoginChallenge(ctx, "+918085745154"))

	// wrong code keeps the challenge open
	err = sim.CompleteLoginChallenge(ctx, "+918085745154", "000000")
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())

	code, err := sim.DeliveredCode("+918085745154")
	require.NoError(t, err)
	require.NoError(t, sim.CompleteLoginChallenge(ctx, "+918085745154", code))

	// consumed: a second answer needs a new challenge
	err = sim.CompleteLoginChallenge(ctx, "+918085745154", code)
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
}

func TestSimulatedLoginChallengeRequiresConfirmedUser(t *testing.T) {
	ctx := context.Background()
	sim := newTestSimulated(t)

	err := sim.BeginLoginChallenge(ctx, "+910000000000")
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, goerror.CodeNotFound, gerr.Code())

	_, err = sim.CreatePendingIdentity(ctx, PendingIdentity{Username: "+918085745154", Password: "Password1"})
	require.NoError(t, err)

	err = sim.BeginLoginChallenge(ctx, "+918085745154")
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, goerror.CodeInvalidInput, gerr.Code())
}

func TestSimulatedRegisterConfirmed(t *testing.T) {
	ctx := context.Background()
	sim := newTestSimulated(t)

	sim.RegisterConfirmed("+918085745154", "Password1", "sim-preseed")

	tokens, err := sim.PasswordAuthenticate(ctx, "+918085745154", "Password1")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}
