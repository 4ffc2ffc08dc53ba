package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agrilink/idgate/internal/pkg/clock"
	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/pkg/instrument"
	"github.com/agrilink/idgate/internal/pkg/jwt"
	"github.com/agrilink/idgate/internal/pkg/uid"
	"github.com/agrilink/idgate/internal/pkg/validator"
	"github.com/agrilink/idgate/internal/verification/entity"
	"github.com/agrilink/idgate/internal/verification/outbound/provider"
	"github.com/agrilink/idgate/internal/verification/outbound/session"
	"github.com/agrilink/idgate/internal/verification/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	mu        sync.Mutex
	directory map[string]entity.DirectoryEntry
	accounts  map[string]entity.Account
	createErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		directory: make(map[string]entity.DirectoryEntry),
		accounts:  make(map[string]entity.Account),
	}
}

func (f *fakeDB) GetDirectoryEntry(_ context.Context, accountID string) (*entity.DirectoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.directory[accountID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &entry, nil
}

func (f *fakeDB) GetAccountByAccountID(_ context.Context, accountID string) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, ok := f.accounts[accountID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &acc, nil
}

func (f *fakeDB) CreateAccount(_ context.Context, account entity.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.accounts[account.AccountID]; ok {
		return goerror.ErrConflict
	}
	f.accounts[account.AccountID] = account
	return nil
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []usecase.AccountVerifiedEvent
	err    error
}

func (f *fakeMessaging) PublishAccountVerified(_ context.Context, msg usecase.AccountVerifiedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, msg)
	return nil
}

type fixture struct {
	uc      *usecase.Usecase
	db      *fakeDB
	sim     *provider.Simulated
	store   *session.Store
	mq      *fakeMessaging
	limiter *fakeLimiter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:    "idgate-test",
		Audiences: []string{"idgate"},
		TTL:       time.Hour,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	db := newFakeDB()
	sim := provider.NewSimulated("test-seed", signer, time.Hour)
	store := session.New()
	mq := &fakeMessaging{}
	limiter := &fakeLimiter{allowed: true}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db,
		Session:       store,
		Provider:      sim,
		RepoMessaging: mq,
		Limiter:       limiter,
		Validator:     v,
		OID:           uid.NewUUID(),
		Clock:         clock.New(),
		Instrument:    instrument.NewNoop(),
	})

	return &fixture{uc: uc, db: db, sim: sim, store: store, mq: mq, limiter: limiter}
}

func (f *fixture) seedDirectory(accountID, phone, name string) {
	f.db.directory[accountID] = entity.DirectoryEntry{AccountID: accountID, Phone: phone, DisplayName: name}
}

func errCode(t *testing.T, err error) goerror.Code {
	t.Helper()

	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "expected goerror, got %v", err)
	return gerr.Code()
}

func TestSignupVerificationScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")

	start, err := f.uc.SignupStart(ctx, usecase.SignupStartInput{
		AccountID:   "735269466602",
		Password:    "Password1",
		DisplayName: "Asha Kumari",
		Region:      "Madhya Pradesh",
		Subregion:   "Indore",
	})
	require.NoError(t, err)
	assert.Equal(t, "+918085745154", start.Phone)
	assert.NotEmpty(t, start.Token)
	assert.NotEmpty(t, start.ProviderID)
	assert.Empty(t, f.db.accounts, "no account before confirmation")

	// wrong code keeps the session alive
	_, err = f.uc.SignupConfirm(ctx, usecase.SignupConfirmInput{Token: start.Token, Code: "000000"})
	require.Error(t, err)
	assert.Equal(t, goerror.CodeUnauthorized, errCode(t, err))
	assert.Empty(t, f.db.accounts)

	code, err := f.sim.DeliveredCode("+918085745154")
	require.NoError(t, err)

	out, err := f.uc.SignupConfirm(ctx, usecase.SignupConfirmInput{Token: start.Token, Code: code})
	require.NoError(t, err)
	assert.Equal(t, "735269466602", out.Account.AccountID)
	assert.Equal(t, "+918085745154", out.Account.Phone)
	assert.True(t, out.Account.Verified)

	acc, ok := f.db.accounts["735269466602"]
	require.True(t, ok)
	assert.Equal(t, start.ProviderID, acc.ProviderID)
	assert.True(t, acc.Verified)

	require.Len(t, f.mq.events, 1)
	assert.Equal(t, "735269466602", f.mq.events[0].AccountID)

	// the session is consumed exactly once
	_, err = f.uc.SignupConfirm(ctx, usecase.SignupConfirmInput{Token: start.Token, Code: code})
	require.Error(t, err)
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "invalid or expired session", gerr.Msg())
}

func TestSignupStartValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")

	tests := []struct {
		name  string
		input usecase.SignupStartInput
	}{
		{
			name: "account id too short",
			input: usecase.SignupStartInput{
				AccountID: "12345", Password: "Password1", DisplayName: "Asha", Region: "MP", Subregion: "Indore",
			},
		},
		{
			name: "account id not digits",
			input: usecase.SignupStartInput{
				AccountID: "73526946660a", Password: "Password1", DisplayName: "Asha", Region: "MP", Subregion: "Indore",
			},
		},
		{
			name: "password without upper and digit",
			input: usecase.SignupStartInput{
				AccountID: "735269466602", Password: "password", DisplayName: "Asha", Region: "MP", Subregion: "Indore",
			},
		},
		{
			name: "missing display name",
			input: usecase.SignupStartInput{
				AccountID: "735269466602", Password: "Password1", Region: "MP", Subregion: "Indore",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.SignupStart(ctx, tc.input)
			require.Error(t, err)
			assert.Equal(t, goerror.CodeInvalidInput, errCode(t, err))
			assert.Equal(t, 0, f.store.Len(), "no session on validation failure")
		})
	}
}

func TestSignupStartUnknownIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.SignupStart(context.Background(), usecase.SignupStartInput{
		AccountID: "735269466602", Password: "Password1", DisplayName: "Asha", Region: "MP", Subregion: "Indore",
	})
	require.Error(t, err)
	assert.Equal(t, goerror.CodeNotFound, errCode(t, err))
}

func TestSignupStartAccountAlreadyRegistered(t *testing.T) {
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")
	f.db.accounts["735269466602"] = entity.Account{AccountID: "735269466602", Verified: true}

	_, err := f.uc.SignupStart(context.Background(), usecase.SignupStartInput{
		AccountID: "735269466602", Password: "Password1", DisplayName: "Asha", Region: "MP", Subregion: "Indore",
	})
	require.Error(t, err)
	assert.Equal(t, goerror.CodeInvalidInput, errCode(t, err))
}

func TestSignupConfirmUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.SignupConfirm(context.Background(), usecase.SignupConfirmInput{Token: "deadbeef", Code: "123456"})
	require.Error(t, err)
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "invalid or expired session", gerr.Msg())
}

func TestSignupConfirmMalformedCodeLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")

	start, err := f.uc.SignupStart(ctx, usecase.SignupStartInput{
		AccountID: "735269466602", Password: "Password1", DisplayName: "Asha", Region: "MP", Subregion: "Indore",
	})
	require.NoError(t, err)

	_, err = f.uc.SignupConfirm(ctx, usecase.SignupConfirmInput{Token: start.Token, Code: "12ab"})
	require.Error(t, err)
	assert.Equal(t, goerror.CodeInvalidInput, errCode(t, err))

	// session still valid, correct code still works
	code, err := f.sim.DeliveredCode("+918085745154")
	require.NoError(t, err)
	_, err = f.uc.SignupConfirm(ctx, usecase.SignupConfirmInput{Token: start.Token, Code: code})
	assert.NoError(t, err)
}

func TestSignupConfirmPersistFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")

	start, err := f.uc.SignupStart(ctx, usecase.SignupStartInput{
		AccountID: "735269466602", Password: "Password1", DisplayName: "Asha", Region: "MP", Subregion: "Indore",
	})
	require.NoError(t, err)

	code, err := f.sim.DeliveredCode("+918085745154")
	require.NoError(t, err)

	f.db.createErr = errors.New("mongo down")
	_, err = f.uc.SignupConfirm(ctx, usecase.SignupConfirmInput{Token: start.Token, Code: code})
	require.Error(t, err)
	assert.Equal(t, goerror.CodeInternal, errCode(t, err))
	assert.Empty(t, f.mq.events)

	// recovery: persistence back, same session still consumable
	f.db.createErr = nil
	_, err = f.uc.SignupConfirm(ctx, usecase.SignupConfirmInput{Token: start.Token, Code: code})
	assert.NoError(t, err)
}

func TestOTPResendDoesNotMutateSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")

	start, err := f.uc.SignupStart(ctx, usecase.SignupStartInput{
		AccountID: "735269466602", Password: "Password1", DisplayName: "Asha", Region: "MP", Subregion: "Indore",
	})
	require.NoError(t, err)

	before, err := f.store.Get(ctx, start.Token)
	require.NoError(t, err)

	require.NoError(t, f.uc.OTPResend(ctx, usecase.OTPResendInput{Token: start.Token}))

	after, err := f.store.Get(ctx, start.Token)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, f.store.Len())
}

func TestOTPResendUnknownToken(t *testing.T) {
	f := newFixture(t)

	err := f.uc.OTPResend(context.Background(), usecase.OTPResendInput{Token: "deadbeef"})
	require.Error(t, err)
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "invalid or expired session", gerr.Msg())
}

func TestOTPResendRateLimited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")

	start, err := f.uc.SignupStart(ctx, usecase.SignupStartInput{
		AccountID: "735269466602", Password: "Password1", DisplayName: "Asha", Region: "MP", Subregion: "Indore",
	})
	require.NoError(t, err)

	f.limiter.allowed = false
	err = f.uc.OTPResend(ctx, usecase.OTPResendInput{Token: start.Token})
	require.Error(t, err)
	assert.Equal(t, goerror.CodeTooManyRequest, errCode(t, err))
	assert.Contains(t, f.limiter.keys, "otp:resend:735269466602")
}

func TestOTPResendLimiterOutageFailsOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")

	start, err := f.uc.SignupStart(ctx, usecase.SignupStartInput{
		AccountID: "735269466602", Password: "Password1", DisplayName: "Asha", Region: "MP", Subregion: "Indore",
	})
	require.NoError(t, err)

	f.limiter.allowed = false
	f.limiter.err = errors.New("redis down")
	assert.NoError(t, f.uc.OTPResend(ctx, usecase.OTPResendInput{Token: start.Token}))
}

func TestLoginOTPFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")
	f.sim.RegisterConfirmed("+918085745154", "Password1", "sim-existing")
	f.db.accounts["735269466602"] = entity.Account{
		AccountID: "735269466602", Username: "+918085745154", Phone: "+918085745154",
		DisplayName: "Asha Kumari", Region: "Madhya Pradesh", Subregion: "Indore", Verified: true,
	}

	start, err := f.uc.LoginOTP(ctx, usecase.LoginOTPInput{AccountID: "735269466602"})
	require.NoError(t, err)
	assert.Equal(t, "+918085745154", start.Phone)
	assert.Contains(t, f.limiter.keys, "otp:login:735269466602")

	sess, err := f.store.Get(ctx, start.Token)
	require.NoError(t, err)
	assert.Empty(t, sess.Password, "login sessions carry no password")
	assert.Equal(t, "sim-existing", sess.ProviderID)

	code, err := f.sim.DeliveredCode("+918085745154")
	require.NoError(t, err)

	out, err := f.uc.LoginOTPConfirm(ctx, usecase.LoginOTPConfirmInput{Token: start.Token, Code: code})
	require.NoError(t, err)
	assert.Equal(t, "735269466602", out.Account.AccountID)

	// consumed
	_, err = f.uc.LoginOTPConfirm(ctx, usecase.LoginOTPConfirmInput{Token: start.Token, Code: code})
	assert.Error(t, err)
}

func TestLoginOTPRequiresDirectoryEntry(t *testing.T) {
	f := newFixture(t)
	f.sim.RegisterConfirmed("+918085745154", "Password1", "sim-existing")
	f.db.accounts["735269466602"] = entity.Account{
		AccountID: "735269466602", Username: "+918085745154", Phone: "+918085745154", Verified: true,
	}

	_, err := f.uc.LoginOTP(context.Background(), usecase.LoginOTPInput{AccountID: "735269466602"})
	require.Error(t, err)
	assert.Equal(t, goerror.CodeNotFound, errCode(t, err))
	assert.Equal(t, 0, f.store.Len(), "no session without a directory entry")
}

func TestLoginOTPConfirmWrongCodeKeepsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")
	f.sim.RegisterConfirmed("+918085745154", "Password1", "sim-existing")
	f.db.accounts["735269466602"] = entity.Account{
		AccountID: "735269466602", Username: "+918085745154", Phone: "+918085745154", Verified: true,
	}

	start, err := f.uc.LoginOTP(ctx, usecase.LoginOTPInput{AccountID: "735269466602"})
	require.NoError(t, err)

	_, err = f.uc.LoginOTPConfirm(ctx, usecase.LoginOTPConfirmInput{Token: start.Token, Code: "000000"})
	require.Error(t, err)
	assert.Equal(t, goerror.CodeUnauthorized, errCode(t, err))

	code, err := f.sim.DeliveredCode("+918085745154")
	require.NoError(t, err)
	_, err = f.uc.LoginOTPConfirm(ctx, usecase.LoginOTPConfirmInput{Token: start.Token, Code: code})
	assert.NoError(t, err)
}

func TestOTPResendReopensLoginChallenge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "8085745154", "Asha Kumari")
	f.sim.RegisterConfirmed("+918085745154", "Password1", "sim-existing")
	f.db.accounts["735269466602"] = entity.Account{
		AccountID: "735269466602", Username: "+918085745154", Phone: "+918085745154", Verified: true,
	}

	start, err := f.uc.LoginOTP(ctx, usecase.LoginOTPInput{AccountID: "735269466602"})
	require.NoError(t, err)

	before, err := f.store.Get(ctx, start.Token)
	require.NoError(t, err)

	require.NoError(t, f.uc.OTPResend(ctx, usecase.OTPResendInput{Token: start.Token}))

	after, err := f.store.Get(ctx, start.Token)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	code, err := f.sim.DeliveredCode("+918085745154")
	require.NoError(t, err)
	_, err = f.uc.LoginOTPConfirm(ctx, usecase.LoginOTPConfirmInput{Token: start.Token, Code: code})
	assert.NoError(t, err)
}

func TestLoginOTPUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.LoginOTP(context.Background(), usecase.LoginOTPInput{AccountID: "735269466602"})
	require.Error(t, err)
	assert.Equal(t, goerror.CodeNotFound, errCode(t, err))
}

func TestLoginPasswordPrefersDirectoryPhone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedDirectory("735269466602", "9999999999", "Asha Kumari")
	f.sim.RegisterConfirmed("+919999999999", "Password1", "sim-dir")
	f.db.accounts["735269466602"] = entity.Account{
		AccountID: "735269466602", Username: "+918085745154", Phone: "+918085745154",
		DisplayName: "Asha Kumari", Verified: true,
	}

	out, err := f.uc.LoginPassword(ctx, usecase.LoginPasswordInput{AccountID: "735269466602", Password: "Password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, "735269466602", out.Account.AccountID)
}

func TestLoginPasswordFallsBackToStoredUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.sim.RegisterConfirmed("+918085745154", "Password1", "sim-stored")
	f.db.accounts["735269466602"] = entity.Account{
		AccountID: "735269466602", Username: "+918085745154", Phone: "+918085745154", Verified: true,
	}

	out, err := f.uc.LoginPassword(ctx, usecase.LoginPasswordInput{AccountID: "735269466602", Password: "Password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
}

func TestLoginPasswordWrongCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.sim.RegisterConfirmed("+918085745154", "Password1", "sim-stored")
	f.db.accounts["735269466602"] = entity.Account{
		AccountID: "735269466602", Username: "+918085745154", Phone: "+918085745154", Verified: true,
	}

	_, err := f.uc.LoginPassword(ctx, usecase.LoginPasswordInput{AccountID: "735269466602", Password: "WrongPass1"})
	require.Error(t, err)
	assert.Equal(t, goerror.CodeUnauthorized, errCode(t, err))
}
