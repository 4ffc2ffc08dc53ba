package provider

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/pkg/hash"
	"github.com/agrilink/idgate/internal/pkg/jwt"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// simulatedEpoch pins TOTP derivation to a fixed instant so the delivered
// code for a username never changes. The simulated provider has no real
// delivery channel; determinism is what makes offline flows exercisable.
var simulatedEpoch = time.Unix(1735689600, 0) // 2025-01-01T00:00:00Z

type simIdentity struct {
	providerID   string
	password     string
	confirmed    bool
	loginPending bool
}

// Simulated implements Identity entirely in memory. It is used when no
// Cognito user pool is configured, so signup and login flows keep working
// in local and degraded environments. Delivered codes are derived
// deterministically per username and logged instead of sent.
type Simulated struct {
	mu         sync.RWMutex
	identities map[string]*simIdentity

	mac      hash.Hash
	jwt      jwt.JWT
	tokenTTL time.Duration
}

// NewSimulated builds the simulated provider. The seed keys code and
// provider-ID derivation; the JWT signer mints login tokens.
func NewSimulated(seed string, signer jwt.JWT, tokenTTL time.Duration) *Simulated {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}

	return &Simulated{
		identities: make(map[string]*simIdentity),
		mac:        hash.NewHMACSHA256(seed),
		jwt:        signer,
		tokenTTL:   tokenTTL,
	}
}

func (s *Simulated) CreatePendingIdentity(ctx context.Context, in PendingIdentity) (string, error) {
	mac, err := s.mac.Hash(in.Username)
	if err != nil {
		return "", goerror.NewServer(err)
	}
	providerID := "sim-" + hex.EncodeToString(mac)[:32]

	s.mu.Lock()
	s.identities[in.Username] = &simIdentity{
		providerID: providerID,
		password:   in.Password,
	}
	s.mu.Unlock()

	s.deliver(ctx, in.Username)

	return providerID, nil
}

func (s *Simulated) ConfirmIdentity(ctx context.Context, username, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[username]
	if !ok {
		return goerror.NewProvider(nil, "User does not exist", goerror.CodeNotFound)
	}

	expected, err := s.DeliveredCode(username)
	if err != nil {
		return goerror.NewServer(err)
	}
	if code != expected {
		return goerror.NewProvider(nil, "Invalid verification code provided, please try again", goerror.CodeUnauthorized)
	}

	identity.confirmed = true

	return nil
}

func (s *Simulated) ResendCode(ctx context.Context, username string) error {
	s.mu.RLock()
	_, ok := s.identities[username]
	s.mu.RUnlock()

	if !ok {
		return goerror.NewProvider(nil, "User does not exist", goerror.CodeNotFound)
	}

	s.deliver(ctx, username)

	return nil
}

func (s *Simulated) BeginLoginChallenge(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[username]
	if !ok {
		return goerror.NewProvider(nil, "User does not exist", goerror.CodeNotFound)
	}
	if !identity.confirmed {
		return goerror.NewProvider(nil, "User is not confirmed", goerror.CodeInvalidInput)
	}

	identity.loginPending = true
	s.deliver(ctx, username)

	return nil
}

func (s *Simulated) CompleteLoginChallenge(ctx context.Context, username, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[username]
	if !ok || !identity.loginPending {
		return goerror.NewProvider(nil, "No login challenge in progress", goerror.CodeUnauthorized)
	}

	expected, err := s.DeliveredCode(username)
	if err != nil {
		return goerror.NewServer(err)
	}
	if code != expected {
		return goerror.NewProvider(nil, "Invalid verification code provided, please try again", goerror.CodeUnauthorized)
	}

	identity.loginPending = false

	return nil
}

func (s *Simulated) GetIdentity(ctx context.Context, username string) (*RemoteIdentity, error) {
	s.mu.RLock()
	identity, ok := s.identities[username]
	s.mu.RUnlock()

	if !ok {
		return nil, goerror.NewProvider(nil, "User does not exist", goerror.CodeNotFound)
	}

	return &RemoteIdentity{
		ProviderID: identity.providerID,
		Phone:      username,
		Confirmed:  identity.confirmed,
	}, nil
}

func (s *Simulated) PasswordAuthenticate(ctx context.Context, username, password string) (*Tokens, error) {
	s.mu.RLock()
	identity, ok := s.identities[username]
	s.mu.RUnlock()

	if !ok || identity.password != password {
		return nil, goerror.NewProvider(nil, "Incorrect username or password", goerror.CodeUnauthorized)
	}
	if !identity.confirmed {
		return nil, goerror.NewProvider(nil, "User is not confirmed", goerror.CodeInvalidInput)
	}

	accessToken, err := s.jwt.Generate(identity.providerID, username)
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	idToken, err := s.jwt.Generate(identity.providerID, username)
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	refresh := make([]byte, 32)
	if _, err := rand.Read(refresh); err != nil {
		return nil, goerror.NewServer(err)
	}

	return &Tokens{
		AccessToken:  accessToken,
		IDToken:      idToken,
		RefreshToken: hex.EncodeToString(refresh),
		ExpiresIn:    int32(s.tokenTTL / time.Second),
	}, nil
}

// RegisterConfirmed seeds a confirmed identity, letting login flows run
// against accounts that were never signed up through this process.
func (s *Simulated) RegisterConfirmed(username, password, providerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identities[username] = &simIdentity{
		providerID: providerID,
		password:   password,
		confirmed:  true,
	}
}

// DeliveredCode returns the 6-digit code the simulated provider "delivers"
// for the username. Derivation is TOTP over a per-username secret at a
// fixed instant, so callers can compute the expected code themselves.
func (s *Simulated) DeliveredCode(username string) (string, error) {
	mac, err := s.mac.Hash("code:" + username)
	if err != nil {
		return "", err
	}

	secret := base32.StdEncoding.EncodeToString(mac)

	return totp.GenerateCodeCustom(secret, simulatedEpoch, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

func (s *Simulated) deliver(ctx context.Context, username string) {
	code, err := s.DeliveredCode(username)
	if err != nil {
		slog.ErrorContext(ctx, "simulated provider failed to derive code", "username", username, "error", err)
		return
	}

	slog.InfoContext(ctx, "simulated provider delivered verification code", "username", username, "code", code)
}
