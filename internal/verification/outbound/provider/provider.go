// Package provider adapts the external identity provider behind a small
// capability interface. Two implementations exist: the Cognito-backed one
// used in production and a deterministic simulated one used when no user
// pool is configured.
package provider

import "context"

// PendingIdentity describes the identity to register with the provider.
type PendingIdentity struct {
	Username    string
	Password    string
	Phone       string
	DisplayName string
	AccountID   string
}

// RemoteIdentity is the provider's view of an existing identity.
type RemoteIdentity struct {
	ProviderID string
	Phone      string
	Confirmed  bool
}

// Tokens is the result of a successful password authentication.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int32
}

// Identity is the capability surface the verification flows need from the
// identity provider. Every call is bounded by an explicit deadline inside
// the implementation; exceeding it surfaces as a provider error, never a
// hang.
type Identity interface {
	// CreatePendingIdentity registers an unconfirmed identity and triggers
	// OTP delivery. Returns the provider-assigned identity ID.
	CreatePendingIdentity(ctx context.Context, in PendingIdentity) (string, error)

	// ConfirmIdentity submits the OTP code for the username. A rejection
	// carries the provider's message verbatim.
	ConfirmIdentity(ctx context.Context, username, code string) error

	// ResendCode triggers delivery of a fresh OTP code for an identity that
	// is still awaiting its signup confirmation.
	ResendCode(ctx context.Context, username string) error

	// BeginLoginChallenge opens an OTP challenge for an already confirmed
	// identity and triggers code delivery. Signup-style confirmation calls
	// are rejected by providers once an identity is confirmed, so login
	// flows must go through the challenge pair instead.
	BeginLoginChallenge(ctx context.Context, username string) error

	// CompleteLoginChallenge answers the pending login challenge with the
	// delivered code. A rejection carries the provider's message verbatim.
	CompleteLoginChallenge(ctx context.Context, username, code string) error

	// GetIdentity looks up an existing identity by username.
	GetIdentity(ctx context.Context, username string) (*RemoteIdentity, error)

	// PasswordAuthenticate exchanges username/password for tokens.
	PasswordAuthenticate(ctx context.Context, username, password string) (*Tokens, error)
}
