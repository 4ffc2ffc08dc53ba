package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/agrilink/idgate/internal/pkg/clock"
	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/pkg/instrument"
	"github.com/agrilink/idgate/internal/pkg/ratelimit"
	"github.com/agrilink/idgate/internal/pkg/uid"
	"github.com/agrilink/idgate/internal/pkg/validator"
	"github.com/agrilink/idgate/internal/verification/entity"
	"github.com/agrilink/idgate/internal/verification/outbound/provider"
	"go.opentelemetry.io/otel/trace"
)

// invalidSessionMsg is the single message returned for every session lookup
// miss. Unissued, expired and already-consumed tokens must be
// indistinguishable to the caller.
const invalidSessionMsg = "invalid or expired session"

// AccountVerifiedEvent is emitted after a signup confirmation persisted a
// verified account.
type AccountVerifiedEvent struct {
	AccountID   string
	ProviderID  string
	Phone       string
	DisplayName string
	Region      string
	Subregion   string
	VerifiedAt  time.Time
}

// AccountSummary is the caller-facing projection of an account record.
type AccountSummary struct {
	AccountID   string
	Phone       string
	DisplayName string
	Region      string
	Subregion   string
	Verified    bool
}

type repoMessaging interface {
	PublishAccountVerified(ctx context.Context, msg AccountVerifiedEvent) error
}

type repoDB interface {
	GetDirectoryEntry(ctx context.Context, accountID string) (*entity.DirectoryEntry, error)
	GetAccountByAccountID(ctx context.Context, accountID string) (*entity.Account, error)
	CreateAccount(ctx context.Context, account entity.Account) error
}

type sessionStore interface {
	Create(ctx context.Context, sess entity.Session) (string, error)
	Get(ctx context.Context, token string) (*entity.Session, error)
	Delete(ctx context.Context, token string) error
}

type Usecase struct {
	repoDB        repoDB
	session       sessionStore
	provider      provider.Identity
	repoMessaging repoMessaging
	limiter       ratelimit.Limiter
	validator     validator.Validator
	oid           uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	Session       sessionStore
	Provider      provider.Identity
	RepoMessaging repoMessaging
	Limiter       ratelimit.Limiter
	Validator     validator.Validator
	OID           uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		session:       dep.Session,
		provider:      dep.Provider,
		repoMessaging: dep.RepoMessaging,
		limiter:       dep.Limiter,
		validator:     dep.Validator,
		oid:           dep.OID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}

// getSession resolves a token, collapsing every miss into the one generic
// invalid-session error.
func (s *Usecase) getSession(ctx context.Context, token string) (*entity.Session, error) {
	sess, err := s.session.Get(ctx, token)
	if err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness(invalidSessionMsg, goerror.CodeInvalidInput)
		}

		slog.ErrorContext(ctx, "failed to read session store", "error", err)
		return nil, goerror.NewServer(err)
	}

	return sess, nil
}

// allow applies the fixed-window rate limit for the key. Limiter outages
// fail open: verification must keep working when redis is down.
func (s *Usecase) allow(ctx context.Context, key string) error {
	allowed, err := s.limiter.Allow(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "rate limiter unavailable, allowing request", "key", key, "error", err)
		return nil
	}

	if !allowed {
		return goerror.NewBusiness("Too many attempts, please try again later", goerror.CodeTooManyRequest)
	}

	return nil
}

func summarize(acc *entity.Account) AccountSummary {
	return AccountSummary{
		AccountID:   acc.AccountID,
		Phone:       acc.Phone,
		DisplayName: acc.DisplayName,
		Region:      acc.Region,
		Subregion:   acc.Subregion,
		Verified:    acc.Verified,
	}
}
