// Package verification binds a 12-digit national identity number to an
// account through OTP challenges mediated by the identity provider.
package verification

import (
	"context"
	"log/slog"

	"github.com/agrilink/idgate/internal/pkg/clock"
	"github.com/agrilink/idgate/internal/pkg/config"
	"github.com/agrilink/idgate/internal/pkg/instrument"
	"github.com/agrilink/idgate/internal/pkg/jwt"
	"github.com/agrilink/idgate/internal/pkg/messaging"
	"github.com/agrilink/idgate/internal/pkg/ratelimit"
	"github.com/agrilink/idgate/internal/pkg/router"
	"github.com/agrilink/idgate/internal/pkg/uid"
	"github.com/agrilink/idgate/internal/pkg/validator"
	"github.com/agrilink/idgate/internal/verification/inbound"
	"github.com/agrilink/idgate/internal/verification/outbound/db"
	"github.com/agrilink/idgate/internal/verification/outbound/mq"
	"github.com/agrilink/idgate/internal/verification/outbound/provider"
	"github.com/agrilink/idgate/internal/verification/outbound/session"
	"github.com/agrilink/idgate/internal/verification/usecase"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type Dependency struct {
	Mongo         *mongo.Database            `validate:"required"`
	CacheConn     *redis.Client              `validate:"required"`
	Messaging     messaging.Messaging        `validate:"required"`
	Router        *router.Router             `validate:"required"`
	Config        config.Config              `validate:"required"`
	Instrument    instrument.Instrumentation `validate:"required"`
	OID           uid.StringID               `validate:"required"`
	Clock         clock.Clocker              `validate:"required"`
	Validator     validator.Validator        `validate:"required"`
	JWT           jwt.JWT                    `validate:"required"`
	CognitoClient *cip.Client
}

// Module owns the resources started by New, most notably the session store
// sweeper.
type Module struct {
	store *session.Store
}

func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	store := session.New(newStoreOptions(dep.Config, dep.Clock)...)
	store.Start()

	repoDB := db.NewDB(dep.Mongo, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	limiter := ratelimit.New(
		dep.CacheConn,
		dep.Config.GetInt64("modules.verification.rate_limit.attempts"),
		dep.Config.GetMinute("modules.verification.rate_limit.window_minutes"),
	)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        repoDB,
		Session:       store,
		Provider:      newProvider(dep),
		RepoMessaging: repoMsg,
		Limiter:       limiter,
		Validator:     dep.Validator,
		OID:           dep.OID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return &Module{store: store}, nil
}

// Close stops the session store sweeper. Pending sessions are dropped;
// users restart their verification after a deploy.
func (m *Module) Close(context.Context) error {
	m.store.Stop()
	return nil
}

func newStoreOptions(cfg config.Config, clk clock.Clocker) []session.Option {
	opts := []session.Option{session.WithClock(clk)}

	if ttl := cfg.GetMinute("modules.verification.session_ttl_minutes"); ttl > 0 {
		opts = append(opts, session.WithTTL(ttl))
	}
	if interval := cfg.GetMinute("modules.verification.sweep_interval_minutes"); interval > 0 {
		opts = append(opts, session.WithSweepInterval(interval))
	}

	return opts
}

// newProvider picks the Cognito adapter when a user pool is configured and
// falls back to the deterministic simulated provider otherwise. The
// fallback is a supported degraded mode, not an error.
func newProvider(dep Dependency) provider.Identity {
	clientID := dep.Config.GetString("provider.cognito.client_id")
	userPoolID := dep.Config.GetString("provider.cognito.user_pool_id")

	if dep.CognitoClient == nil || clientID == "" || userPoolID == "" {
		slog.Warn("identity provider not configured, falling back to simulated provider",
			"client_id_set", clientID != "", "user_pool_id_set", userPoolID != "")

		return provider.NewSimulated(
			dep.Config.GetString("provider.simulated.seed"),
			dep.JWT,
			dep.Config.GetMinute("provider.simulated.token_ttl_minutes"),
		)
	}

	return provider.NewCognito(provider.CognitoConfig{
		Client:       dep.CognitoClient,
		ClientID:     clientID,
		ClientSecret: dep.Config.GetString("provider.cognito.client_secret"),
		UserPoolID:   userPoolID,
		CallTimeout:  dep.Config.GetSecond("provider.cognito.call_timeout_seconds"),
	}, dep.Instrument)
}
