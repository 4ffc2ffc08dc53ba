// Package db persists account records and reads the identity directory
// from MongoDB.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/pkg/instrument"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	collAccounts  = "accounts"
	collDirectory = "directory"
)

type accountDoc struct {
	ID          string    `bson:"_id"`
	ProviderID  string    `bson:"provider_id"`
	Username    string    `bson:"username"`
	AccountID   string    `bson:"account_id"`
	Phone       string    `bson:"phone"`
	DisplayName string    `bson:"display_name"`
	Region      string    `bson:"region"`
	Subregion   string    `bson:"subregion"`
	Verified    bool      `bson:"verified"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type directoryDoc struct {
	AccountID   string `bson:"account_id"`
	Phone       string `bson:"phone"`
	DisplayName string `bson:"display_name"`
}

// DB wraps the Mongo collections used by the verification module.
type DB struct {
	accounts  *mongo.Collection
	directory *mongo.Collection
	ins       instrument.Instrumentation
}

// NewDB builds the repository from a connected Mongo database handle.
func NewDB(database *mongo.Database, ins instrument.Instrumentation) *DB {
	return &DB{
		accounts:  database.Collection(collAccounts),
		directory: database.Collection(collDirectory),
		ins:       ins,
	}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return goerror.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
