package app

import (
	"context"
	"net/http"

	"github.com/agrilink/idgate/internal/pkg/clock"
	"github.com/agrilink/idgate/internal/pkg/config"
	"github.com/agrilink/idgate/internal/pkg/goroutine"
	"github.com/agrilink/idgate/internal/pkg/instrument"
	"github.com/agrilink/idgate/internal/pkg/jwt"
	"github.com/agrilink/idgate/internal/pkg/messaging"
	"github.com/agrilink/idgate/internal/pkg/router"
	"github.com/agrilink/idgate/internal/pkg/uid"
	"github.com/agrilink/idgate/internal/pkg/validator"
	"github.com/agrilink/idgate/internal/verification"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	oid       uid.StringID
	jwt       jwt.JWT

	// resources
	mongoClient   *mongo.Client
	mongoDB       *mongo.Database
	cacheConn     *redis.Client
	messaging     messaging.Messaging
	cognitoClient *cip.Client

	// modules
	verification *verification.Module

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMessaging()
	app.initCognito()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
