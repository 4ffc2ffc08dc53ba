package app

import (
	"log/slog"
	"os"

	"github.com/agrilink/idgate/internal/verification"
)

func (a *App) initModules() {
	mod, err := verification.New(verification.Dependency{
		Mongo:         a.mongoDB,
		CacheConn:     a.cacheConn,
		Messaging:     a.messaging,
		Router:        a.router,
		Config:        a.config,
		Instrument:    a.ins,
		OID:           a.oid,
		Clock:         a.clock,
		Validator:     a.validator,
		JWT:           a.jwt,
		CognitoClient: a.cognitoClient,
	})
	if err != nil {
		slog.Error("failed to init module verification", "error", err)
		os.Exit(1)
	}

	a.verification = mod
}
