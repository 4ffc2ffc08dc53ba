package main

import (
	"context"
	"time"

	"github.com/agrilink/idgate/internal/app"
)

// @title           IDGate API
// @version         1.0
// @description     IDGate binds national identity numbers to accounts through OTP verification and authenticates returning users.
// @contact.name    Contact Support
// @contact.email   support@agrilink.io
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
