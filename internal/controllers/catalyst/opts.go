package catalyst

import (
	"log/slog"
	"strings"
	"time"
)

// WithLogger sets a custom logger for the Controller instance to use for logging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithHost sets the controller base URL. Trailing slashes are dropped.
func WithHost(host string) Option {
	return func(c *Controller) {
		c.host = strings.TrimRight(strings.TrimSpace(host), "/")
	}
}

// WithCredentials sets the login credentials.
func WithCredentials(username, password string) Option {
	return func(c *Controller) {
		c.credentials = Credentials{Username: username, Password: password}
	}
}

// WithVerifyTLS toggles certificate verification of the default HTTP client.
func WithVerifyTLS(verify bool) Option {
	return func(c *Controller) {
		c.verifyTLS = verify
	}
}

// WithDeploymentMode sets the deploymentMode query parameter sent with every update.
func WithDeploymentMode(mode string) Option {
	return func(c *Controller) {
		c.deploymentMode = mode
	}
}

// WithInterfacePath selects the 'generic' or 'wireless' update route.
func WithInterfacePath(variant string) Option {
	return func(c *Controller) {
		c.interfacePath = strings.ToLower(strings.TrimSpace(variant))
	}
}

// WithTimeouts bounds the login exchange and the update calls. Non-positive values keep the defaults.
func WithTimeouts(login, request time.Duration) Option {
	return func(c *Controller) {
		if login > 0 {
			c.loginTimeout = login
		}
		if request > 0 {
			c.requestTimeout = request
		}
	}
}

// WithTokenTTL discards cached tokens older than ttl before use. Zero keeps renewal purely reactive.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		c.tokenTTL = ttl
	}
}

// WithClock overrides the time source used to stamp sessions.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}
