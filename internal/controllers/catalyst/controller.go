// Package catalyst provides a Controller for Catalyst Center: session token management and interface updates.
package catalyst

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/isometry/netbox-catalyst-bridge/internal/config"
	"github.com/isometry/netbox-catalyst-bridge/internal/helpers"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Catalyst Center API routes.
const (
	AuthPath              = "/dna/system/api/v1/auth/token"
	GenericInterfacePath  = "/dna/intent/api/v1/interface/"
	WirelessInterfacePath = "/dna/intent/api/v1/wirelessSettings/interfaces/"
	// AuthTokenHeader carries the session token on every authenticated call.
	AuthTokenHeader = "X-Auth-Token"
)

const (
	defaultLoginTimeout   = 15 * time.Second
	defaultRequestTimeout = 20 * time.Second
	maxResponseBytes      = 1 << 20
)

// Option is a functional option used to configure a Controller instance.
type Option func(*Controller)

// Credentials holds the Catalyst Center login credentials.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Controller wraps the Catalyst Center REST API. It owns the single cached session of the process
// and is safe for concurrent use.
type Controller struct {
	logger *slog.Logger
	client *http.Client
	now    func() time.Time

	host           string
	verifyTLS      bool
	deploymentMode string
	interfacePath  string
	loginTimeout   time.Duration
	requestTimeout time.Duration
	tokenTTL       time.Duration

	credMu      sync.RWMutex
	credentials Credentials

	// mu guards session; logins serialises concurrent token exchanges.
	mu      sync.Mutex
	session *Session
	logins  singleflight.Group

	insecureWarning *rate.Sometimes
}

// NewController initializes a new Controller with the provided options, setting defaults where necessary.
func NewController(opts ...Option) (*Controller, error) {
	_inst := &Controller{
		verifyTLS:       true,
		deploymentMode:  config.DeploymentModeDeploy,
		interfacePath:   config.InterfacePathGeneric,
		loginTimeout:    defaultLoginTimeout,
		requestTimeout:  defaultRequestTimeout,
		insecureWarning: helpers.OnceAMinute(),
	}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.now == nil {
		_inst.now = time.Now
	}

	u, err := url.Parse(_inst.host)
	if err != nil {
		return nil, errors.Wrap(err, "invalid Catalyst Center host")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid Catalyst Center host: %q", _inst.host)
	}
	switch _inst.interfacePath {
	case config.InterfacePathGeneric, config.InterfacePathWireless:
	default:
		return nil, errors.Errorf("unsupported interface path variant: %q", _inst.interfacePath)
	}

	_inst.client = newHTTPClient(_inst.verifyTLS, _inst.logger)
	_inst.logger = _inst.logger.With("host", u.Host, "interfacePath", _inst.interfacePath, "deploymentMode", _inst.deploymentMode)
	return _inst, nil
}

// SetCredentials replaces the login credentials. A change discards the cached session.
func (c *Controller) SetCredentials(creds Credentials) {
	c.credMu.Lock()
	changed := c.credentials != creds
	c.credentials = creds
	c.credMu.Unlock()

	if changed {
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
	}
}

// HasCredentials reports whether both a username and a password are set.
func (c *Controller) HasCredentials() bool {
	c.credMu.RLock()
	defer c.credMu.RUnlock()
	return c.credentials.Username != "" && c.credentials.Password != ""
}

func (c *Controller) getCredentials() Credentials {
	c.credMu.RLock()
	defer c.credMu.RUnlock()
	return c.credentials
}

func (c *Controller) warnInsecure() {
	if c.verifyTLS {
		return
	}
	c.insecureWarning.Do(func() {
		c.logger.Warn("TLS certificate verification is disabled for Catalyst Center calls; use only with self-signed lab controllers")
	})
}

func newHTTPClient(verifyTLS bool, logger *slog.Logger) *http.Client {
	transport := cleanhttp.DefaultPooledTransport()
	if !verifyTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed lab controllers
	}
	return &http.Client{Transport: &loggingRoundTripper{next: transport, logger: logger}}
}
