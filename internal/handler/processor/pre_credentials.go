package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
	"github.com/isometry/netbox-catalyst-bridge/internal/config"
	"github.com/isometry/netbox-catalyst-bridge/internal/controllers/catalyst"
	"github.com/isometry/netbox-catalyst-bridge/internal/validation"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Credentials is the source of the webhook secret and of the controller login.
// In env mode both are static. In ssm mode they are read from a single JSON parameter
// on the first delivery and cached until Invalidate is called. Concurrent loads share a single fetch.
type Credentials struct {
	mode  string
	key   string
	store SecretStore
	sink  CredentialSink

	mu     sync.RWMutex
	secret *validation.WebhookSecret
	loaded bool
	loads  singleflight.Group
}

type ssmCredentials struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// NewCredentials returns the credentials processor. store is only used in ssm mode.
func NewCredentials(mode, key, secret string, store SecretStore, sink CredentialSink) *Credentials {
	if mode == "" {
		mode = config.AuthModeEnv
	}
	return &Credentials{
		mode:   mode,
		key:    key,
		store:  store,
		sink:   sink,
		secret: validation.NewWebhookSecret(secret),
	}
}

func (p *Credentials) Name() string {
	return "credentials"
}

// WebhookSecret returns the secret in effect.
func (p *Credentials) WebhookSecret() *validation.WebhookSecret {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.secret
}

// Invalidate forces the next delivery to reload the ssm parameter.
func (p *Credentials) Invalidate() {
	p.mu.Lock()
	p.loaded = false
	p.mu.Unlock()
}

func (p *Credentials) Process(ctx context.Context, logger *slog.Logger, _ *bridge.Bus) error {
	if p.mode != config.AuthModeSSM || p.isLoaded() {
		return nil
	}
	_, err, _ := p.loads.Do("load", func() (any, error) {
		if p.isLoaded() {
			return nil, nil
		}
		return nil, p.Load(context.WithoutCancel(ctx), logger)
	})
	return err
}

func (p *Credentials) isLoaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// Load reads the ssm parameter and pushes the credentials it holds.
func (p *Credentials) Load(ctx context.Context, logger *slog.Logger) error {
	if p.store == nil {
		return bridge.NewError(bridge.Internal, bridge.StageCredentials, "no secret store configured for auth mode %q", p.mode)
	}
	logger.Debug("retrieving credentials from SSM...", slog.String("key", p.key))
	value, err := p.store.GetSecret(ctx, p.key, true)
	if err != nil {
		return bridge.WrapError(bridge.Internal, bridge.StageCredentials, err, "failed to retrieve credentials")
	}
	if value == nil {
		return bridge.NewError(bridge.Internal, bridge.StageCredentials, "SSM parameter %s is empty", p.key)
	}

	var creds ssmCredentials
	if err = json.Unmarshal([]byte(*value), &creds); err != nil {
		return bridge.WrapError(bridge.Internal, bridge.StageCredentials, errors.WithStack(err), "failed to decode credentials")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sink != nil {
		p.sink.SetCredentials(catalyst.Credentials{Username: creds.Username, Password: creds.Password})
	}
	if creds.WebhookSecret != "" {
		p.secret = validation.NewWebhookSecret(creds.WebhookSecret)
	}
	p.loaded = true
	logger.Info("loaded credentials from SSM", slog.String("key", p.key))
	return nil
}
