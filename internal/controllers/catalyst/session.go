package catalyst

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
	"github.com/isometry/netbox-catalyst-bridge/internal/metrics"
	"github.com/pkg/errors"
)

// Session is a cached controller token.
type Session struct {
	Token      string
	ObtainedAt time.Time
}

type tokenResponse struct {
	Token string `json:"Token"`
}

// CurrentSession returns a copy of the cached session, if any.
func (c *Controller) CurrentSession() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Token returns the cached token, logging in first when there is none, when it outlived the
// optional TTL, or when force is set. Concurrent callers share a single in-flight login.
// Failures are bridge.AuthError at the session stage.
func (c *Controller) Token(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	if force {
		c.session = nil
	}
	if s := c.validSession(); s != nil {
		c.mu.Unlock()
		return s.Token, nil
	}
	c.mu.Unlock()

	return c.authenticate(ctx)
}

// Renew discards stale if it is still the cached token and returns a valid one. When another
// caller already replaced stale, its token is reused without a new login.
func (c *Controller) Renew(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	if c.session != nil && c.session.Token == stale {
		c.session = nil
	}
	c.mu.Unlock()

	return c.Token(ctx, false)
}

// validSession must be called with mu held.
func (c *Controller) validSession() *Session {
	s := c.session
	if s == nil {
		return nil
	}
	if c.tokenTTL > 0 && c.now().Sub(s.ObtainedAt) >= c.tokenTTL {
		c.logger.Debug("cached token outlived its TTL", slog.Duration("ttl", c.tokenTTL))
		c.session = nil
		return nil
	}
	return s
}

func (c *Controller) authenticate(ctx context.Context) (string, error) {
	v, err, shared := c.logins.Do("login", func() (any, error) {
		c.mu.Lock()
		if s := c.validSession(); s != nil {
			c.mu.Unlock()
			return s.Token, nil
		}
		c.mu.Unlock()

		token, err := c.login(ctx)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.session = &Session{Token: token, ObtainedAt: c.now()}
		c.mu.Unlock()
		return token, nil
	})
	if shared {
		c.logger.Debug("reused in-flight login")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// login performs the token exchange. It is detached from the caller's cancellation and bounded by the login timeout.
func (c *Controller) login(ctx context.Context) (string, error) {
	c.warnInsecure()
	creds := c.getCredentials()
	if creds.Username == "" || creds.Password == "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", bridge.NewError(bridge.AuthError, bridge.StageSession, "missing Catalyst Center credentials")
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loginTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+AuthPath, http.NoBody)
	if err != nil {
		return "", bridge.WrapError(bridge.AuthError, bridge.StageSession, err, "failed to build login request")
	}
	req.SetBasicAuth(creds.Username, creds.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("logging in to Catalyst Center...")
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveControllerRequest("login", 0, time.Since(start))
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", bridge.WrapError(bridge.AuthError, bridge.StageSession, err, "login request failed")
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveControllerRequest("login", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", bridge.WrapError(bridge.AuthError, bridge.StageSession, err, "failed to read login response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		c.logger.Warn("login rejected", slog.Int("status", resp.StatusCode))
		return "", bridge.NewError(bridge.AuthError, bridge.StageSession, "login rejected with status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err = json.Unmarshal(body, &tr); err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", bridge.WrapError(bridge.AuthError, bridge.StageSession, err, "failed to decode login response")
	}
	if tr.Token == "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", bridge.WrapError(bridge.AuthError, bridge.StageSession, errors.New("empty token"), "invalid login response")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.logger.Info("obtained Catalyst Center token")
	return tr.Token, nil
}
