package catalyst

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
	"github.com/isometry/netbox-catalyst-bridge/internal/config"
	"github.com/isometry/netbox-catalyst-bridge/internal/helpers"
	"github.com/isometry/netbox-catalyst-bridge/internal/metrics"
	"github.com/pkg/errors"
)

// Result describes the controller's answer to an interface update.
type Result struct {
	Outcome    bridge.Outcome
	StatusCode int
	TaskID     string
	// Attempts counts the update calls issued, including the one after a token renewal.
	Attempts int
}

type updateRequest struct {
	Description string `json:"description"`
}

type taskResponse struct {
	Response struct {
		TaskID string `json:"taskId"`
		URL    string `json:"url"`
	} `json:"response"`
}

// InterfaceURL returns the update URL of resourceID for the configured path variant, carrying the deployment mode.
func (c *Controller) InterfaceURL(resourceID string) string {
	path := GenericInterfacePath
	if c.interfacePath == config.InterfacePathWireless {
		path = WirelessInterfacePath
	}

	u, err := url.Parse(c.host + path + url.PathEscape(resourceID))
	if err != nil {
		return c.host + path + url.PathEscape(resourceID)
	}
	if c.deploymentMode != "" {
		q := u.Query()
		q.Set("deploymentMode", c.deploymentMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// UpdateInterface sets the description of the interface targeted by intent using token.
// A 401 or 403 renews the session and retries exactly once; nothing else is retried here.
// The returned error is a *bridge.Error classifying the failure.
func (c *Controller) UpdateInterface(ctx context.Context, intent *bridge.UpdateIntent, token string) (*Result, error) {
	logger := c.logger.With(slog.String("resourceId", intent.ResourceID))
	res := &Result{}

	code, taskID, err := c.put(ctx, logger, intent, token)
	res.Attempts++
	if err != nil {
		res.Outcome = bridge.Retryable
		return res, err
	}

	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		logger.Info("token rejected by controller, renewing session...", slog.Int("status", code))
		token, err = c.Renew(ctx, token)
		if err != nil {
			res.Outcome, res.StatusCode = bridge.AuthError, code
			return res, &bridge.Error{Outcome: bridge.AuthError, Stage: bridge.StageUpdate, Cause: errors.Wrap(err, "failed to renew session")}
		}
		code, taskID, err = c.put(ctx, logger, intent, token)
		res.Attempts++
		if err != nil {
			res.Outcome = bridge.Retryable
			return res, err
		}
	}

	res.StatusCode, res.TaskID = code, taskID
	res.Outcome = classifyStatus(code)
	switch res.Outcome {
	case bridge.Updated, bridge.NoOp:
		return res, nil
	case bridge.AuthError:
		return res, bridge.NewError(bridge.AuthError, bridge.StageUpdate, "controller rejected the renewed token with status %d", code)
	case bridge.NotFound:
		return res, bridge.NewError(bridge.NotFound, bridge.StageUpdate, "interface %s not found on controller", intent.ResourceID)
	case bridge.Retryable:
		return res, bridge.NewError(bridge.Retryable, bridge.StageUpdate, "controller returned status %d", code)
	default:
		return res, bridge.NewError(bridge.Rejected, bridge.StageUpdate, "controller rejected the update with status %d", code)
	}
}

// classifyStatus maps a final update status code to an outcome.
func classifyStatus(code int) bridge.Outcome {
	switch {
	case code == http.StatusNotModified:
		return bridge.NoOp
	case code >= 200 && code <= 299:
		return bridge.Updated
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return bridge.AuthError
	case code == http.StatusNotFound:
		return bridge.NotFound
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return bridge.Retryable
	default:
		return bridge.Rejected
	}
}

// put issues a single update call. Transport failures are returned as bridge.Retryable.
func (c *Controller) put(ctx context.Context, logger *slog.Logger, intent *bridge.UpdateIntent, token string) (int, string, error) {
	c.warnInsecure()
	payload, err := json.Marshal(updateRequest{Description: intent.Description})
	if err != nil {
		return 0, "", bridge.WrapError(bridge.Internal, bridge.StageUpdate, err, "failed to encode update")
	}

	// The mutation is allowed to complete even if the inbound delivery is dropped.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.requestTimeout)
	defer cancel()

	target := c.InterfaceURL(intent.ResourceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(payload))
	if err != nil {
		return 0, "", bridge.WrapError(bridge.Internal, bridge.StageUpdate, err, "failed to build update request")
	}
	req.Header.Set(AuthTokenHeader, token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveControllerRequest("update", 0, time.Since(start))
		logger.Warn("Catalyst PUT failed", slog.String("url", target), slog.Any("error", err))
		return 0, "", bridge.WrapError(bridge.Retryable, bridge.StageUpdate, err, "update request failed")
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveControllerRequest("update", resp.StatusCode, time.Since(start))

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	logger.Info("Catalyst PUT", slog.String("url", target), slog.Int("status", resp.StatusCode), slog.String("body", helpers.Truncate(string(body), 400)))

	var tr taskResponse
	_ = json.Unmarshal(body, &tr)
	return resp.StatusCode, tr.Response.TaskID, nil
}
