package bridge_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
	"github.com/isometry/netbox-catalyst-bridge/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBus_Settle(t *testing.T) {
	bus := bridge.NewBus(models.Request{})
	assert.False(t, bus.Settled())

	bus.Fail(bridge.NewError(bridge.AuthError, bridge.StageSession, "login rejected"))
	assert.True(t, bus.Settled())
	assert.Equal(t, bridge.AuthError, bus.Outcome)
	assert.Equal(t, http.StatusBadGateway, bus.Response.StatusCode)
	assert.Equal(t, "AuthError", bus.Response.Outcome)
	assert.Error(t, bus.Error)
}

func TestBus_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	bus := bridge.NewBus(models.Request{})
	bus.Extraction = &bridge.Extraction{Delivery: bridge.Delivery{ID: "d-1", Model: "interface", Event: "updated", User: "admin"}}
	bus.Intent = &bridge.UpdateIntent{ResourceID: "u", Description: "x"}
	bus.TaskID = "t-1"
	bus.Settle(bridge.Updated, bridge.StageUpdate, nil, "interface updated")

	logger.Info("handled", slog.Any("delivery", bus))
	out := buf.String()
	for _, want := range []string{`"outcome":"Updated"`, `"status":200`, `"resourceId":"u"`, `"deliveryId":"d-1"`, `"model":"interface"`, `"taskId":"t-1"`, `"user":"admin"`} {
		assert.Contains(t, out, want)
	}
}

func TestNewWebhookEvent(t *testing.T) {
	req := models.Request{
		Body: []byte(`{}`),
		Headers: map[string]string{
			"x-hook-signature": "abc",
			"content-type":     "application/json",
		},
	}
	ev := bridge.NewWebhookEvent(req, "X-Hook-Signature")
	assert.Equal(t, "abc", ev.Signature)
	assert.Equal(t, "application/json", ev.ContentType)
	assert.Equal(t, []byte(`{}`), ev.Body)
	assert.False(t, ev.ReceivedAt.IsZero())
}
