// Package bridge provides the domain types shared by the NetBox to Catalyst Center pipeline:
// inbound events, update intents, the outcome taxonomy and the processing bus.
package bridge

import (
	"log/slog"

	"github.com/isometry/netbox-catalyst-bridge/internal/models"
)

// Bus carries a delivery through the processors.
type Bus struct {
	Request    models.Request
	Event      *WebhookEvent
	Extraction *Extraction
	Intent     *UpdateIntent
	Token      string

	Outcome  Outcome
	Stage    Stage
	Error    error
	Response models.Response

	// Verified is set once the signature check passed.
	Verified bool
	// Attributes reported by the controller for a successful update.
	TaskID         string
	ControllerCode int
}

// NewBus returns a bus for req.
func NewBus(req models.Request) *Bus {
	return &Bus{Request: req}
}

// Settled reports whether an outcome has been decided.
func (b *Bus) Settled() bool {
	return b.Outcome != ""
}

// Settle records the final outcome and the response derived from it.
func (b *Bus) Settle(outcome Outcome, stage Stage, err error, message string) {
	b.Outcome, b.Stage, b.Error = outcome, stage, err
	b.Response = models.Response{
		Body:       message,
		Outcome:    string(outcome),
		StatusCode: outcome.StatusCode(stage),
	}
}

// Fail settles the bus from a classified error.
func (b *Bus) Fail(err error) {
	outcome, stage := Classify(err)
	b.Settle(outcome, stage, err, string(outcome))
}

// ResourceID returns the target resource, or an empty string before extraction.
func (b *Bus) ResourceID() string {
	if b.Intent == nil {
		return ""
	}
	return b.Intent.ResourceID
}

// DeliveryID returns the NetBox request id, or an empty string before extraction.
func (b *Bus) DeliveryID() string {
	if b.Extraction == nil {
		return ""
	}
	return b.Extraction.Delivery.ID
}

// LogValue generates the structured outcome attributes of the delivery.
func (b *Bus) LogValue() slog.Value {
	logAttr := make([]slog.Attr, 0, 9)
	if b.Outcome != "" {
		logAttr = append(logAttr, slog.String("outcome", string(b.Outcome)), slog.Int("status", b.Response.StatusCode))
	}
	if b.Stage != "" {
		logAttr = append(logAttr, slog.String("stage", string(b.Stage)))
	}
	if id := b.ResourceID(); id != "" {
		logAttr = append(logAttr, slog.String("resourceId", id))
	}
	if b.Extraction != nil {
		d := b.Extraction.Delivery
		logAttr = append(logAttr, slog.String("deliveryId", d.ID))
		if d.Model != "" {
			logAttr = append(logAttr, slog.String("model", d.Model))
		}
		if d.Event != "" {
			logAttr = append(logAttr, slog.String("event", d.Event))
		}
		if d.User != "" {
			logAttr = append(logAttr, slog.String("user", d.User))
		}
	}
	if b.TaskID != "" {
		logAttr = append(logAttr, slog.String("taskId", b.TaskID))
	}
	return slog.GroupValue(logAttr...)
}
