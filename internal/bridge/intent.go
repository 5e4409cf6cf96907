package bridge

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/isometry/netbox-catalyst-bridge/internal/helpers"
)

// DefaultCustomField is the NetBox custom field holding the Catalyst Center interface UUID.
const DefaultCustomField = "catalyst_interface_uuid"

// UpdateIntent is the normalised request to set the description of a controller interface.
type UpdateIntent struct {
	ResourceID  string
	Description string
}

// LogValue implements slog.LogValuer.
func (i *UpdateIntent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("resourceId", i.ResourceID),
		slog.String("description", helpers.Truncate(i.Description, 200)),
	)
}

// Delivery holds the NetBox envelope metadata used for log correlation.
type Delivery struct {
	ID    string
	Event string
	Model string
	User  string
}

// Extraction is the result of parsing a delivery. A nil Intent is a no-op.
type Extraction struct {
	Intent   *UpdateIntent
	Delivery Delivery
	// Keys lists the top-level keys of the body, DataKeys the keys of its data object.
	Keys     []string
	DataKeys []string
}

// Extractor turns NetBox webhook bodies into update intents.
type Extractor struct {
	CustomField string
}

// NewExtractor returns an Extractor reading the UUID from customField, or DefaultCustomField when empty.
func NewExtractor(customField string) *Extractor {
	if customField == "" {
		customField = DefaultCustomField
	}
	return &Extractor{CustomField: customField}
}

type envelope map[string]json.RawMessage

type objectShape struct {
	Description  json.RawMessage `json:"description"`
	CustomFields json.RawMessage `json:"custom_fields"`
	Post         json.RawMessage `json:"post"`
}

// Extract parses body. The UUID and the description are looked up in data, then in the post-change
// snapshot (data.post, else the top-level post), then in the top-level object; the first shape
// holding a field wins for that field. Shapes that are not objects are skipped.
// Only a body that is not a JSON object is an error.
func (x *Extractor) Extract(body []byte) (*Extraction, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env == nil {
		if err == nil {
			return nil, NewError(BadPayload, StageExtract, "body is not a JSON object")
		}
		return nil, WrapError(BadPayload, StageExtract, err, "failed to parse webhook body")
	}

	ext := &Extraction{
		Keys: sortedKeys(env),
		Delivery: Delivery{
			ID:    helpers.String(stringField(env["request_id"])),
			Event: helpers.String(stringField(env["event"])),
			Model: helpers.String(stringField(env["model"])),
			User:  helpers.String(stringField(env["username"])),
		},
	}
	if ext.Delivery.ID == "" {
		ext.Delivery.ID = uuid.NewString()
	}

	var shapes []*objectShape
	data := decodeShape(env["data"])
	if data != nil {
		shapes = append(shapes, data)
		ext.DataKeys = objectKeys(env["data"])
	}
	var post *objectShape
	if data != nil {
		post = decodeShape(data.Post)
	}
	if post == nil {
		post = decodeShape(env["post"])
	}
	shapes = append(shapes, post, decodeShape(env["object"]))

	var resourceID, description *string
	for _, s := range shapes {
		if s == nil {
			continue
		}
		if resourceID == nil {
			resourceID = x.customField(s.CustomFields)
		}
		if description == nil {
			description = stringField(s.Description)
		}
	}

	// A missing UUID and an empty one are the same no-op.
	if resourceID == nil || *resourceID == "" || description == nil {
		return ext, nil
	}
	ext.Intent = &UpdateIntent{ResourceID: *resourceID, Description: *description}
	return ext, nil
}

func (x *Extractor) customField(raw json.RawMessage) *string {
	var fields map[string]json.RawMessage
	if !isObject(raw) || json.Unmarshal(raw, &fields) != nil {
		return nil
	}
	return stringField(fields[x.CustomField])
}

// decodeShape returns nil for absent, null, empty or non-object values.
func decodeShape(raw json.RawMessage) *objectShape {
	if !isObject(raw) || len(objectKeys(raw)) == 0 {
		return nil
	}
	var s objectShape
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func stringField(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func objectKeys(raw json.RawMessage) []string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return sortedKeys(m)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
