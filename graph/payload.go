package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ontokit/vskit/render"
)

// ValueSetPayload is the message body for value-set ingestion.
type ValueSetPayload struct {
	EntityID  string             `json:"id"`
	Enum      string             `json:"enum"`
	RunID     string             `json:"run_id"`
	Values    []PermissibleValue `json:"values"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// PermissibleValue is one rendered record in the payload. The key is
// explicit because JSON object order would not survive a round trip and
// consumers rely on the renderer's ordering.
type PermissibleValue struct {
	Key         string `json:"key"`
	Text        string `json:"text,omitempty"`
	Description string `json:"description,omitempty"`
	Meaning     string `json:"meaning,omitempty"`
}

// Validate checks the payload's required fields.
func (p *ValueSetPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entity ID is required")
	}
	if p.Enum == "" {
		return errors.New("enum name is required")
	}
	return nil
}

// Marshal serializes the payload for publishing.
func (p *ValueSetPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// newPayload builds the payload for one expanded enum.
func newPayload(runID, enum string, records []render.Record) *ValueSetPayload {
	values := make([]PermissibleValue, 0, len(records))
	for _, rec := range records {
		values = append(values, PermissibleValue{
			Key:         rec.Key,
			Text:        rec.Text,
			Description: rec.Description,
			Meaning:     rec.Meaning,
		})
	}
	return &ValueSetPayload{
		EntityID:  ValueSetEntityID(enum),
		Enum:      enum,
		RunID:     runID,
		Values:    values,
		UpdatedAt: time.Now().UTC(),
	}
}
