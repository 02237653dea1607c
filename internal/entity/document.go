package entity

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/race-results/constants"
)

// Document is the result of processing one PDF, for data transfer between
// layers. Exactly one of Standings or Result is set, according to Kind.
type Document struct {
	ID          uuid.UUID              `json:"id"`
	Kind        constants.DocumentKind `json:"kind"`
	Fecha       string                 `json:"fecha"`
	Race        string                 `json:"race"`
	SourcePDF   string                 `json:"source_pdf"`
	Backend     string                 `json:"backend"`
	TokenCount  int                    `json:"token_count"`
	RowCount    int                    `json:"row_count"`
	Status      constants.JobStatus    `json:"status"`
	Warnings    []string               `json:"warnings,omitempty"`
	ExtractedAt time.Time              `json:"extracted_at"`
	Standings   *StandingsReport       `json:"standings,omitempty"`
	Result      *RaceResult            `json:"result,omitempty"`
}

// Payload returns the record written to disk for the document.
func (d *Document) Payload() any {
	if d.Standings != nil {
		return d.Standings
	}
	if d.Result != nil {
		return d.Result
	}
	return nil
}

// EncodePayload marshals the document's record.
func (d *Document) EncodePayload(pretty bool) ([]byte, error) {
	return EncodeJSON(d.Payload(), pretty)
}

// EncodeJSON marshals v without HTML escaping, so names keep their accents
// and symbols as written.
func EncodeJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
