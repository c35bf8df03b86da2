package settings

import (
	"bytes"
	"encoding/json"
)

// Sort field and order values accepted in the settings document.
const (
	SortByName      = "name"
	SortByCreatedAt = "createdAt"
	SortAsc         = "asc"
	SortDesc        = "desc"
)

// Document is the per-user settings document. CheckInFrequency is kept raw
// because historical documents store either a legacy label string or a
// structured cadence object; normalization happens at read boundaries
// (checkin.Resolve), never here.
type Document struct {
	SortBy           string          `json:"sortBy,omitempty"`
	SortOrder        string          `json:"sortOrder,omitempty"`
	CheckInFrequency json.RawMessage `json:"checkInFrequency,omitempty"`
	CheckInEnabled   *bool           `json:"checkInEnabled,omitempty"`
}

// Patch describes a merge-patch write: nil fields are left untouched in the
// stored document.
type Patch struct {
	SortBy           *string
	SortOrder        *string
	CheckInFrequency json.RawMessage
	CheckInEnabled   *bool
}

// Apply merges the patch into the document.
func (d *Document) Apply(p Patch) {
	if p.SortBy != nil {
		d.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		d.SortOrder = *p.SortOrder
	}
	if p.CheckInFrequency != nil {
		d.CheckInFrequency = p.CheckInFrequency
	}
	if p.CheckInEnabled != nil {
		d.CheckInEnabled = p.CheckInEnabled
	}
}

// CheckInOn resolves the effective enabled flag. An explicit stored flag
// wins; with no flag, reminders are on only when a structured cadence object
// is stored (legacy label and absent documents default off).
func (d Document) CheckInOn() bool {
	if d.CheckInEnabled != nil {
		return *d.CheckInEnabled
	}
	return isJSONObject(d.CheckInFrequency)
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
