package settings

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestApply_MergesOnlySetFields(t *testing.T) {
	on := true
	doc := Document{
		SortBy:           SortByName,
		SortOrder:        SortAsc,
		CheckInFrequency: json.RawMessage(`{"interval":"weeks","every":2}`),
		CheckInEnabled:   &on,
	}

	doc.Apply(Patch{SortOrder: strPtr(SortDesc)})

	if doc.SortBy != SortByName {
		t.Errorf("sortBy changed to %q by an unrelated patch", doc.SortBy)
	}
	if doc.SortOrder != SortDesc {
		t.Errorf("sortOrder = %q, want %q", doc.SortOrder, SortDesc)
	}
	if string(doc.CheckInFrequency) != `{"interval":"weeks","every":2}` {
		t.Errorf("checkInFrequency changed to %s by an unrelated patch", doc.CheckInFrequency)
	}
	if doc.CheckInEnabled == nil || !*doc.CheckInEnabled {
		t.Error("checkInEnabled changed by an unrelated patch")
	}

	off := false
	doc.Apply(Patch{CheckInEnabled: &off})
	if doc.CheckInEnabled == nil || *doc.CheckInEnabled {
		t.Error("checkInEnabled not updated by a flag-only patch")
	}
	if string(doc.CheckInFrequency) != `{"interval":"weeks","every":2}` {
		t.Error("flag-only patch must leave the cadence untouched")
	}
}

func TestCheckInOn(t *testing.T) {
	on, off := true, false
	cases := []struct {
		name string
		doc  Document
		want bool
	}{
		{"empty document", Document{}, false},
		{"legacy label only", Document{CheckInFrequency: json.RawMessage(`"weekly"`)}, false},
		{"structured cadence only", Document{CheckInFrequency: json.RawMessage(`{"interval":"weeks","every":1}`)}, true},
		{"explicit off beats structured cadence", Document{
			CheckInFrequency: json.RawMessage(`{"interval":"weeks","every":1}`),
			CheckInEnabled:   &off,
		}, false},
		{"explicit on with legacy label", Document{
			CheckInFrequency: json.RawMessage(`"daily"`),
			CheckInEnabled:   &on,
		}, true},
	}
	for _, tc := range cases {
		if got := tc.doc.CheckInOn(); got != tc.want {
			t.Errorf("%s: CheckInOn() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
