package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/oremi-app/oremi-backend/internal/models"
	"github.com/oremi-app/oremi-backend/internal/settings"
)

func TestDecorate(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	recently := now.Add(-2 * 24 * time.Hour)
	longAgo := now.Add(-20 * 24 * time.Hour)

	friends := []models.Friend{
		{FirstName: "Ada", LastSeen: &recently},
		{FirstName: "Grace", LastSeen: &longAgo},
		{FirstName: "Alan"}, // never seen
	}

	on := true
	doc := settings.Document{
		CheckInFrequency: json.RawMessage(`{"interval":"weeks","every":2}`),
		CheckInEnabled:   &on,
	}

	out := Decorate(friends, doc, now)
	if len(out) != 3 {
		t.Fatalf("got %d responses, want 3", len(out))
	}
	for i, want := range []bool{false, true, true} {
		if out[i].Overdue != want {
			t.Errorf("%s: overdue = %v, want %v", friends[i].FirstName, out[i].Overdue, want)
		}
	}

	// With reminders disabled nobody is overdue.
	off := false
	doc.CheckInEnabled = &off
	for i, resp := range Decorate(friends, doc, now) {
		if resp.Overdue {
			t.Errorf("%s: overdue while reminders disabled", friends[i].FirstName)
		}
	}
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		sortBy, sortOrder string
		want              string
	}{
		{settings.SortByName, settings.SortAsc, "first_name ASC, last_name ASC"},
		{settings.SortByName, settings.SortDesc, "first_name DESC, last_name DESC"},
		{settings.SortByCreatedAt, settings.SortAsc, "created_at ASC"},
		{settings.SortByCreatedAt, settings.SortDesc, "created_at DESC"},
		{"", "", "first_name ASC, last_name ASC"},
		{"bogus", "sideways", "first_name ASC, last_name ASC"},
	}
	for _, tc := range cases {
		if got := orderClause(tc.sortBy, tc.sortOrder); got != tc.want {
			t.Errorf("orderClause(%q, %q) = %q, want %q", tc.sortBy, tc.sortOrder, got, tc.want)
		}
	}
}
