package checkin

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oremi-app/oremi-backend/internal/settings"
)

// fakeStore is an in-memory settings.Store that records every write and fans
// updates out synchronously, mirroring the GormStore push contract.
type fakeStore struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]settings.Document
	written []settings.Patch
	subs    map[uuid.UUID][]func(settings.Document)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs: make(map[uuid.UUID]settings.Document),
		subs: make(map[uuid.UUID][]func(settings.Document)),
	}
}

func (s *fakeStore) Read(_ context.Context, userID uuid.UUID) (settings.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[userID], nil
}

func (s *fakeStore) Write(_ context.Context, userID uuid.UUID, patch settings.Patch) error {
	s.mu.Lock()
	doc := s.docs[userID]
	doc.Apply(patch)
	s.docs[userID] = doc
	s.written = append(s.written, patch)
	subs := append([]func(settings.Document){}, s.subs[userID]...)
	s.mu.Unlock()

	for _, cb := range subs {
		cb(doc)
	}
	return nil
}

func (s *fakeStore) Subscribe(userID uuid.UUID, cb func(settings.Document)) func() {
	s.mu.Lock()
	s.subs[userID] = append(s.subs[userID], cb)
	doc := s.docs[userID]
	s.mu.Unlock()

	cb(doc)
	return func() {}
}

func (s *fakeStore) seed(userID uuid.UUID, c Cadence, enabled bool) {
	raw, _ := json.Marshal(c)
	s.mu.Lock()
	s.docs[userID] = settings.Document{CheckInFrequency: raw, CheckInEnabled: &enabled}
	s.mu.Unlock()
}

func (s *fakeStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.written)
}

func (s *fakeStore) lastWrite() settings.Patch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written[len(s.written)-1]
}

// notify pushes a document to subscribers as if another client wrote it.
func (s *fakeStore) notify(userID uuid.UUID, doc settings.Document) {
	s.mu.Lock()
	s.docs[userID] = doc
	subs := append([]func(settings.Document){}, s.subs[userID]...)
	s.mu.Unlock()
	for _, cb := range subs {
		cb(doc)
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestController_SeedsFromStore(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.seed(userID, Cadence{Interval: IntervalWeeks, Every: 2}, true)

	ctrl := NewController(store, userID)
	defer ctrl.Close()

	cadence, enabled := ctrl.State()
	if !enabled {
		t.Error("controller should seed enabled from the stored document")
	}
	if want := (Cadence{Interval: IntervalWeeks, Every: 2}); cadence != want {
		t.Errorf("seeded cadence = %+v, want %+v", cadence, want)
	}
}

func TestController_DebounceCollapsesEveryEdits(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.seed(userID, Cadence{Interval: IntervalWeeks, Every: 1}, true)

	ctrl := NewController(store, userID, WithDebounce(30*time.Millisecond))
	defer ctrl.Close()

	ctrl.SetEvery(2)
	ctrl.SetEvery(3)
	ctrl.SetEvery(5)

	// Local state reflects the latest edit before anything is persisted.
	if cadence, _ := ctrl.State(); cadence.Every != 5 {
		t.Errorf("local every = %d before flush, want 5", cadence.Every)
	}
	if n := store.writeCount(); n != 0 {
		t.Errorf("%d writes before the quiet period elapsed, want 0", n)
	}

	waitFor(t, func() bool { return store.writeCount() > 0 }, "debounced write never flushed")

	if n := store.writeCount(); n != 1 {
		t.Errorf("rapid edits produced %d writes, want exactly 1", n)
	}
	got := Resolve(store.lastWrite().CheckInFrequency)
	if want := (Cadence{Interval: IntervalWeeks, Every: 5}); got != want {
		t.Errorf("persisted cadence = %+v, want %+v", got, want)
	}
}

func TestController_DisableEnableRestoresCadence(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.seed(userID, Cadence{Interval: IntervalWeeks, Every: 3}, true)

	ctrl := NewController(store, userID, WithDebounce(10*time.Millisecond))
	defer ctrl.Close()

	ctrl.SetEnabled(false)
	waitFor(t, func() bool { return store.writeCount() == 1 }, "disable write never flushed")

	// Disabling persists the flag only, leaving the cadence fields intact.
	off := store.lastWrite()
	if off.CheckInFrequency != nil {
		t.Error("disable must not touch the stored cadence")
	}
	if off.CheckInEnabled == nil || *off.CheckInEnabled {
		t.Error("disable must persist checkInEnabled=false")
	}
	if _, enabled := ctrl.State(); enabled {
		t.Error("controller still reports enabled after disable")
	}

	ctrl.SetEnabled(true)
	waitFor(t, func() bool { return store.writeCount() == 2 }, "enable write never flushed")

	cadence, enabled := ctrl.State()
	if !enabled {
		t.Error("controller not enabled after re-enable")
	}
	if want := (Cadence{Interval: IntervalWeeks, Every: 3}); cadence != want {
		t.Errorf("re-enable restored %+v, want the remembered %+v", cadence, want)
	}
	if got := Resolve(store.lastWrite().CheckInFrequency); got != cadence {
		t.Errorf("persisted cadence = %+v, want %+v", got, cadence)
	}
}

func TestController_EveryEditWhileDisabledReEnables(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.seed(userID, Cadence{Interval: IntervalWeeks, Every: 2}, false)

	ctrl := NewController(store, userID, WithDebounce(10*time.Millisecond))
	defer ctrl.Close()

	ctrl.SetEvery(4)
	waitFor(t, func() bool { return store.writeCount() > 0 }, "debounced write never flushed")

	// The flushed write is a full configuration, so the controller and the
	// store must agree that reminders are back on.
	written := store.lastWrite()
	if written.CheckInEnabled == nil || !*written.CheckInEnabled {
		t.Error("flushed write must persist checkInEnabled=true")
	}
	cadence, enabled := ctrl.State()
	if !enabled {
		t.Error("controller reports disabled after persisting an enabled configuration")
	}
	if want := (Cadence{Interval: IntervalWeeks, Every: 4}); cadence != want {
		t.Errorf("cadence = %+v, want %+v", cadence, want)
	}
}

func TestController_SetIntervalPersistsImmediately(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()

	ctrl := NewController(store, userID)
	defer ctrl.Close()

	ctrl.SetInterval(IntervalDays)
	waitFor(t, func() bool { return store.writeCount() == 1 }, "interval write never flushed")

	cadence, enabled := ctrl.State()
	if !enabled {
		t.Error("choosing a recurring interval must re-enable reminders")
	}
	if cadence.Interval != IntervalDays {
		t.Errorf("interval = %q, want %q", cadence.Interval, IntervalDays)
	}
}

func TestController_CloseCancelsPendingWrite(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.seed(userID, Cadence{Interval: IntervalDays, Every: 1}, true)

	ctrl := NewController(store, userID, WithDebounce(20*time.Millisecond))
	ctrl.SetEvery(7)
	ctrl.Close()

	time.Sleep(60 * time.Millisecond)
	if n := store.writeCount(); n != 0 {
		t.Errorf("%d writes after Close cancelled the pending edit, want 0", n)
	}
}

func TestController_RemoteUpdateAdopted(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.seed(userID, Cadence{Interval: IntervalDays, Every: 1}, true)

	ctrl := NewController(store, userID)
	defer ctrl.Close()

	on := true
	raw, _ := json.Marshal(Cadence{Interval: IntervalMonths, Every: 2})
	store.notify(userID, settings.Document{CheckInFrequency: raw, CheckInEnabled: &on})

	cadence, _ := ctrl.State()
	if want := (Cadence{Interval: IntervalMonths, Every: 2}); cadence != want {
		t.Errorf("remote update not adopted: got %+v, want %+v", cadence, want)
	}
}

func TestController_PendingEditWinsOverRemoteUpdate(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.seed(userID, Cadence{Interval: IntervalWeeks, Every: 1}, true)

	ctrl := NewController(store, userID, WithDebounce(50*time.Millisecond))
	defer ctrl.Close()

	ctrl.SetEvery(5)

	// A stale update arriving mid-debounce must not revert the local edit.
	on := true
	raw, _ := json.Marshal(Cadence{Interval: IntervalWeeks, Every: 9})
	store.notify(userID, settings.Document{CheckInFrequency: raw, CheckInEnabled: &on})

	if cadence, _ := ctrl.State(); cadence.Every != 5 {
		t.Errorf("remote update reverted a pending edit: every = %d, want 5", cadence.Every)
	}

	waitFor(t, func() bool { return store.writeCount() > 0 }, "debounced write never flushed")
	got := Resolve(store.lastWrite().CheckInFrequency)
	if want := (Cadence{Interval: IntervalWeeks, Every: 5}); got != want {
		t.Errorf("persisted cadence = %+v, want %+v", got, want)
	}
}
