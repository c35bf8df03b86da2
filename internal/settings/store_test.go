package settings

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oremi-app/oremi-backend/internal/models"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&models.UserSettings{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewGormStore(db)
}

func TestGormStore_WriteMergesAcrossWrites(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()
	ctx := context.Background()

	sortBy := SortByCreatedAt
	if err := store.Write(ctx, userID, Patch{SortBy: &sortBy}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	on := true
	freq := json.RawMessage(`{"interval":"weeks","every":2}`)
	if err := store.Write(ctx, userID, Patch{CheckInFrequency: freq, CheckInEnabled: &on}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	doc, err := store.Read(ctx, userID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if doc.SortBy != SortByCreatedAt {
		t.Errorf("sortBy = %q, lost by a later unrelated patch", doc.SortBy)
	}
	if string(doc.CheckInFrequency) != string(freq) {
		t.Errorf("checkInFrequency = %s, want %s", doc.CheckInFrequency, freq)
	}
	if doc.CheckInEnabled == nil || !*doc.CheckInEnabled {
		t.Error("checkInEnabled not persisted")
	}
}

func TestGormStore_ReadUnknownUserIsEmpty(t *testing.T) {
	store := newTestStore(t)
	doc, err := store.Read(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if doc.SortBy != "" || doc.SortOrder != "" || doc.CheckInFrequency != nil || doc.CheckInEnabled != nil {
		t.Errorf("unknown user should read as an empty document, got %+v", doc)
	}
}

func TestGormStore_SubscribeFiresWithCurrentState(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()

	sortBy := SortByCreatedAt
	if err := store.Write(context.Background(), userID, Patch{SortBy: &sortBy}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var got []Document
	unsub := store.Subscribe(userID, func(doc Document) {
		got = append(got, doc)
	})
	defer unsub()

	if len(got) != 1 {
		t.Fatalf("subscribe delivered %d documents, want the current snapshot", len(got))
	}
	if got[0].SortBy != SortByCreatedAt {
		t.Errorf("snapshot sortBy = %q, want %q", got[0].SortBy, SortByCreatedAt)
	}
}

func TestGormStore_UnsubscribeStopsDelivery(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()

	deliveries := 0
	unsub := store.Subscribe(userID, func(Document) { deliveries++ })
	unsub()

	order := SortDesc
	if err := store.Write(context.Background(), userID, Patch{SortOrder: &order}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if deliveries != 1 {
		t.Errorf("got %d deliveries, want only the initial snapshot", deliveries)
	}
}

// A write racing a new subscription must not fan out before the subscriber
// has received its initial snapshot, or the stale snapshot would arrive
// second and overwrite the newer state.
func TestGormStore_InitialSnapshotSerializedWithWrites(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()

	sortBy := SortByCreatedAt
	if err := store.Write(context.Background(), userID, Patch{SortBy: &sortBy}); err != nil {
		t.Fatalf("write: %v", err)
	}

	delivering := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var got []Document
	first := true

	unsubCh := make(chan func(), 1)
	go func() {
		unsubCh <- store.Subscribe(userID, func(doc Document) {
			mu.Lock()
			got = append(got, doc)
			initial := first
			first = false
			mu.Unlock()
			if initial {
				close(delivering)
				<-release
			}
		})
	}()
	<-delivering

	writeDone := make(chan struct{})
	go func() {
		order := SortDesc
		if err := store.Write(context.Background(), userID, Patch{SortOrder: &order}); err != nil {
			t.Errorf("write: %v", err)
		}
		close(writeDone)
	}()

	select {
	case <-writeDone:
		t.Fatal("write fanned out while the initial snapshot was still being delivered")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-writeDone
	unsub := <-unsubCh
	defer unsub()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("got %d deliveries, want snapshot then write", len(got))
	}
	if got[0].SortOrder != "" {
		t.Errorf("snapshot already contains the racing write: %+v", got[0])
	}
	if got[1].SortOrder != SortDesc {
		t.Errorf("write delivery = %+v, want sortOrder %q", got[1], SortDesc)
	}
}
