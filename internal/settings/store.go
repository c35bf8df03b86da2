package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oremi-app/oremi-backend/internal/models"
)

// Store persists per-user settings documents and streams live updates to
// in-process subscribers. Subscribe fires once with the current state, then
// after every successful write for that user.
type Store interface {
	Read(ctx context.Context, userID uuid.UUID) (Document, error)
	Write(ctx context.Context, userID uuid.UUID, patch Patch) error
	Subscribe(userID uuid.UUID, cb func(Document)) (unsubscribe func())
}

type subscriber struct {
	id int
	cb func(Document)
}

// GormStore is the Postgres-backed Store. Writes are serialized per store so
// a later edit cannot be overtaken by an earlier, slower one.
type GormStore struct {
	db *gorm.DB

	mu     sync.Mutex
	subs   map[uuid.UUID][]subscriber
	nextID int
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:   db,
		subs: make(map[uuid.UUID][]subscriber),
	}
}

func (s *GormStore) Read(ctx context.Context, userID uuid.UUID) (Document, error) {
	var row models.UserSettings
	err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return decodeDocument(row.Document)
}

// Write applies a merge-patch to the stored document, creating the row on
// first write, then fans the new document out to subscribers.
func (s *GormStore) Write(ctx context.Context, userID uuid.UUID, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc Document
	var row models.UserSettings
	err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.UserSettings{UserID: userID}
	case err != nil:
		return fmt.Errorf("failed to load settings: %w", err)
	default:
		if doc, err = decodeDocument(row.Document); err != nil {
			return err
		}
	}

	doc.Apply(patch)

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	row.Document = datatypes.JSON(raw)

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	for _, sub := range s.subs[userID] {
		sub.cb(doc)
	}
	return nil
}

func (s *GormStore) Subscribe(userID uuid.UUID, cb func(Document)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[userID] = append(s.subs[userID], subscriber{id: id, cb: cb})

	// Fire once with current state, matching the store's push contract. The
	// read and delivery happen under the write mutex: a concurrent Write must
	// not fan out a newer document before the subscriber has its snapshot, or
	// the stale snapshot would arrive second and win.
	doc, err := s.Read(context.Background(), userID)
	if err == nil {
		cb(doc)
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := s.subs[userID]
		for i, sub := range list {
			if sub.id == id {
				s.subs[userID] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(s.subs[userID]) == 0 {
			delete(s.subs, userID)
		}
	}
}

func decodeDocument(raw datatypes.JSON) (Document, error) {
	if len(raw) == 0 {
		return Document{}, nil
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode settings document: %w", err)
	}
	return doc, nil
}
