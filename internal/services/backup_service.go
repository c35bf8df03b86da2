package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oremi-app/oremi-backend/internal/dto"
	"github.com/oremi-app/oremi-backend/internal/models"
)

var ErrNoFriendArray = errors.New("JSON does not contain an array of friends")

// BackupService implements the JSON export/import path.
type BackupService struct {
	db      *gorm.DB
	friends *FriendService
}

func NewBackupService(db *gorm.DB, friends *FriendService) *BackupService {
	return &BackupService{db: db, friends: friends}
}

// Export returns the user's full friend list in the backup file format.
func (s *BackupService) Export(userID uuid.UUID) (*dto.BackupExport, error) {
	var friends []models.Friend
	err := s.db.Where("user_id = ?", userID).
		Order("first_name ASC, last_name ASC").
		Find(&friends).Error
	if err != nil {
		return nil, err
	}

	return &dto.BackupExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Data:       friends,
	}, nil
}

// importItem tolerates the field spellings found in backups from different
// app versions: camelCase, snake_case, or a single "name" to split.
type importItem struct {
	FirstName      string `json:"firstName"`
	FirstNameSnake string `json:"first_name"`
	LastName       string `json:"lastName"`
	LastNameSnake  string `json:"last_name"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Birthday       string `json:"birthday"`
	Notes          string `json:"notes"`
	LastSeen       string `json:"lastSeen"`
	LastSeenSnake  string `json:"last_seen"`
}

func (it importItem) names() (first, last string) {
	first = it.FirstName
	if first == "" {
		first = it.FirstNameSnake
	}
	last = it.LastName
	if last == "" {
		last = it.LastNameSnake
	}
	if first == "" {
		if parts := strings.Fields(it.Name); len(parts) > 0 {
			first = parts[0]
			if last == "" && len(parts) > 1 {
				last = strings.Join(parts[1:], " ")
			}
		}
	}
	return first, last
}

func (it importItem) lastSeen() string {
	if it.LastSeen != "" {
		return it.LastSeen
	}
	return it.LastSeenSnake
}

// Import reads an uploaded backup and creates friend records from it.
// Accepted shapes: a bare array, {"data": [...]}, or {"items": [...]}.
// Entries without a resolvable first name are skipped, not rejected.
func (s *BackupService) Import(userID uuid.UUID, payload []byte) (*dto.ImportResponse, error) {
	items, err := extractItems(payload)
	if err != nil {
		return nil, err
	}

	resp := &dto.ImportResponse{}
	for _, it := range items {
		first, last := it.names()
		if first == "" {
			resp.Skipped++
			continue
		}

		_, err := s.friends.Create(userID, dto.CreateFriendRequest{
			FirstName: first,
			LastName:  last,
			Email:     it.Email,
			Phone:     it.Phone,
			Birthday:  it.Birthday,
			Notes:     it.Notes,
			LastSeen:  it.lastSeen(),
		})
		if err != nil {
			resp.Skipped++
			continue
		}
		resp.Imported++
	}

	return resp, nil
}

func extractItems(payload []byte) ([]importItem, error) {
	var items []importItem
	if err := json.Unmarshal(payload, &items); err == nil {
		return items, nil
	}

	var wrapper struct {
		Data  []importItem `json:"data"`
		Items []importItem `json:"items"`
	}
	if err := json.Unmarshal(payload, &wrapper); err != nil {
		return nil, ErrNoFriendArray
	}
	if wrapper.Data != nil {
		return wrapper.Data, nil
	}
	if wrapper.Items != nil {
		return wrapper.Items, nil
	}
	return nil, ErrNoFriendArray
}
