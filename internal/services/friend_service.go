package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oremi-app/oremi-backend/internal/checkin"
	"github.com/oremi-app/oremi-backend/internal/dto"
	"github.com/oremi-app/oremi-backend/internal/models"
	"github.com/oremi-app/oremi-backend/internal/settings"
)

var (
	ErrFirstNameRequired = errors.New("first name is required")
	ErrFriendNotFound    = errors.New("friend not found")
	ErrNotOwner          = errors.New("you do not own this friend record")
)

type FriendService struct {
	db *gorm.DB
}

func NewFriendService(db *gorm.DB) *FriendService {
	return &FriendService{db: db}
}

func (s *FriendService) Create(userID uuid.UUID, req dto.CreateFriendRequest) (*models.Friend, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, ErrFirstNameRequired
	}

	// New friends count as seen now unless the caller provides a timestamp.
	// A provided but malformed timestamp is stored as "never seen" so the
	// record surfaces as overdue instead of being silently stamped fresh.
	var lastSeen *time.Time
	if req.LastSeen == "" {
		now := time.Now().UTC()
		lastSeen = &now
	} else {
		lastSeen = checkin.ParseLastSeen(req.LastSeen)
	}

	favourites := req.FavouriteThings
	if favourites == nil {
		favourites = []string{}
	}

	friend := models.Friend{
		ID:              uuid.New(),
		UserID:          userID,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           req.Email,
		Phone:           req.Phone,
		Birthday:        req.Birthday,
		LastSeen:        lastSeen,
		Notes:           req.Notes,
		FavouriteThings: favourites,
	}

	if err := s.db.Create(&friend).Error; err != nil {
		return nil, err
	}

	return &friend, nil
}

func (s *FriendService) List(userID uuid.UUID, sortBy, sortOrder string, limit, offset int) ([]models.Friend, int64, error) {
	var friends []models.Friend
	var total int64

	s.db.Model(&models.Friend{}).Where("user_id = ?", userID).Count(&total)

	err := s.db.Where("user_id = ?", userID).
		Order(orderClause(sortBy, sortOrder)).
		Limit(limit).
		Offset(offset).
		Find(&friends).Error

	return friends, total, err
}

func (s *FriendService) Search(userID uuid.UUID, query string, limit, offset int) ([]models.Friend, int64, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, 0, errors.New("search query must be at least 2 characters")
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var friends []models.Friend
	var total int64

	pattern := "%" + query + "%"
	where := "user_id = ? AND (first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR notes ILIKE ?)"

	countQuery := s.db.Model(&models.Friend{}).
		Where(where, userID, pattern, pattern, pattern, pattern)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, errors.New("failed to count search results")
	}

	err := s.db.Where(where, userID, pattern, pattern, pattern, pattern).
		Order("first_name ASC, last_name ASC").
		Limit(limit).
		Offset(offset).
		Find(&friends).Error
	if err != nil {
		return nil, 0, errors.New("failed to fetch search results")
	}

	return friends, total, nil
}

func (s *FriendService) Get(userID, friendID uuid.UUID) (*models.Friend, error) {
	var friend models.Friend
	if err := s.db.First(&friend, "id = ?", friendID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, err
	}

	if friend.UserID != userID {
		return nil, ErrNotOwner
	}

	return &friend, nil
}

func (s *FriendService) Update(userID, friendID uuid.UUID, req dto.UpdateFriendRequest) (*models.Friend, error) {
	friend, err := s.Get(userID, friendID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		if strings.TrimSpace(*req.FirstName) == "" {
			return nil, ErrFirstNameRequired
		}
		friend.FirstName = strings.TrimSpace(*req.FirstName)
	}

	if req.LastName != nil {
		friend.LastName = strings.TrimSpace(*req.LastName)
	}

	if req.Email != nil {
		friend.Email = *req.Email
	}

	if req.Phone != nil {
		friend.Phone = *req.Phone
	}

	if req.Birthday != nil {
		friend.Birthday = *req.Birthday
	}

	if req.Notes != nil {
		friend.Notes = *req.Notes
	}

	if req.FavouriteThings != nil {
		friend.FavouriteThings = *req.FavouriteThings
	}

	if req.LastSeen != nil {
		// Empty string clears the timestamp; malformed input is treated the
		// same way, so the friend surfaces as overdue rather than vanishing
		// from the reminder list.
		friend.LastSeen = checkin.ParseLastSeen(*req.LastSeen)
	}

	if err := s.db.Save(friend).Error; err != nil {
		return nil, err
	}

	return friend, nil
}

// MarkSeen stamps the friend's last-seen time to now.
func (s *FriendService) MarkSeen(userID, friendID uuid.UUID) (*models.Friend, error) {
	friend, err := s.Get(userID, friendID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	friend.LastSeen = &now

	if err := s.db.Save(friend).Error; err != nil {
		return nil, err
	}

	return friend, nil
}

func (s *FriendService) Delete(userID, friendID uuid.UUID) error {
	friend, err := s.Get(userID, friendID)
	if err != nil {
		return err
	}

	return s.db.Delete(friend).Error
}

// Decorate pairs friends with their derived overdue flag, evaluated against
// the owner's settings document at the given instant.
func Decorate(friends []models.Friend, doc settings.Document, now time.Time) []dto.FriendResponse {
	cadence := checkin.Resolve(doc.CheckInFrequency)
	enabled := doc.CheckInOn()

	out := make([]dto.FriendResponse, 0, len(friends))
	for _, f := range friends {
		out = append(out, dto.FriendResponse{
			Friend:  f,
			Overdue: checkin.IsOverdue(f.LastSeen, cadence, enabled, now),
		})
	}
	return out
}

func orderClause(sortBy, sortOrder string) string {
	dir := "ASC"
	if sortOrder == settings.SortDesc {
		dir = "DESC"
	}
	if sortBy == settings.SortByCreatedAt {
		return "created_at " + dir
	}
	// Default sort: name, firstName then lastName.
	return "first_name " + dir + ", last_name " + dir
}
