package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/oremi-app/oremi-backend/internal/dto"
	"github.com/oremi-app/oremi-backend/internal/middleware"
	"github.com/oremi-app/oremi-backend/internal/models"
	"github.com/oremi-app/oremi-backend/internal/services"
	"github.com/oremi-app/oremi-backend/internal/settings"
)

type FriendHandler struct {
	service  *services.FriendService
	settings settings.Store
}

func NewFriendHandler(service *services.FriendService, store settings.Store) *FriendHandler {
	return &FriendHandler{service: service, settings: store}
}

// readSettings fetches the caller's settings document for overdue evaluation
// and list ordering. A read failure degrades to defaults rather than failing
// the request.
func (h *FriendHandler) readSettings(c *fiber.Ctx, userID uuid.UUID) settings.Document {
	doc, err := h.settings.Read(c.Context(), userID)
	if err != nil {
		slog.Error("settings read failed", "user_id", userID, "error", err)
		return settings.Document{}
	}
	return doc
}

func (h *FriendHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateFriendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	friend, err := h.service.Create(userID, req)
	if err != nil {
		if errors.Is(err, services.ErrFirstNameRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create friend",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(friend)
}

func (h *FriendHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	doc := h.readSettings(c, userID)

	// Query params override the persisted sort preference for one request.
	sortBy := c.Query("sort_by", doc.SortBy)
	sortOrder := c.Query("sort_order", doc.SortOrder)

	friends, total, err := h.service.List(userID, sortBy, sortOrder, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch friends",
		})
	}

	return c.JSON(dto.FriendListResponse{
		Friends: services.Decorate(friends, doc, time.Now().UTC()),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *FriendHandler) Search(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	query := c.Query("q")
	if len(query) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "search query must be at least 2 characters",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	friends, total, err := h.service.Search(userID, query, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	doc := h.readSettings(c, userID)

	return c.JSON(dto.SearchFriendsResponse{
		Friends: services.Decorate(friends, doc, time.Now().UTC()),
		Total:   total,
		Query:   query,
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *FriendHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	friendID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid friend ID",
		})
	}

	friend, err := h.service.Get(userID, friendID)
	if err != nil {
		return h.friendError(c, err, "Failed to fetch friend")
	}

	doc := h.readSettings(c, userID)
	decorated := services.Decorate([]models.Friend{*friend}, doc, time.Now().UTC())

	return c.JSON(decorated[0])
}

func (h *FriendHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	friendID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid friend ID",
		})
	}

	var req dto.UpdateFriendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	friend, err := h.service.Update(userID, friendID, req)
	if err != nil {
		if errors.Is(err, services.ErrFirstNameRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return h.friendError(c, err, "Failed to update friend")
	}

	return c.JSON(friend)
}

// MarkSeen records a check-in with the friend right now.
func (h *FriendHandler) MarkSeen(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	friendID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid friend ID",
		})
	}

	friend, err := h.service.MarkSeen(userID, friendID)
	if err != nil {
		return h.friendError(c, err, "Failed to update friend")
	}

	return c.JSON(friend)
}

func (h *FriendHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	friendID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid friend ID",
		})
	}

	if err := h.service.Delete(userID, friendID); err != nil {
		return h.friendError(c, err, "Failed to delete friend")
	}

	return c.JSON(dto.DeleteFriendResponse{
		Message: "Friend deleted successfully",
	})
}

func (h *FriendHandler) friendError(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, services.ErrFriendNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	if errors.Is(err, services.ErrNotOwner) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}
