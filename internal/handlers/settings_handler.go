package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/oremi-app/oremi-backend/internal/checkin"
	"github.com/oremi-app/oremi-backend/internal/dto"
	"github.com/oremi-app/oremi-backend/internal/middleware"
	"github.com/oremi-app/oremi-backend/internal/settings"
)

// SettingsHandler exposes the user preferences surface. Sort settings write
// straight through the store; check-in edits route through the per-user
// preference controller so debouncing and the last-known-good policy apply.
type SettingsHandler struct {
	store       settings.Store
	controllers *checkin.Registry
}

func NewSettingsHandler(store settings.Store, controllers *checkin.Registry) *SettingsHandler {
	return &SettingsHandler{store: store, controllers: controllers}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	doc, err := h.store.Read(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch settings",
		})
	}

	return c.JSON(settingsResponse(doc))
}

func (h *SettingsHandler) SetSort(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SortSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.SortBy != settings.SortByName && req.SortBy != settings.SortByCreatedAt {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "sort_by must be 'name' or 'createdAt'",
		})
	}
	if req.SortOrder != settings.SortAsc && req.SortOrder != settings.SortDesc {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "sort_order must be 'asc' or 'desc'",
		})
	}

	patch := settings.Patch{SortBy: &req.SortBy, SortOrder: &req.SortOrder}
	if err := h.store.Write(c.Context(), userID, patch); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save settings",
		})
	}

	return c.JSON(fiber.Map{"message": "Settings saved"})
}

// SetCheckInInterval changes the cadence unit. Persistence is immediate.
func (h *SettingsHandler) SetCheckInInterval(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CheckInIntervalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	ctrl := h.controllers.Get(userID)
	ctrl.SetInterval(checkin.Interval(req.Interval))

	return h.checkInState(c, userID)
}

// SetCheckInEvery changes the cadence multiplier. The write is debounced;
// the response reflects the optimistic local state.
func (h *SettingsHandler) SetCheckInEvery(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CheckInEveryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	ctrl := h.controllers.Get(userID)
	ctrl.SetEvery(req.Every)

	return h.checkInState(c, userID)
}

func (h *SettingsHandler) SetCheckInEnabled(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CheckInEnabledRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	ctrl := h.controllers.Get(userID)
	ctrl.SetEnabled(req.Enabled)

	return h.checkInState(c, userID)
}

func (h *SettingsHandler) checkInState(c *fiber.Ctx, userID uuid.UUID) error {
	cadence, enabled := h.controllers.Get(userID).State()
	return c.JSON(dto.CheckInResponse{
		Interval: string(cadence.Interval),
		Every:    cadence.Every,
		Enabled:  enabled,
	})
}

func settingsResponse(doc settings.Document) dto.SettingsResponse {
	cadence := checkin.Resolve(doc.CheckInFrequency)

	sortBy := doc.SortBy
	if sortBy == "" {
		sortBy = settings.SortByName
	}
	sortOrder := doc.SortOrder
	if sortOrder == "" {
		sortOrder = settings.SortAsc
	}

	return dto.SettingsResponse{
		SortBy:    sortBy,
		SortOrder: sortOrder,
		CheckIn: dto.CheckInResponse{
			Interval: string(cadence.Interval),
			Every:    cadence.Every,
			Enabled:  doc.CheckInOn(),
		},
	}
}
