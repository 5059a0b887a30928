package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kodelab-api/internal/dto"
	"github.com/noah-isme/kodelab-api/internal/service"
	"github.com/noah-isme/kodelab-api/internal/utils"
)

// ActivityHandler exposes the proctoring event intake endpoint.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires the activity endpoints into the task router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Post("/:id/events", h.record)
}

func (h *ActivityHandler) record(c *fiber.Ctx) error {
	identity, ok, resp := requireIdentity(c)
	if !ok {
		return resp
	}

	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid task id")
	}

	var payload dto.ActivityEventRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.RecordForTask(c.Context(), identity, taskID, payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "event recorded", nil)
}

func (h *ActivityHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSessionInactive):
		return utils.SendErrorCode(c, fiber.StatusForbidden, utils.CodeSessionInactive, "no active session")
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendErrorCode(c, fiber.StatusNotFound, utils.CodeNotFound, "task not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("activity operation failed")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, utils.CodeInternal, "internal server error")
	}
}
