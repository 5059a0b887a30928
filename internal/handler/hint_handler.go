package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kodelab-api/internal/service"
	"github.com/noah-isme/kodelab-api/internal/utils"
)

// HintHandler exposes the gated hint endpoint.
type HintHandler struct {
	service service.HintService
	logger  zerolog.Logger
}

// NewHintHandler constructs the handler.
func NewHintHandler(service service.HintService, logger zerolog.Logger) *HintHandler {
	return &HintHandler{
		service: service,
		logger:  logger.With().Str("component", "hint_handler").Logger(),
	}
}

// Register wires the hint endpoints into the task router group.
func (h *HintHandler) Register(router fiber.Router) {
	router.Get("/:id/hints/:level", h.getHint)
}

func (h *HintHandler) getHint(c *fiber.Ctx) error {
	identity, ok, resp := requireIdentity(c)
	if !ok {
		return resp
	}

	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid task id")
	}

	level, err := strconv.Atoi(c.Params("level"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid hint level")
	}

	response, err := h.service.GetHint(c.Context(), identity, taskID, level)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "hint delivered", response)
}

func (h *HintHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidHintLevel):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid hint level")
	case errors.Is(err, service.ErrSessionInactive):
		return utils.SendErrorCode(c, fiber.StatusForbidden, utils.CodeSessionInactive, "no active session")
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendErrorCode(c, fiber.StatusNotFound, utils.CodeNotFound, "task not found")
	case errors.Is(err, service.ErrHintNotAvailable):
		return utils.SendErrorCode(c, fiber.StatusForbidden, utils.CodeHintNotYetAvailable, "hint is not available yet")
	case errors.Is(err, service.ErrHintUnavailable):
		return utils.SendErrorCode(c, fiber.StatusServiceUnavailable, utils.CodeProviderUnavailable, "hint assistant temporarily unavailable")
	default:
		h.logger.Error().Err(err).Msg("hint operation failed")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, utils.CodeInternal, "internal server error")
	}
}
