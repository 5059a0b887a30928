package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kodelab-api/internal/service"
	"github.com/noah-isme/kodelab-api/internal/utils"
)

// SessionHandler exposes the active-session lookup.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register wires the session endpoints into the router group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Get("/active-session", h.activeSession)
}

func (h *SessionHandler) activeSession(c *fiber.Ctx) error {
	identity, ok, resp := requireIdentity(c)
	if !ok {
		return resp
	}

	response, err := h.service.ActiveSession(c.Context(), identity)
	if err != nil {
		h.logger.Error().Err(err).Msg("active session lookup failed")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, utils.CodeInternal, "internal server error")
	}

	return utils.SendSuccess(c, "session state retrieved", response)
}
