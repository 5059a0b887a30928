package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kodelab-api/internal/dto"
	"github.com/noah-isme/kodelab-api/internal/models"
	"github.com/noah-isme/kodelab-api/internal/service"
	"github.com/noah-isme/kodelab-api/internal/utils"
)

// SubmissionHandler exposes the grading endpoint.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register wires the submission endpoints into the task router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/:id/submissions", h.submit)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	identity, ok, resp := requireIdentity(c)
	if !ok {
		return resp
	}

	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid task id")
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Submit(c.Context(), identity, taskID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", response)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var (
		validationErrors validator.ValidationErrors
		tooFrequent      *models.TooFrequentError
	)
	switch {
	case errors.Is(err, service.ErrSessionInactive):
		return utils.SendErrorCode(c, fiber.StatusForbidden, utils.CodeSessionInactive, "no active session")
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendErrorCode(c, fiber.StatusNotFound, utils.CodeNotFound, "task not found")
	case errors.Is(err, models.ErrProgressLocked):
		return utils.SendErrorCode(c, fiber.StatusForbidden, utils.CodeLocked, "task already solved")
	case errors.As(err, &tooFrequent):
		return utils.SendErrorData(c, fiber.StatusTooManyRequests, utils.CodeTooFrequent, tooFrequent.Error(), fiber.Map{
			"wait_seconds": tooFrequent.WaitSeconds(),
		})
	case errors.Is(err, models.ErrNoCodeChange):
		return utils.SendErrorCode(c, fiber.StatusConflict, utils.CodeNoCodeChange, "code has not changed since the last submit")
	case errors.Is(err, service.ErrEmptyCode):
		return utils.SendError(c, fiber.StatusBadRequest, "code is required")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrNoTestCases):
		h.logger.Error().Err(err).Msg("task misconfigured")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, utils.CodeInternal, "task is not gradable")
	default:
		h.logger.Error().Err(err).Msg("submission operation failed")
		return utils.SendErrorCode(c, fiber.StatusInternalServerError, utils.CodeInternal, "internal server error")
	}
}
