package utils

import "github.com/gofiber/fiber/v2"

// Logical reason codes surfaced to clients alongside the HTTP status.
const (
	CodeOK                  = "ok"
	CodeUnauthenticated     = "unauthenticated"
	CodeSessionInactive     = "session-inactive"
	CodeNotFound            = "not-found"
	CodeLocked              = "locked"
	CodeTooFrequent         = "too-frequent"
	CodeNoCodeChange        = "no-code-change"
	CodeHintNotYetAvailable = "hint-not-yet-available"
	CodeProviderUnavailable = "provider-unavailable"
	CodeBadRequest          = "bad-request"
	CodeInternal            = "internal-error"
)

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success: true,
		Code:    CodeOK,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	return SendErrorCode(c, status, CodeBadRequest, message)
}

// SendErrorCode sends an error JSON response carrying a logical reason code.
func SendErrorCode(c *fiber.Ctx, status int, code, message string) error {
	return SendErrorData(c, status, code, message, nil)
}

// SendErrorData sends an error JSON response with a reason code and a
// machine-readable payload, for rejections that carry structured detail.
func SendErrorData(c *fiber.Ctx, status int, code, message string, data interface{}) error {
	if message == "" {
		message = "error"
	}
	if code == "" {
		code = CodeBadRequest
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Code:    code,
		Data:    data,
		Message: message,
	})
}
