package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/kodelab-api/internal/middleware"
	"github.com/noah-isme/kodelab-api/internal/service"
	"github.com/noah-isme/kodelab-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := c.Params(key)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

// requireIdentity returns the bound student identity or writes a 401. The
// second return value reports whether the handler may proceed.
func requireIdentity(c *fiber.Ctx) (service.Identity, bool, error) {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return service.Identity{}, false, utils.SendErrorCode(c, fiber.StatusUnauthorized, utils.CodeUnauthenticated, "unauthorized")
	}
	return identity, true, nil
}
