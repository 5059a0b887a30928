package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/kodelab-api/internal/service"
	"github.com/noah-isme/kodelab-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens and
// binds the decoded student identity to the request.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, utils.CodeUnauthenticated, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, utils.CodeUnauthenticated, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, utils.CodeUnauthenticated, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, utils.CodeUnauthenticated, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, utils.CodeUnauthenticated, "invalid token claims")
		}

		studentID := extractUintClaim(claims, "student_id", "sub")
		classID := extractUintClaim(claims, "class_id")
		if studentID == nil || classID == nil {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, utils.CodeUnauthenticated, "invalid token claims")
		}

		c.Locals("identity", service.Identity{StudentID: *studentID, ClassGroupID: *classID})
		c.Locals("student_id", *studentID)

		return c.Next()
	}
}

// IdentityFromCtx returns the bound identity, if any.
func IdentityFromCtx(c *fiber.Ctx) (service.Identity, bool) {
	identity, ok := c.Locals("identity").(service.Identity)
	return identity, ok
}

func extractUintClaim(claims jwt.MapClaims, keys ...string) *uint {
	for _, key := range keys {
		value, ok := claims[key]
		if !ok {
			continue
		}
		if normalized, err := normalizeUint(value); err == nil {
			return &normalized
		}
	}
	return nil
}

func normalizeUint(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid claim value")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid claim value")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported claim type")
	}
}
