package serverutils

import (
	"realtime-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// NewJwtMiddleware authenticates requests with a bearer access token and
// stores the resolved user id in ctx.Locals("user_id").
func NewJwtMiddleware(authService service.IAuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"code":    401,
				"message": "Missing token",
			})
		}
		tokenStr := authHeader[7:]

		user, err := authService.VerifyToken(ctx.UserContext(), tokenStr, service.TokenTypeAccess)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"code":    401,
				"message": "Invalid token",
			})
		}

		ctx.Locals("user_id", user.Id)
		return ctx.Next()
	}
}
