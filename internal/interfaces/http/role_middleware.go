package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/logistica-api/internal/application/session"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// RequireRole protege una ruta exigiendo alguno de los roles dados.
// Contrato clave: loading es "desconocido", nunca "denegado" — mientras hay
// una resolución en curso se responde 503 con Retry-After, jamás 403.
// El backend autoritativo revalida cada acción privilegiada por su cuenta;
// este gate es solo conveniencia de presentación.
func RequireRole(gw *session.ContextGateway, roles ...entity.CanonicalRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if gw.Loading() {
			c.Set("Retry-After", "1")
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Code: "SESSION_LOADING", Message: "resolución de sesión en curso; reintentar",
			})
		}
		snap := gw.Snapshot()
		if snap.IsEmpty() {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code: "UNAUTHENTICATED", Message: "no hay sesión activa",
			})
		}
		if !snap.HasAnyRole(roles...) {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Code: "FORBIDDEN", Message: "rol insuficiente para este recurso",
			})
		}
		return c.Next()
	}
}
