package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/logistica-api/internal/application/session"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Gateway        *session.ContextGateway
	SessionHandler *SessionHandler
	Navigator      *LoginNavigator
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Sesión (la superficie pública del subsistema)
	sess := api.Group("/session")
	sess.Get("/", deps.SessionHandler.Get)
	sess.Post("/token", deps.SessionHandler.AdoptToken)
	sess.Post("/refresh", deps.SessionHandler.Refresh)
	sess.Post("/signout", deps.SessionHandler.SignOut)
	sess.Post("/visibility", deps.SessionHandler.Visibility)
	sess.Get("/navigation", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"login_required": deps.Navigator.Consume()})
	})

	// Superficies con gate de rol (ejemplo de consumo del gateway).
	admin := api.Group("/admin", RequireRole(deps.Gateway, entity.RoleGlobalAdmin, entity.RolePlatformAdmin))
	admin.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"primary_role": string(deps.Gateway.PrimaryRole()),
			"company_id":   deps.Gateway.PrimaryCompanyID(),
		})
	})
}
