package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/logistica-api/internal/application/session"
	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/provider"
	"github.com/jhoicas/logistica-api/internal/infrastructure/authapi"
)

// SessionHandler endpoints del subsistema de sesión.
type SessionHandler struct {
	gateway *session.ContextGateway
	auth    *authapi.Client
	bus     *authapi.EventBus
}

// NewSessionHandler construye el handler.
func NewSessionHandler(gateway *session.ContextGateway, auth *authapi.Client, bus *authapi.EventBus) *SessionHandler {
	return &SessionHandler{gateway: gateway, auth: auth, bus: bus}
}

// Get devuelve la vista del snapshot vigente. Nunca responde 500 por un fallo
// de proveedor: el error viaja como campo y la UI decide cómo degradar.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	return c.JSON(toSessionResponse(h.gateway.Snapshot(), h.gateway.Loading(), h.gateway.Err()))
}

// Refresh fuerza una resolución ignorando el TTL.
func (h *SessionHandler) Refresh(c *fiber.Ctx) error {
	snap, err := h.gateway.ForceRefresh(c.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "UNAUTHENTICATED", Message: "no hay sesión activa"})
		case errors.Is(err, domain.ErrTimeout):
			return c.Status(fiber.StatusGatewayTimeout).JSON(ErrorResponse{Code: "TIMEOUT", Message: "la resolución superó el tiempo máximo; se conserva el estado previo"})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Code: "PROVIDER_ERROR", Message: "fallo del proveedor externo; se conserva el estado previo"})
		}
	}
	return c.JSON(toSessionResponse(snap, h.gateway.Loading(), nil))
}

// SignOut cierra sesión en el proveedor y limpia el estado local y persistido.
func (h *SessionHandler) SignOut(c *fiber.Ctx) error {
	if err := h.gateway.SignOut(c.Context()); err != nil {
		// La limpieza local ya ocurrió; se informa el fallo remoto sin romper.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"signed_out": true, "remote_error": err.Error()})
	}
	return c.JSON(fiber.Map{"signed_out": true})
}

// AdoptToken recibe el access token del front y lo adopta; un token válido
// emite SignedIn y el listener dispara el refresh correspondiente.
func (h *SessionHandler) AdoptToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil || req.AccessToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "INVALID_BODY", Message: "se espera {\"access_token\": \"...\"}"})
	}
	userID, err := h.auth.Adopt(req.AccessToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
	}
	return c.JSON(fiber.Map{"user_id": userID})
}

// Visibility señal de "la app volvió a primer plano". Destraba un loading
// colgado pero no dispara red.
func (h *SessionHandler) Visibility(c *fiber.Ctx) error {
	h.bus.Emit(provider.AuthEvent{Kind: provider.EventVisibilityRegained})
	return c.JSON(fiber.Map{"ok": true})
}
