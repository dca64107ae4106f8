package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/logistica-api/internal/application/session"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/provider"
	apphttp "github.com/jhoicas/logistica-api/internal/interfaces/http"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// stubProviders fakes mínimos de los puertos externos para armar el gateway.
type stubIdentity struct {
	sess  *provider.Session
	user  *entity.Identity
	block chan struct{}
}

func (s *stubIdentity) GetSession(context.Context) (*provider.Session, error) {
	if s.block != nil {
		<-s.block
	}
	return s.sess, nil
}
func (s *stubIdentity) GetUser(context.Context) (*entity.Identity, error) { return s.user, nil }
func (s *stubIdentity) SignOut(context.Context) error                     { return nil }

type stubStore struct{ blob []byte }

func (s *stubStore) Get(context.Context) ([]byte, error)   { return s.blob, nil }
func (s *stubStore) Set(_ context.Context, b []byte) error { s.blob = b; return nil }
func (s *stubStore) Del(context.Context) error             { s.blob = nil; return nil }

type stubAffiliations struct{}

func (stubAffiliations) ListActiveByUser(context.Context, string) ([]entity.CompanyAffiliation, error) {
	return nil, nil
}

type stubElevated struct{}

func (stubElevated) IsElevated(context.Context, string) (bool, error) { return false, nil }

// buildGateway gateway sobre fakes, con la caché sembrada con el snapshot dado.
func buildGateway(t *testing.T, identity *stubIdentity, snap *entity.SessionSnapshot) (*session.ContextGateway, *session.SessionCache) {
	t.Helper()
	log := logger.Nop()
	cache := session.NewSessionCache(&stubStore{}, log)
	if snap != nil {
		require.True(t, cache.Set(*snap))
	}
	coord := session.NewFetchCoordinator(
		cache, identity, stubAffiliations{}, stubElevated{}, session.NewRoleResolver(log),
		session.CoordinatorConfig{TTL: time.Hour, Timeout: time.Second}, log,
	)
	return session.NewContextGateway(cache, coord, identity, log), cache
}

// buildApp aplicación Fiber mínima con una ruta protegida por RequireRole.
func buildApp(gw *session.ContextGateway, allowed ...entity.CanonicalRole) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.RequireRole(gw, allowed...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true})
		},
	)
	return app
}

func doGet(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func resolvedSnapshot(role entity.CanonicalRole) entity.SessionSnapshot {
	return entity.SessionSnapshot{
		Identity:      entity.Identity{ID: "u1", Email: "u1@acme.co", DisplayName: "u1"},
		Roles:         []entity.CanonicalRole{role},
		PrimaryRole:   role,
		LastFetchedAt: time.Now(),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: el usuario tiene el rol requerido → HTTP 200.
func TestRequireRole_RolPermitidoAccede(t *testing.T) {
	snap := resolvedSnapshot(entity.RolePlatformAdmin)
	gw, _ := buildGateway(t, &stubIdentity{}, &snap)
	app := buildApp(gw, entity.RoleGlobalAdmin, entity.RolePlatformAdmin)

	resp := doGet(t, app, "/protected")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"platform-admin debe acceder a una ruta que permite global-admin o platform-admin")
}

// Caso 2: rol resuelto pero insuficiente → HTTP 403 con código FORBIDDEN.
func TestRequireRole_RolInsuficiente_403(t *testing.T) {
	snap := resolvedSnapshot(entity.RoleDriver)
	gw, _ := buildGateway(t, &stubIdentity{}, &snap)
	app := buildApp(gw, entity.RoleGlobalAdmin)

	resp := doGet(t, app, "/protected")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

// Caso 3: sin sesión resuelta → HTTP 401, nunca 403.
func TestRequireRole_SinSesion_401(t *testing.T) {
	gw, _ := buildGateway(t, &stubIdentity{}, nil)
	app := buildApp(gw, entity.RoleViewer)

	resp := doGet(t, app, "/protected")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 4 (contrato clave): resolución en curso → HTTP 503 con Retry-After.
// Loading significa "desconocido", jamás "denegado".
func TestRequireRole_Cargando_503NoDenegado(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	identity := &stubIdentity{
		sess:  &provider.Session{UserID: "u1", Email: "u1@acme.co", ExpiresAt: time.Now().Add(time.Hour)},
		user:  &entity.Identity{ID: "u1", Email: "u1@acme.co"},
		block: block,
	}
	gw, _ := buildGateway(t, identity, nil)
	app := buildApp(gw, entity.RoleGlobalAdmin)

	// Disparar una resolución que queda bloqueada en el proveedor
	go func() { _, _ = gw.ForceRefresh(context.Background()) }()
	require.Eventually(t, gw.Loading, time.Second, 5*time.Millisecond,
		"debe haber una resolución en curso")

	resp := doGet(t, app, "/protected")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode,
		"durante la carga se responde 503, nunca 403")
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))

	var body apphttp.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "SESSION_LOADING", body.Code)
}
