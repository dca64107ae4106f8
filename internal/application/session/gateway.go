package session

import (
	"context"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/provider"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

// ContextGateway superficie pública de solo lectura del subsistema de sesión.
// Es lo único que consume el resto de la aplicación: chequeos de rol, empresa
// primaria y estado de carga/error. Importante para los consumidores:
// Loading()==true significa "desconocido", nunca "denegado" — esta caché es
// una conveniencia de UI, jamás la frontera de autorización.
type ContextGateway struct {
	cache    *SessionCache
	coord    *FetchCoordinator
	identity provider.IdentityProvider
	log      *logger.Logger
}

// NewContextGateway construye la pasarela de contexto.
func NewContextGateway(cache *SessionCache, coord *FetchCoordinator, identity provider.IdentityProvider, log *logger.Logger) *ContextGateway {
	return &ContextGateway{cache: cache, coord: coord, identity: identity, log: log}
}

// Snapshot copia del estado resuelto vigente.
func (g *ContextGateway) Snapshot() entity.SessionSnapshot {
	return g.cache.Get()
}

// Identity identidad resuelta (vacía si no hay sesión).
func (g *ContextGateway) Identity() entity.Identity {
	return g.cache.Get().Identity
}

// Roles conjunto de roles canónicos del usuario.
func (g *ContextGateway) Roles() []entity.CanonicalRole {
	return g.cache.Get().Roles
}

// PrimaryRole rol primario por precedencia.
func (g *ContextGateway) PrimaryRole() entity.CanonicalRole {
	return g.cache.Get().PrimaryRole
}

// PrimaryCompanyID empresa primaria; nil para identidades elevadas o sin afiliación.
func (g *ContextGateway) PrimaryCompanyID() *string {
	return g.cache.Get().PrimaryCompanyID
}

// PrimaryCompanyKind tipo de la empresa primaria.
func (g *ContextGateway) PrimaryCompanyKind() entity.CompanyKind {
	return g.cache.Get().PrimaryCompanyKind
}

// Loading hay una resolución en curso.
func (g *ContextGateway) Loading() bool {
	return g.coord.InFlight()
}

// Err último error de resolución; nil tras un refresh exitoso.
func (g *ContextGateway) Err() error {
	return g.coord.LastError()
}

// HasRole chequeo puro de pertenencia; sin I/O.
func (g *ContextGateway) HasRole(role entity.CanonicalRole) bool {
	return g.cache.Get().HasRole(role)
}

// HasAnyRole chequeo puro sobre varios roles; sin I/O.
func (g *ContextGateway) HasAnyRole(roles ...entity.CanonicalRole) bool {
	return g.cache.Get().HasAnyRole(roles...)
}

// ForceRefresh fuerza una resolución ignorando el TTL.
func (g *ContextGateway) ForceRefresh(ctx context.Context) (entity.SessionSnapshot, error) {
	return g.coord.Refresh(ctx, true)
}

// SignOut cierra sesión en el proveedor y limpia la caché. El error del
// proveedor se reporta pero la limpieza local ocurre siempre.
func (g *ContextGateway) SignOut(ctx context.Context) error {
	err := g.identity.SignOut(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("sign-out remoto falló; se limpia el estado local igual")
	}
	g.cache.Clear(ctx)
	return err
}
