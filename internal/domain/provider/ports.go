// Package provider define los puertos hacia los colaboradores externos del
// subsistema de sesión: proveedor de identidad, tienda de afiliaciones,
// registro de roles elevados y almacenamiento persistido del snapshot.
package provider

import (
	"context"
	"time"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// Session sesión activa en el proveedor de identidad externo.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// IdentityProvider puerto hacia el servicio externo de autenticación.
// GetSession y GetUser devuelven nil (sin error) cuando no hay sesión activa.
type IdentityProvider interface {
	GetSession(ctx context.Context) (*Session, error)
	GetUser(ctx context.Context) (*entity.Identity, error)
	SignOut(ctx context.Context) error
}

// AffiliationStore consulta de afiliaciones activas por usuario.
// El orden de las filas debe ser estable entre llamadas: la primera fila
// define la empresa primaria.
type AffiliationStore interface {
	ListActiveByUser(ctx context.Context, userID string) ([]entity.CompanyAffiliation, error)
}

// ElevatedRoleRegistry registro de identidades con rol global (no ligado a
// ninguna empresa). Su presencia corta la consulta de afiliaciones.
type ElevatedRoleRegistry interface {
	IsElevated(ctx context.Context, userID string) (bool, error)
}

// SnapshotStore almacenamiento clave-valor del snapshot serializado.
// Puede no estar disponible; todo acceso se consume de forma defensiva:
// un error nunca debe propagarse como fallo de la resolución.
type SnapshotStore interface {
	// Get devuelve (nil, nil) cuando no hay snapshot persistido.
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, blob []byte) error
	Del(ctx context.Context) error
}
