package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/logistica-api/internal/domain/provider"
)

var _ provider.ElevatedRoleRegistry = (*ElevatedRoleRegistry)(nil)

// ElevatedRoleRegistry implementación del registro de roles elevados sobre
// la tabla platform_admins.
type ElevatedRoleRegistry struct {
	pool *pgxpool.Pool
}

// NewElevatedRoleRegistry construye el adaptador del registro de roles elevados.
func NewElevatedRoleRegistry(pool *pgxpool.Pool) *ElevatedRoleRegistry {
	return &ElevatedRoleRegistry{pool: pool}
}

// IsElevated verdadero si el usuario figura activo en platform_admins.
// Sin fila no es error: simplemente no es una identidad elevada.
func (r *ElevatedRoleRegistry) IsElevated(ctx context.Context, userID string) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx,
		`SELECT active FROM platform_admins WHERE user_id = $1`, userID,
	).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query platform_admins: %w", err)
	}
	return active, nil
}
