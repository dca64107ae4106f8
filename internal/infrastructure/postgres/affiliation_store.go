package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/provider"
)

var _ provider.AffiliationStore = (*AffiliationStore)(nil)

// AffiliationStore implementación del puerto AffiliationStore sobre PostgreSQL.
type AffiliationStore struct {
	pool *pgxpool.Pool
}

// NewAffiliationStore construye el adaptador de afiliaciones.
func NewAffiliationStore(pool *pgxpool.Pool) *AffiliationStore {
	return &AffiliationStore{pool: pool}
}

// ListActiveByUser devuelve las afiliaciones activas del usuario en orden
// estable (created_at, id): la primera fila define la empresa primaria y ese
// orden debe repetirse entre refrescos.
func (s *AffiliationStore) ListActiveByUser(ctx context.Context, userID string) ([]entity.CompanyAffiliation, error) {
	query := `
		SELECT ca.id, ca.company_id, ca.internal_role_label,
		       COALESCE(ca.full_name_override, ''), ca.active,
		       c.id, c.name, c.kind, COALESCE(c.tax_id, '')
		FROM company_affiliations ca
		JOIN companies c ON c.id = ca.company_id
		WHERE ca.user_id = $1 AND ca.active = TRUE
		ORDER BY ca.created_at, ca.id`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list affiliations: %w", err)
	}
	defer rows.Close()

	var list []entity.CompanyAffiliation
	for rows.Next() {
		var a entity.CompanyAffiliation
		var kind string
		if err := rows.Scan(
			&a.ID, &a.CompanyID, &a.RawRole,
			&a.FullNameOverride, &a.Active,
			&a.Company.ID, &a.Company.Name, &kind, &a.Company.TaxID,
		); err != nil {
			return nil, fmt.Errorf("scan affiliation: %w", err)
		}
		a.Company.Kind = entity.CompanyKind(kind)
		list = append(list, a)
	}
	return list, rows.Err()
}
