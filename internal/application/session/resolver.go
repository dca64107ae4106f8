package session

import (
	"fmt"
	"strings"

	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

// rawRoleTable mapa de etiquetas internas (normalizadas) a rol canónico.
// Incluye las grafías actuales y las históricas que aún viven en filas viejas
// de company_affiliations; ampliar aquí al renombrar un rol, nunca borrar.
var rawRoleTable = map[string]entity.CanonicalRole{
	// globales
	"admin global":  entity.RoleGlobalAdmin,
	"global admin":  entity.RoleGlobalAdmin,
	"superadmin":    entity.RoleGlobalAdmin,
	"super usuario": entity.RoleGlobalAdmin,

	"admin plataforma": entity.RolePlatformAdmin,
	"platform admin":   entity.RolePlatformAdmin,
	"admin":            entity.RolePlatformAdmin,

	// coordinación
	"coordinador integral":  entity.RoleIntegralCoordinator,
	"coordinadora integral": entity.RoleIntegralCoordinator,

	"coordinador":               entity.RoleCoordinator,
	"coordinadora":              entity.RoleCoordinator,
	"coordinador transporte":    entity.RoleCoordinator,
	"coordinador de transporte": entity.RoleCoordinator,
	"coordinador planta":        entity.RoleCoordinator,

	// operación
	"control acceso":    entity.RoleAccessControl,
	"control de acceso": entity.RoleAccessControl,
	"porteria":          entity.RoleAccessControl,

	"supervisor":          entity.RoleSupervisor,
	"supervisora":         entity.RoleSupervisor,
	"supervisor carga":    entity.RoleSupervisor,
	"supervisor de carga": entity.RoleSupervisor,

	"chofer":    entity.RoleDriver,
	"conductor": entity.RoleDriver,
	"driver":    entity.RoleDriver,

	// administración y comercial
	"administrativo":          entity.RoleAdministrative,
	"administrativa":          entity.RoleAdministrative,
	"auxiliar administrativo": entity.RoleAdministrative,

	"vendedor":  entity.RoleSalesperson,
	"vendedora": entity.RoleSalesperson,
	"comercial": entity.RoleSalesperson,
	"ventas":    entity.RoleSalesperson,

	// solo lectura
	"viewer":   entity.RoleViewer,
	"visor":    entity.RoleViewer,
	"consulta": entity.RoleViewer,
	"invitado": entity.RoleViewer,
}

// RoleResolver mapeo puro de etiquetas crudas/históricas a roles canónicos y
// selección determinista del rol primario.
type RoleResolver struct {
	log *logger.Logger
}

// NewRoleResolver construye el resolutor de roles.
func NewRoleResolver(log *logger.Logger) *RoleResolver {
	return &RoleResolver{log: log}
}

// MapRawRole resuelve una etiqueta interna a su rol canónico. Total y
// determinista: una etiqueta no mapeada resuelve al rol por defecto y deja
// un diagnóstico no fatal.
func (r *RoleResolver) MapRawRole(raw string) entity.CanonicalRole {
	role, err := lookupRole(raw)
	if err != nil {
		r.log.Warn().Err(err).Msg("etiqueta de rol desconocida; se asigna rol por defecto")
	}
	return role
}

// lookupRole resuelve la etiqueta normalizada contra la tabla. Una etiqueta no
// mapeada devuelve el rol por defecto junto con un error que envuelve
// ErrUnknownRoleLabel, discriminable con errors.Is.
func lookupRole(raw string) (entity.CanonicalRole, error) {
	if role, ok := rawRoleTable[normalizeLabel(raw)]; ok {
		return role, nil
	}
	return entity.RoleDefault, fmt.Errorf("%w: %q", domain.ErrUnknownRoleLabel, raw)
}

// ChoosePrimary devuelve el rol de mayor jerarquía del conjunto según su rango
// de precedencia; conjunto vacío resuelve al rol por defecto.
// Pura e independiente del orden de iteración de la entrada.
func ChoosePrimary(roles []entity.CanonicalRole) entity.CanonicalRole {
	best := entity.RoleDefault
	bestRank := entity.PrecedenceRank(best)
	for _, r := range roles {
		if rank := entity.PrecedenceRank(r); rank < bestRank {
			best, bestRank = r, rank
		}
	}
	return best
}

// normalizeLabel minúsculas, recorte y colapso de separadores (espacios,
// guiones y guiones bajos) a un espacio simple, para que "Supervisor de Carga"
// y "supervisor_de_carga" caigan en la misma entrada de la tabla.
func normalizeLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '_' || r == '-'
	})
	return strings.Join(fields, " ")
}
