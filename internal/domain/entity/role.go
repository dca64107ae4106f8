package entity

// CanonicalRole rol canónico de plataforma. Toda etiqueta interna o histórica
// de rol se resuelve a uno de estos valores.
type CanonicalRole string

// Roles canónicos de la plataforma.
const (
	RoleGlobalAdmin         CanonicalRole = "global-admin"
	RolePlatformAdmin       CanonicalRole = "platform-admin"
	RoleIntegralCoordinator CanonicalRole = "integral-coordinator"
	RoleCoordinator         CanonicalRole = "coordinator"
	RoleAccessControl       CanonicalRole = "access-control"
	RoleSupervisor          CanonicalRole = "supervisor"
	RoleDriver              CanonicalRole = "driver"
	RoleAdministrative      CanonicalRole = "administrative"
	RoleSalesperson         CanonicalRole = "salesperson"
	RoleViewer              CanonicalRole = "viewer"
)

// RoleDefault rol asignado cuando no se puede resolver ninguno mejor.
// Un usuario autenticado nunca queda "sin rol".
const RoleDefault = RoleViewer

// RolePrecedence orden fijo de precedencia: el primer rol presente en el
// conjunto de roles del usuario se elige como rol primario.
var RolePrecedence = []CanonicalRole{
	RoleGlobalAdmin,
	RolePlatformAdmin,
	RoleIntegralCoordinator,
	RoleCoordinator,
	RoleAccessControl,
	RoleSupervisor,
	RoleDriver,
	RoleAdministrative,
	RoleSalesperson,
	RoleViewer,
}

// PrecedenceRank devuelve el rango de precedencia del rol (menor = mayor
// jerarquía). Roles desconocidos quedan después del último conocido.
func PrecedenceRank(r CanonicalRole) int {
	for i, known := range RolePrecedence {
		if known == r {
			return i
		}
	}
	return len(RolePrecedence)
}
