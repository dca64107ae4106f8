package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests MapRawRole
// ──────────────────────────────────────────────────────────────────────────────

// Toda etiqueta de la tabla (actual o histórica) debe resolver de forma total
// y determinista al mismo rol canónico.
func TestMapRawRole_TablaTotalYDeterminista(t *testing.T) {
	r := NewRoleResolver(logger.Nop())

	for raw, want := range rawRoleTable {
		got1 := r.MapRawRole(raw)
		got2 := r.MapRawRole(raw)
		assert.Equal(t, want, got1, "etiqueta %q debe mapear a %q", raw, want)
		assert.Equal(t, got1, got2, "el mapeo de %q debe ser determinista", raw)
	}
}

// Las grafías históricas con mayúsculas, guiones bajos y espacios extra deben
// caer en la misma entrada que la forma normalizada.
func TestMapRawRole_GrafiasLegadas(t *testing.T) {
	r := NewRoleResolver(logger.Nop())

	cases := map[string]entity.CanonicalRole{
		"Supervisor de Carga":      entity.RoleSupervisor,
		"supervisor_de_carga":      entity.RoleSupervisor,
		"  SUPERVISOR   DE CARGA ": entity.RoleSupervisor,
		"coordinador_transporte":   entity.RoleCoordinator,
		"Coordinador de Transporte": entity.RoleCoordinator,
		"CHOFER":                   entity.RoleDriver,
		"control_de_acceso":        entity.RoleAccessControl,
		"Admin-Global":             entity.RoleGlobalAdmin,
	}
	for raw, want := range cases {
		assert.Equal(t, want, r.MapRawRole(raw), "etiqueta legada %q", raw)
	}
}

// Etiqueta no mapeada: rol por defecto, nunca "sin rol" ni panic.
func TestMapRawRole_EtiquetaDesconocida_RolPorDefecto(t *testing.T) {
	r := NewRoleResolver(logger.Nop())

	assert.Equal(t, entity.RoleDefault, r.MapRawRole("rol_que_no_existe"))
	assert.Equal(t, entity.RoleDefault, r.MapRawRole(""))
}

// El diagnóstico de etiqueta desconocida lleva el centinela de la taxonomía,
// de modo que un consumidor pueda discriminarlo con errors.Is.
func TestLookupRole_EtiquetaDesconocida_ErrorTipado(t *testing.T) {
	role, err := lookupRole("astronauta")
	require.ErrorIs(t, err, domain.ErrUnknownRoleLabel)
	assert.Contains(t, err.Error(), "astronauta", "el error debe nombrar la etiqueta cruda")
	assert.Equal(t, entity.RoleDefault, role)

	_, err = lookupRole("Supervisor de Carga")
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ChoosePrimary
// ──────────────────────────────────────────────────────────────────────────────

// El primario se elige por precedencia fija, sin importar el orden del slice
// de entrada.
func TestChoosePrimary_IndependienteDelOrden(t *testing.T) {
	directo := ChoosePrimary([]entity.CanonicalRole{entity.RoleCoordinator, entity.RoleDriver})
	invertido := ChoosePrimary([]entity.CanonicalRole{entity.RoleDriver, entity.RoleCoordinator})

	require.Equal(t, entity.RoleCoordinator, directo,
		"coordinator precede a driver en la lista de precedencia")
	assert.Equal(t, directo, invertido, "el orden de entrada no debe afectar el resultado")
}

func TestChoosePrimary_PrecedenciaCompleta(t *testing.T) {
	// Con todos los roles presentes gana el de mayor jerarquía.
	got := ChoosePrimary(entity.RolePrecedence)
	assert.Equal(t, entity.RoleGlobalAdmin, got)

	// Supervisor sobre administrativo y vendedor.
	got = ChoosePrimary([]entity.CanonicalRole{
		entity.RoleSalesperson, entity.RoleAdministrative, entity.RoleSupervisor,
	})
	assert.Equal(t, entity.RoleSupervisor, got)
}

func TestChoosePrimary_ConjuntoVacio_RolPorDefecto(t *testing.T) {
	assert.Equal(t, entity.RoleDefault, ChoosePrimary(nil))
	assert.Equal(t, entity.RoleDefault, ChoosePrimary([]entity.CanonicalRole{}))
}
