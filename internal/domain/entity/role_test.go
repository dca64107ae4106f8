package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// El rango de precedencia es total sobre la lista fija: cada rol conocido
// ocupa exactamente su posición y uno desconocido cae después del último.
func TestPrecedenceRank(t *testing.T) {
	for i, r := range RolePrecedence {
		assert.Equal(t, i, PrecedenceRank(r), "rol %q", r)
	}
	assert.Equal(t, len(RolePrecedence), PrecedenceRank(CanonicalRole("astronauta")))
	assert.Less(t, PrecedenceRank(RoleGlobalAdmin), PrecedenceRank(RoleViewer),
		"menor rango significa mayor jerarquía")
}
