package entity

import "strings"

// Identity usuario autenticado según el proveedor de identidad externo.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
}

// DeriveDisplayName calcula el nombre a mostrar: el override de nombre completo
// de la afiliación primaria si existe; si no, la parte local del email.
func DeriveDisplayName(email, fullNameOverride string) string {
	if s := strings.TrimSpace(fullNameOverride); s != "" {
		return s
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
