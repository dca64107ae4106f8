package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	// ErrUnauthenticated no hay sesión activa en el proveedor de identidad:
	// la caché se limpia y la capa de ruteo decide la redirección.
	ErrUnauthenticated = errors.New("sin sesión activa")

	// ErrProvider fallo de red o de consulta contra un proveedor externo:
	// se conserva el último snapshot bueno y se expone el error.
	ErrProvider = errors.New("error del proveedor externo")

	// ErrTimeout la resolución superó el tiempo máximo; mismo tratamiento que
	// ErrProvider pero con diagnóstico propio.
	ErrTimeout = errors.New("resolución de sesión expirada por timeout")

	// ErrUnknownRoleLabel etiqueta de rol no mapeada; no fatal, se resuelve
	// al rol por defecto.
	ErrUnknownRoleLabel = errors.New("etiqueta de rol desconocida")
)
