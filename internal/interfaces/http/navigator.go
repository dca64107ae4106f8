package http

import (
	"sync/atomic"

	"github.com/jhoicas/logistica-api/internal/application/session"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

var _ session.Navigator = (*LoginNavigator)(nil)

// LoginNavigator política de ruteo mínima: marca que se requiere volver a la
// superficie de login y lo deja registrado. El front consulta el flag vía
// GET /api/session (snapshot vacío + este registro) y decide la navegación;
// el módulo de identidad nunca navega por sí mismo.
type LoginNavigator struct {
	log      *logger.Logger
	required atomic.Bool
}

// NewLoginNavigator construye la política de ruteo hacia login.
func NewLoginNavigator(log *logger.Logger) *LoginNavigator {
	return &LoginNavigator{log: log}
}

// RequestLogin marca la redirección pendiente. Idempotente: pedirla dos veces
// no produce dos redirecciones (guard contra bucles).
func (n *LoginNavigator) RequestLogin() {
	if n.required.CompareAndSwap(false, true) {
		n.log.Info().Msg("sesión cerrada: se requiere superficie de login")
	}
}

// Consume devuelve y limpia el flag de redirección pendiente.
func (n *LoginNavigator) Consume() bool {
	return n.required.Swap(false)
}
