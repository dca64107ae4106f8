package provider

// AuthEventKind clase de transición del ciclo de vida de la sesión.
type AuthEventKind string

// Eventos que el LifecycleListener sabe manejar.
const (
	EventSignedIn           AuthEventKind = "signed_in"
	EventSignedOut          AuthEventKind = "signed_out"
	EventVisibilityRegained AuthEventKind = "visibility_regained"
)

// AuthEvent unión tipada de eventos de auth y visibilidad. UserID solo viene
// poblado en SignedIn.
type AuthEvent struct {
	Kind   AuthEventKind
	UserID string
}

// AuthEventSource fuente de eventos del ciclo de vida. Subscribe registra el
// handler y devuelve la función para darse de baja; ambas operaciones deben
// ser idempotentes del lado del consumidor.
type AuthEventSource interface {
	Subscribe(handler func(AuthEvent)) (unsubscribe func(), err error)
}
