package authapi

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/logistica-api/internal/domain/provider"
)

var _ provider.AuthEventSource = (*EventBus)(nil)

// EventBus fuente de eventos de ciclo de vida en proceso. Los transportes
// (endpoints de token/visibilidad, el propio Client) emiten; el
// LifecycleListener se suscribe. El despacho es sincrónico en la goroutine
// del emisor.
type EventBus struct {
	mu       sync.Mutex
	handlers map[string]func(provider.AuthEvent)
}

// NewEventBus construye el bus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string]func(provider.AuthEvent))}
}

// Subscribe registra un handler y devuelve su función de baja. La baja es
// idempotente: borrar una suscripción ya borrada es no-op.
func (b *EventBus) Subscribe(handler func(provider.AuthEvent)) (func(), error) {
	id := uuid.NewString()
	b.mu.Lock()
	b.handlers[id] = handler
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}, nil
}

// Emit entrega el evento a todos los handlers vigentes. Se toma una copia
// bajo lock para que un handler pueda darse de baja durante el despacho.
func (b *EventBus) Emit(ev provider.AuthEvent) {
	b.mu.Lock()
	snapshot := make([]func(provider.AuthEvent), 0, len(b.handlers))
	for _, h := range b.handlers {
		snapshot = append(snapshot, h)
	}
	b.mu.Unlock()
	for _, h := range snapshot {
		h(ev)
	}
}
