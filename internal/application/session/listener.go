package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/logistica-api/internal/domain/provider"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

// Navigator política de ruteo, inyectada: el módulo de identidad expone estado
// y eventos, nunca navega por su cuenta. La implementación decide si ya se
// está en una superficie pública antes de redirigir.
type Navigator interface {
	RequestLogin()
}

// LifecycleListener reacciona a transiciones de auth y de visibilidad,
// coordinando refrescos y limpiezas sin provocar tormentas de refresh ni
// bucles de redirección.
type LifecycleListener struct {
	coord  *FetchCoordinator
	cache  *SessionCache
	source provider.AuthEventSource
	nav    Navigator
	log    *logger.Logger

	mu          sync.Mutex
	id          string
	unsubscribe func()
}

// NewLifecycleListener construye el listener (sin suscribirse todavía).
func NewLifecycleListener(
	coord *FetchCoordinator,
	cache *SessionCache,
	source provider.AuthEventSource,
	nav Navigator,
	log *logger.Logger,
) *LifecycleListener {
	return &LifecycleListener{
		coord:  coord,
		cache:  cache,
		source: source,
		nav:    nav,
		log:    log,
		id:     uuid.NewString(),
	}
}

// Start se suscribe a la fuente de eventos. Idempotente: exactamente una
// suscripción activa por vida del listener; un segundo Start es no-op.
func (l *LifecycleListener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unsubscribe != nil {
		return nil
	}
	unsub, err := l.source.Subscribe(l.handle)
	if err != nil {
		return err
	}
	l.unsubscribe = unsub
	l.log.Debug().Str("listener", l.id).Msg("listener de ciclo de vida suscrito")
	return nil
}

// Close da de baja la suscripción. Idempotente.
func (l *LifecycleListener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unsubscribe == nil {
		return
	}
	l.unsubscribe()
	l.unsubscribe = nil
	l.log.Debug().Str("listener", l.id).Msg("listener de ciclo de vida dado de baja")
}

func (l *LifecycleListener) handle(ev provider.AuthEvent) {
	ctx := context.Background()
	switch ev.Kind {
	case provider.EventSignedOut:
		// Limpieza total y delegación de la navegación a la política de ruteo.
		l.cache.Clear(ctx)
		l.nav.RequestLogin()

	case provider.EventSignedIn:
		cur := l.cache.Get()
		// Guard anti-bucle: SignedIn de la misma identidad ya inicializada
		// (con al menos una resolución confirmada) no dispara nada.
		if !cur.IsEmpty() && cur.Identity.ID == ev.UserID && !cur.LastFetchedAt.IsZero() {
			l.log.Debug().Str("user_id", ev.UserID).Msg("signed-in de identidad ya inicializada; no-op")
			return
		}
		if _, err := l.coord.Refresh(ctx, true); err != nil {
			l.log.Warn().Err(err).Str("user_id", ev.UserID).Msg("refresh por signed-in falló")
		}

	case provider.EventVisibilityRegained:
		// Al volver a primer plano con identidad cacheada válida solo se
		// destraba un posible "loading" colgado; nunca se toca la red.
		if !l.cache.Get().IsEmpty() {
			l.coord.ResetLoading()
		}
	}
}
