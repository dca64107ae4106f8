package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/provider"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

// flightKey clave única de singleflight: hay una sola identidad por instancia,
// así que todos los Refresh concurrentes colapsan en un mismo vuelo.
const flightKey = "session-refresh"

// CoordinatorConfig parámetros de la coordinación de refresco.
type CoordinatorConfig struct {
	TTL              time.Duration // frescura máxima antes de re-resolver
	Timeout          time.Duration // tope duro de una resolución
	PrivilegedEmails []string      // identidades que siempre re-resuelven (ignoran TTL)
}

// FetchCoordinator orquesta la resolución de identidad contra los proveedores
// externos: colapsa llamadas concurrentes, corta por TTL, aplica timeout duro
// y protege contra escrituras tardías de intentos superados.
type FetchCoordinator struct {
	cache        *SessionCache
	identity     provider.IdentityProvider
	affiliations provider.AffiliationStore
	elevated     provider.ElevatedRoleRegistry
	resolver     *RoleResolver
	cfg          CoordinatorConfig
	log          *logger.Logger

	group      singleflight.Group
	inFlight   atomic.Bool
	attempt    atomic.Uint64 // secuencia de intentos; un commit exige ser el intento vigente
	privileged map[string]struct{}

	mu      sync.Mutex
	lastErr error

	now func() time.Time
}

// NewFetchCoordinator construye el coordinador. TTL y Timeout en cero toman
// los valores de plataforma (300 s / 10 s).
func NewFetchCoordinator(
	cache *SessionCache,
	identity provider.IdentityProvider,
	affiliations provider.AffiliationStore,
	elevated provider.ElevatedRoleRegistry,
	resolver *RoleResolver,
	cfg CoordinatorConfig,
	log *logger.Logger,
) *FetchCoordinator {
	if cfg.TTL <= 0 {
		cfg.TTL = 300 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	// Claves en minúsculas: el proveedor puede devolver el email con otra
	// capitalización y la comparación debe ser insensible a mayúsculas.
	priv := make(map[string]struct{}, len(cfg.PrivilegedEmails))
	for _, e := range cfg.PrivilegedEmails {
		priv[strings.ToLower(e)] = struct{}{}
	}
	return &FetchCoordinator{
		cache:        cache,
		identity:     identity,
		affiliations: affiliations,
		elevated:     elevated,
		resolver:     resolver,
		cfg:          cfg,
		log:          log,
		privileged:   priv,
		now:          time.Now,
	}
}

// Refresh resuelve la sesión. Con force=false: si hay un vuelo en curso se une
// a él (todas las llamadas concurrentes observan el mismo resultado); si el
// snapshot está fresco y no vacío se devuelve sin tocar la red, salvo para
// identidades privilegiadas. Con force=true se ignora la frescura pero igual
// se colapsa sobre un vuelo ya en curso: force significa "no confíes en el
// TTL", no "duplica el trabajo".
func (fc *FetchCoordinator) Refresh(ctx context.Context, force bool) (entity.SessionSnapshot, error) {
	if !force && !fc.inFlight.Load() {
		if fc.cache.IsFresh(fc.cfg.TTL) {
			snap := fc.cache.Get()
			if !fc.isPrivileged(snap.Identity.Email) {
				return snap, nil
			}
		}
	}

	v, err, _ := fc.group.Do(flightKey, fc.resolveWithTimeout)
	if err != nil {
		return fc.cache.Get(), err
	}
	return v.(entity.SessionSnapshot), nil
}

// InFlight indica si hay una resolución en curso (estado "loading" para la UI).
func (fc *FetchCoordinator) InFlight() bool {
	return fc.inFlight.Load()
}

// LastError último error de resolución; nil tras un refresh exitoso.
func (fc *FetchCoordinator) LastError() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.lastErr
}

// ResetLoading limpia un indicador de carga atascado sin tocar la caché ni
// disparar red. Lo usa el listener al recuperar visibilidad.
func (fc *FetchCoordinator) ResetLoading() {
	fc.inFlight.Store(false)
}

// resolveWithTimeout ejecuta una resolución con tope duro. Al vencer el plazo
// el snapshot previo queda intacto, el flag de vuelo se libera (defer en todas
// las salidas) y el resultado tardío se descarta por secuencia de intento y
// por el guard monotónico de la caché.
func (fc *FetchCoordinator) resolveWithTimeout() (interface{}, error) {
	seq := fc.attempt.Add(1)
	fc.inFlight.Store(true)
	defer fc.inFlight.Store(false)

	// Contexto propio: la cancelación del primer llamador no debe matar un
	// vuelo compartido por otros. El único corte es el timeout duro.
	ctx, cancel := context.WithTimeout(context.Background(), fc.cfg.Timeout)
	defer cancel()

	type result struct {
		snap entity.SessionSnapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := fc.resolve(ctx, seq)
		done <- result{snap: snap, err: err}
	}()

	select {
	case r := <-done:
		fc.setLastErr(r.err)
		if r.err != nil {
			return entity.SessionSnapshot{}, r.err
		}
		return r.snap, nil
	case <-ctx.Done():
		fc.log.Warn().
			Dur("timeout", fc.cfg.Timeout).
			Uint64("intento", seq).
			Msg("resolución de sesión abortada por timeout; se conserva el snapshot previo")
		fc.setLastErr(domain.ErrTimeout)
		return entity.SessionSnapshot{}, domain.ErrTimeout
	}
}

// resolve consulta proveedores y confirma el snapshot en la caché.
// Orden: sesión activa → registro de roles elevados (su presencia corta la
// consulta de afiliaciones) → afiliaciones → mapeo de roles → commit.
func (fc *FetchCoordinator) resolve(ctx context.Context, seq uint64) (entity.SessionSnapshot, error) {
	sess, err := fc.identity.GetSession(ctx)
	if err != nil {
		return entity.SessionSnapshot{}, fmt.Errorf("%w: sesión: %v", domain.ErrProvider, err)
	}
	if sess == nil {
		fc.clearIfCurrent(ctx, seq)
		return entity.SessionSnapshot{}, domain.ErrUnauthenticated
	}

	ident, err := fc.identity.GetUser(ctx)
	if err != nil {
		return entity.SessionSnapshot{}, fmt.Errorf("%w: usuario: %v", domain.ErrProvider, err)
	}
	if ident == nil {
		fc.clearIfCurrent(ctx, seq)
		return entity.SessionSnapshot{}, domain.ErrUnauthenticated
	}

	elevated, err := fc.elevated.IsElevated(ctx, ident.ID)
	if err != nil {
		return entity.SessionSnapshot{}, fmt.Errorf("%w: registro de roles elevados: %v", domain.ErrProvider, err)
	}

	snap := entity.SessionSnapshot{Identity: *ident}
	if elevated {
		// Identidad elevada: rol global, sin empresa primaria.
		snap.Roles = []entity.CanonicalRole{entity.RoleGlobalAdmin}
		snap.Identity.DisplayName = entity.DeriveDisplayName(ident.Email, ident.DisplayName)
	} else {
		affs, err := fc.affiliations.ListActiveByUser(ctx, ident.ID)
		if err != nil {
			return entity.SessionSnapshot{}, fmt.Errorf("%w: afiliaciones: %v", domain.ErrProvider, err)
		}
		snap.Affiliations = affs
		snap.Roles = fc.mapRoles(affs)
		if len(affs) > 0 {
			// La primera fila en orden estable define la empresa primaria.
			primary := affs[0]
			companyID := primary.CompanyID
			snap.PrimaryCompanyID = &companyID
			snap.PrimaryCompanyKind = primary.Company.Kind
			snap.Identity.DisplayName = entity.DeriveDisplayName(ident.Email, primary.FullNameOverride)
		} else {
			snap.Identity.DisplayName = entity.DeriveDisplayName(ident.Email, ident.DisplayName)
		}
	}
	snap.PrimaryRole = ChoosePrimary(snap.Roles)
	snap.LastFetchedAt = fc.now()

	// Protección contra commits tardíos: un resultado que llega después del
	// timeout (ctx vencido) o de un intento más nuevo no pisa estado fresco.
	if ctx.Err() != nil || fc.attempt.Load() != seq {
		fc.log.Debug().Uint64("intento", seq).Msg("resultado de intento superado; descartado sin commit")
		return fc.cache.Get(), nil
	}
	if !fc.cache.Set(snap) {
		return fc.cache.Get(), nil
	}
	if err := fc.cache.Persist(ctx); err != nil {
		// Persistencia defensiva: el snapshot en memoria ya es autoritativo.
		fc.log.Warn().Err(err).Msg("no se pudo persistir el snapshot")
	}
	return snap, nil
}

// mapRoles mapea cada etiqueta cruda y deduplica, ordenando el conjunto por
// precedencia para una representación estable.
func (fc *FetchCoordinator) mapRoles(affs []entity.CompanyAffiliation) []entity.CanonicalRole {
	seen := make(map[entity.CanonicalRole]struct{}, len(affs))
	for _, a := range affs {
		seen[fc.resolver.MapRawRole(a.RawRole)] = struct{}{}
	}
	if len(seen) == 0 {
		// Sin afiliaciones y sin rol elevado: rol por defecto, nunca "sin rol".
		return []entity.CanonicalRole{entity.RoleDefault}
	}
	out := make([]entity.CanonicalRole, 0, len(seen))
	for _, r := range entity.RolePrecedence {
		if _, ok := seen[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// clearIfCurrent limpia la caché solo si el intento sigue vigente. Un "sin
// sesión" que llega después del timeout o de un intento más nuevo está sujeto
// al mismo guard que un commit: nunca borra datos válidos.
func (fc *FetchCoordinator) clearIfCurrent(ctx context.Context, seq uint64) {
	if ctx.Err() != nil || fc.attempt.Load() != seq {
		fc.log.Debug().Uint64("intento", seq).Msg("limpieza de intento superado; descartada")
		return
	}
	fc.cache.Clear(ctx)
}

func (fc *FetchCoordinator) isPrivileged(email string) bool {
	_, ok := fc.privileged[strings.ToLower(email)]
	return ok
}

func (fc *FetchCoordinator) setLastErr(err error) {
	fc.mu.Lock()
	fc.lastErr = err
	fc.mu.Unlock()
}
