package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/provider"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

// snapshotSchema y snapshotVersion etiquetan el blob persistido: un blob de
// otra versión o esquema se descarta como corrupto al hidratar.
const (
	snapshotSchema  = "session-snapshot"
	snapshotVersion = 1
)

// persistedSnapshot envoltorio versionado del snapshot serializado.
type persistedSnapshot struct {
	Schema   string                 `json:"schema"`
	Version  int                    `json:"version"`
	Snapshot entity.SessionSnapshot `json:"snapshot"`
}

// SessionCache snapshot en memoria con reemplazo atómico, control de frescura
// y copia persistida en el SnapshotStore. El timestamp es monotónico: un Set
// con LastFetchedAt anterior al vigente se descarta.
type SessionCache struct {
	mu    sync.RWMutex
	snap  entity.SessionSnapshot
	store provider.SnapshotStore
	log   *logger.Logger
	now   func() time.Time
}

// NewSessionCache construye la caché de sesión.
func NewSessionCache(store provider.SnapshotStore, log *logger.Logger) *SessionCache {
	return &SessionCache{store: store, log: log, now: time.Now}
}

// Get devuelve una copia del snapshot vigente (posiblemente optimista si
// proviene de Hydrate y aún no fue confirmado por una resolución).
func (c *SessionCache) Get() entity.SessionSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Clone()
}

// Set reemplaza el snapshot en bloque. Devuelve false (y no toca nada) si el
// candidato trae un timestamp más viejo que el vigente: protección contra
// escrituras tardías de intentos superados.
func (c *SessionCache) Set(snap entity.SessionSnapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.snap.LastFetchedAt.IsZero() && snap.LastFetchedAt.Before(c.snap.LastFetchedAt) {
		c.log.Warn().
			Time("vigente", c.snap.LastFetchedAt).
			Time("candidato", snap.LastFetchedAt).
			Msg("snapshot tardío descartado: timestamp no monotónico")
		return false
	}
	c.snap = snap.Clone()
	return true
}

// IsFresh verdadero si el snapshot es no vacío y su edad es estrictamente
// menor que maxAge.
func (c *SessionCache) IsFresh(maxAge time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap.IsEmpty() || c.snap.LastFetchedAt.IsZero() {
		return false
	}
	return c.now().Sub(c.snap.LastFetchedAt) < maxAge
}

// Persist serializa el snapshot vigente al almacenamiento externo. Solo se
// invoca tras una mutación exitosa; un fallo del store se reporta pero no
// invalida el estado en memoria.
func (c *SessionCache) Persist(ctx context.Context) error {
	c.mu.RLock()
	blob, err := json.Marshal(persistedSnapshot{
		Schema:   snapshotSchema,
		Version:  snapshotVersion,
		Snapshot: c.snap,
	})
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	return c.store.Set(ctx, blob)
}

// Hydrate carga el snapshot persistido como estado optimista de arranque en
// frío. Tolera datos faltantes o corruptos dejando un snapshot vacío; nunca
// retorna error al llamador. El timestamp se pone a cero para que la primera
// resolución siempre vaya a la red.
func (c *SessionCache) Hydrate(ctx context.Context) {
	blob, err := c.store.Get(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("almacenamiento de snapshot no disponible; arranque con sesión vacía")
		return
	}
	if len(blob) == 0 {
		return
	}
	var p persistedSnapshot
	if err := json.Unmarshal(blob, &p); err != nil || p.Schema != snapshotSchema || p.Version != snapshotVersion {
		c.log.Warn().Msg("snapshot persistido corrupto o de otra versión; se descarta")
		return
	}
	p.Snapshot.LastFetchedAt = time.Time{} // optimista: pendiente de confirmación
	c.mu.Lock()
	c.snap = p.Snapshot
	c.mu.Unlock()
}

// Clear limpia el estado en memoria y el persistido. El borrado remoto es
// defensivo: si el store falla, la memoria queda limpia igual.
func (c *SessionCache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.snap = entity.SessionSnapshot{}
	c.mu.Unlock()
	if err := c.store.Del(ctx); err != nil {
		c.log.Warn().Err(err).Msg("no se pudo borrar el snapshot persistido")
	}
}
