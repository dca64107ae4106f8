// Package redisstore adaptador del almacenamiento persistido de snapshots
// sobre Redis. Redis puede no estar disponible en algunos entornos de
// ejecución: los errores se devuelven tal cual y la caché los degrada a
// "sin snapshot" en vez de propagarlos.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/logistica-api/internal/domain/provider"
)

var _ provider.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore guarda el blob versionado del snapshot bajo una única clave
// con vigencia limitada.
type SnapshotStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSnapshotStore construye el adaptador. La clave queda ligada al nombre de
// la app para no chocar entre despliegues que comparten Redis.
func NewSnapshotStore(client *redis.Client, appName string, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		key:    fmt.Sprintf("%s:session:snapshot", appName),
		ttl:    ttl,
	}
}

// Get devuelve el blob persistido; (nil, nil) cuando no existe.
func (s *SnapshotStore) Get(ctx context.Context) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return blob, nil
}

// Set persiste el blob con la vigencia configurada.
func (s *SnapshotStore) Set(ctx context.Context, blob []byte) error {
	if err := s.client.Set(ctx, s.key, blob, s.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Del elimina el blob. Idempotente: borrar una clave inexistente no es error.
func (s *SnapshotStore) Del(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("del snapshot: %w", err)
	}
	return nil
}
