package session

// Fakes de los puertos externos para los tests del subsistema de sesión.
// Se prefieren fakes escritos a mano sobre un framework de mocks: los puertos
// son chicos y el conteo de llamadas es lo único que importa.

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/provider"
)

// memStore SnapshotStore en memoria, con fallos inyectables.
type memStore struct {
	mu      sync.Mutex
	blob    []byte
	failGet bool
	failSet bool
	failDel bool
}

var errStore = context.DeadlineExceeded // cualquier error sirve para los fakes

func (s *memStore) Get(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, errStore
	}
	return s.blob, nil
}

func (s *memStore) Set(_ context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return errStore
	}
	s.blob = append([]byte(nil), blob...)
	return nil
}

func (s *memStore) Del(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDel {
		return errStore
	}
	s.blob = nil
	return nil
}

func (s *memStore) stored() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blob
}

// fakeIdentity IdentityProvider con sesión/usuario fijos, conteo de llamadas
// y bloqueo opcional para simular resoluciones lentas.
type fakeIdentity struct {
	sess    *provider.Session
	user    *entity.Identity
	sessErr error
	userErr error

	sessionCalls atomic.Int32
	signOutCalls atomic.Int32
	block        chan struct{} // si no es nil, GetSession espera a que se cierre
}

func (f *fakeIdentity) GetSession(context.Context) (*provider.Session, error) {
	f.sessionCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.sess, f.sessErr
}

func (f *fakeIdentity) GetUser(context.Context) (*entity.Identity, error) {
	return f.user, f.userErr
}

func (f *fakeIdentity) SignOut(context.Context) error {
	f.signOutCalls.Add(1)
	return nil
}

// fakeAffiliations AffiliationStore con filas fijas.
type fakeAffiliations struct {
	rows  []entity.CompanyAffiliation
	err   error
	calls atomic.Int32
}

func (f *fakeAffiliations) ListActiveByUser(context.Context, string) ([]entity.CompanyAffiliation, error) {
	f.calls.Add(1)
	return f.rows, f.err
}

// fakeElevated ElevatedRoleRegistry con respuesta fija.
type fakeElevated struct {
	active bool
	err    error
	calls  atomic.Int32
}

func (f *fakeElevated) IsElevated(context.Context, string) (bool, error) {
	f.calls.Add(1)
	return f.active, f.err
}

// fakeNavigator cuenta las redirecciones a login pedidas.
type fakeNavigator struct {
	loginRequests atomic.Int32
}

func (n *fakeNavigator) RequestLogin() {
	n.loginRequests.Add(1)
}

// afiliación de ayuda para armar escenarios.
func aff(id, companyID, companyName string, kind entity.CompanyKind, rawRole string) entity.CompanyAffiliation {
	return entity.CompanyAffiliation{
		ID:        id,
		CompanyID: companyID,
		Company:   entity.Company{ID: companyID, Name: companyName, Kind: kind},
		RawRole:   rawRole,
		Active:    true,
	}
}

// snapshot resuelto de ayuda para sembrar la caché.
func seededSnapshot(userID, email string, role entity.CanonicalRole, fetchedAt time.Time) entity.SessionSnapshot {
	return entity.SessionSnapshot{
		Identity:      entity.Identity{ID: userID, Email: email, DisplayName: email},
		Roles:         []entity.CanonicalRole{role},
		PrimaryRole:   role,
		LastFetchedAt: fetchedAt,
	}
}

// sessionFor sesión activa de ayuda.
func sessionFor(userID, email string) *provider.Session {
	return &provider.Session{
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}
