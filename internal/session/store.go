package session

import (
	"sync"
	"time"
)

// Data is the identity snapshot held server-side for one browser context.
type Data struct {
	UserID  uint
	Email   string
	Role    string
	Name    string
	LoginAt time.Time
}

// Store holds session state keyed by the opaque id carried in the session
// cookie. Implementations must be safe for concurrent requests.
type Store interface {
	Get(id string) (Data, bool)
	Put(id string, d Data)
	Delete(id string)
}

// MemoryStore keeps sessions in process memory. There is no background
// sweeper: stale entries are cleared by the auth service on first read after
// the idle timeout, matching the lifecycle of the state they mirror.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Data
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Data)}
}

func (s *MemoryStore) Get(id string) (Data, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.sessions[id]
	return d, ok
}

func (s *MemoryStore) Put(id string, d Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = d
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
