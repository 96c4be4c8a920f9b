package training

import (
	"sync"

	"github.com/example/orfobot/internal/puzzle"
	"github.com/example/orfobot/pkg/models"
)

// Session is the transient state of one practice run.
// Fields are guarded by mu; the Service is the only writer.
type Session struct {
	mu sync.Mutex

	Handle   string
	Record   models.TrainingSession
	Words    []models.Word
	Puzzles  []puzzle.Puzzle // One per word, built when the session opens
	Index    int             // Position of the word being asked
	Streak   int             // Consecutive correct answers so far
	Mistakes []models.Word

	closed bool
}

// Answered returns the number of answers given in the session
func (s *Session) Answered() int {
	return s.Record.Correct + s.Record.Incorrect
}

// SessionStore keeps at most one active session per learner
type SessionStore interface {
	Get(userID int64) (*Session, bool)
	// Put stores a session and returns the one it replaced, if any
	Put(userID int64, s *Session) (*Session, bool)
	// Remove drops the learner's session only if it still has the given handle
	Remove(userID int64, handle string)
}

// MemorySessionStore is a process-local SessionStore
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewMemorySessionStore creates an empty store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]*Session)}
}

func (m *MemorySessionStore) Get(userID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *MemorySessionStore) Put(userID int64, s *Session) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.sessions[userID]
	m.sessions[userID] = s
	return prev, ok
}

func (m *MemorySessionStore) Remove(userID int64, handle string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok && s.Handle == handle {
		delete(m.sessions, userID)
	}
}
