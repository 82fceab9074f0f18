// Package session carries per-conversation state. A Session is created
// explicitly and handed to the flows that need it; there is no
// process-wide registry.
package session

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"
)

// Entry is one turn of the conversation log.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session holds an append-only conversation log and a key-value
// preference store. Safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	id        string
	createdAt time.Time
	entries   []Entry
	prefs     map[string]string
}

// New creates an empty session.
func New() *Session {
	return &Session{
		id:        generateID(),
		createdAt: time.Now().UTC(),
		prefs:     make(map[string]string),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Append adds one turn to the conversation log.
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}

// History returns a copy of the conversation log.
func (s *Session) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]Entry, len(s.entries))
	copy(history, s.entries)
	return history
}

// Len returns the number of logged turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// SetPreference stores a caller preference.
func (s *Session) SetPreference(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[key] = value
}

// Preference looks up a caller preference.
func (s *Session) Preference(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.prefs[key]
	return value, ok
}

// Preferences returns a copy of the preference store.
func (s *Session) Preferences() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]string, len(s.prefs))
	for k, v := range s.prefs {
		copied[k] = v
	}
	return copied
}

func generateID() string {
	h := sha256.New()
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(time.Now().UnixNano()))
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))[:12]
}
