package httpsession

import (
	"encoding/binary"
	"sort"
	"sync"
)

// Values is the stored form of a session: named byte blobs.
type Values map[string][]byte

// Session is the state of one visitor. It is safe for concurrent use by the
// handlers of a single request.
type Session struct {
	mu        sync.Mutex
	id        string
	values    Values
	isNew     bool
	dirty     bool
	abandoned bool
}

func newSession(id string, v Values, isNew bool) *Session {
	if v == nil {
		v = Values{}
	}
	return &Session{id: id, values: v, isNew: isNew}
}

func (s *Session) ID() string { return s.id }

// IsNew reports whether the session was created by this request.
func (s *Session) IsNew() bool { return s.isNew }

func (s *Session) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (s *Session) Set(key string, value []byte) {
	s.mu.Lock()
	s.values[key] = append([]byte(nil), value...)
	s.dirty = true
	s.mu.Unlock()
}

func (s *Session) Delete(key string) {
	s.mu.Lock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
	s.mu.Unlock()
}

func (s *Session) Clear() {
	s.mu.Lock()
	if len(s.values) > 0 {
		s.values = Values{}
		s.dirty = true
	}
	s.mu.Unlock()
}

// Keys returns the stored names in sorted order.
func (s *Session) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Abandon drops the session from the store when the request completes.
func (s *Session) Abandon() {
	s.mu.Lock()
	s.abandoned = true
	s.mu.Unlock()
}

func (s *Session) GetString(key string) (string, bool) {
	b, ok := s.Get(key)
	return string(b), ok
}

func (s *Session) SetString(key, value string) { s.Set(key, []byte(value)) }

// GetInt reads a value stored by SetInt (4 bytes, big-endian).
func (s *Session) GetInt(key string) (int32, bool) {
	b, ok := s.Get(key)
	if !ok || len(b) != 4 {
		return 0, false
	}
	return int32(binary.BigEndian.Uint32(b)), true
}

func (s *Session) SetInt(key string, value int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(value))
	s.Set(key, b[:])
}

// snapshot returns a copy of the values and the pending state flags.
func (s *Session) snapshot() (v Values, dirty, abandoned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v = make(Values, len(s.values))
	for k, b := range s.values {
		v[k] = b
	}
	return v, s.dirty, s.abandoned
}

func (s *Session) committed() {
	s.mu.Lock()
	s.dirty = false
	s.isNew = false
	s.mu.Unlock()
}
