package permission

import "sync"

// Session keeps the answers given during one run of the program. It is never
// persisted, so every cold start asks again.
type Session struct {
	mu       sync.Mutex
	statuses map[Capability]Status
}

func NewSession() *Session {
	return &Session{statuses: make(map[Capability]Status)}
}

// Get returns the recorded status, Undetermined if nothing was recorded.
func (s *Session) Get(c Capability) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[c]
}

func (s *Session) Set(c Capability, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[c] = st
}

// Reset forgets every answer.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.statuses)
}
