package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

const stateTTL = 5 * time.Minute

// states hands out single-use CSRF states for the authorization redirect.
type states struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func newStates() *states {
	return &states{expires: map[string]time.Time{}, now: time.Now}
}

func (s *states) issue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for old, exp := range s.expires {
		if exp.Before(now) {
			delete(s.expires, old)
		}
	}
	s.expires[state] = now.Add(stateTTL)

	return state, nil
}

// consume reports whether state was issued and is still fresh. A state is
// accepted at most once.
func (s *states) consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.expires[state]
	if !ok {
		return false
	}
	delete(s.expires, state)

	return !s.now().After(exp)
}
