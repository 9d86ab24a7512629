package session

import (
	"sync"

	"fitvod/api-gateway/internal/access"
)

// IdentityProvider supplies the viewer's role and change notifications. The
// controller never assumes a specific event-loop model; providers may invoke
// callbacks from any goroutine.
type IdentityProvider interface {
	Role() access.Role
	// OnRoleChange registers a callback for role transitions (login, logout,
	// subscription upgrade). The returned function unsubscribes.
	OnRoleChange(fn func(access.Role)) (unsubscribe func())
}

// StaticIdentity is an IdentityProvider with a settable role, suitable for
// server-side sessions where the role was derived from the request token,
// and for tests.
type StaticIdentity struct {
	mu      sync.Mutex
	role    access.Role
	subs    map[int]func(access.Role)
	nextSub int
}

// NewStaticIdentity creates a provider fixed at the given role until SetRole
// is called.
func NewStaticIdentity(role access.Role) *StaticIdentity {
	return &StaticIdentity{role: role, subs: make(map[int]func(access.Role))}
}

// Role returns the current role.
func (s *StaticIdentity) Role() access.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// SetRole updates the role and notifies subscribers when it changed.
func (s *StaticIdentity) SetRole(role access.Role) {
	s.mu.Lock()
	if s.role == role {
		s.mu.Unlock()
		return
	}
	s.role = role
	subs := make([]func(access.Role), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(role)
	}
}

// OnRoleChange registers fn; the returned function unsubscribes.
func (s *StaticIdentity) OnRoleChange(fn func(access.Role)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
