package roles

import "sync"

// Authority answers the capability questions every privileged engine entry
// point asks about its caller. Implementations must be safe for concurrent
// reads.
type Authority interface {
	IsOwnersMultisig(addr [20]byte) bool
	IsAdministrator(addr [20]byte) bool
	IsFactory(addr [20]byte) bool
}

// Registry is an in-memory Authority backed by configured address sets. The
// owners multisig is also treated as an administrator, mirroring the access
// hierarchy of the platform.
type Registry struct {
	mu             sync.RWMutex
	ownersMultisig [20]byte
	administrators map[[20]byte]struct{}
	factories      map[[20]byte]struct{}
}

// NewRegistry constructs an empty role registry.
func NewRegistry() *Registry {
	return &Registry{
		administrators: make(map[[20]byte]struct{}),
		factories:      make(map[[20]byte]struct{}),
	}
}

// SetOwnersMultisig records the multisig identity.
func (r *Registry) SetOwnersMultisig(addr [20]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ownersMultisig = addr
}

// AddAdministrator grants the administrator role to the address.
func (r *Registry) AddAdministrator(addr [20]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.administrators[addr] = struct{}{}
}

// RemoveAdministrator revokes the administrator role from the address.
func (r *Registry) RemoveAdministrator(addr [20]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.administrators, addr)
}

// AddFactory registers a factory identity.
func (r *Registry) AddFactory(addr [20]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[addr] = struct{}{}
}

// IsOwnersMultisig implements Authority.
func (r *Registry) IsOwnersMultisig(addr [20]byte) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ownersMultisig != ([20]byte{}) && addr == r.ownersMultisig
}

// IsAdministrator implements Authority. The owners multisig passes the
// administrator check as well.
func (r *Registry) IsAdministrator(addr [20]byte) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ownersMultisig != ([20]byte{}) && addr == r.ownersMultisig {
		return true
	}
	_, ok := r.administrators[addr]
	return ok
}

// IsFactory implements Authority.
func (r *Registry) IsFactory(addr [20]byte) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[addr]
	return ok
}
