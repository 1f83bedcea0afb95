package roles

import (
	"errors"
	"sync/atomic"
)

// Pauser reports whether state-mutating operations are currently suspended.
// Engines consult it at the top of every mutating call and must never cache
// the answer across calls.
type Pauser interface {
	Paused() bool
}

var (
	// ErrOnlyAdministrator is returned when a pause toggle is attempted by a
	// caller without the administrator role.
	ErrOnlyAdministrator = errors.New("roles: only administrator")
)

// Pause is a cooperative global stop switch shared across engines.
type Pause struct {
	authority Authority
	paused    atomic.Bool
}

// NewPause constructs a pause switch gated by the supplied authority.
func NewPause(authority Authority) *Pause {
	return &Pause{authority: authority}
}

// Paused implements Pauser.
func (p *Pause) Paused() bool {
	if p == nil {
		return false
	}
	return p.paused.Load()
}

// SetPaused toggles the switch. Only administrators may call it.
func (p *Pause) SetPaused(caller [20]byte, paused bool) error {
	if p.authority == nil || !p.authority.IsAdministrator(caller) {
		return ErrOnlyAdministrator
	}
	p.paused.Store(paused)
	return nil
}
