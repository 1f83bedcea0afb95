package roles

import "testing"

func addr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func TestRegistryRoles(t *testing.T) {
	reg := NewRegistry()
	multisig := addr(0x01)
	admin := addr(0x02)
	factory := addr(0x03)
	user := addr(0x04)

	reg.SetOwnersMultisig(multisig)
	reg.AddAdministrator(admin)
	reg.AddFactory(factory)

	if !reg.IsOwnersMultisig(multisig) {
		t.Fatalf("multisig not recognised")
	}
	if reg.IsOwnersMultisig(admin) || reg.IsOwnersMultisig(user) {
		t.Fatalf("non-multisig recognised as multisig")
	}
	if !reg.IsAdministrator(admin) {
		t.Fatalf("administrator not recognised")
	}
	if !reg.IsAdministrator(multisig) {
		t.Fatalf("multisig should pass administrator checks")
	}
	if reg.IsAdministrator(user) {
		t.Fatalf("user recognised as administrator")
	}
	if !reg.IsFactory(factory) || reg.IsFactory(user) {
		t.Fatalf("factory role mismatch")
	}

	reg.RemoveAdministrator(admin)
	if reg.IsAdministrator(admin) {
		t.Fatalf("administrator role not revoked")
	}
}

func TestRegistryZeroMultisig(t *testing.T) {
	reg := NewRegistry()
	if reg.IsOwnersMultisig([20]byte{}) {
		t.Fatalf("zero address must never match the multisig")
	}
}

func TestPauseGating(t *testing.T) {
	reg := NewRegistry()
	admin := addr(0x02)
	user := addr(0x04)
	reg.AddAdministrator(admin)

	pause := NewPause(reg)
	if pause.Paused() {
		t.Fatalf("new pause switch should be off")
	}
	if err := pause.SetPaused(user, true); err != ErrOnlyAdministrator {
		t.Fatalf("expected ErrOnlyAdministrator, got %v", err)
	}
	if err := pause.SetPaused(admin, true); err != nil {
		t.Fatalf("administrator pause failed: %v", err)
	}
	if !pause.Paused() {
		t.Fatalf("pause not applied")
	}
	if err := pause.SetPaused(admin, false); err != nil {
		t.Fatalf("administrator unpause failed: %v", err)
	}
	if pause.Paused() {
		t.Fatalf("pause not cleared")
	}
}
