package factory

import (
	"encoding/binary"
	"errors"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"brickshare/native/object"
	"brickshare/native/roles"
)

var (
	ErrNilEngine          = errors.New("factory: engine not configured")
	ErrNilState           = errors.New("factory: state not configured")
	ErrNilAuthority       = errors.New("factory: role authority not configured")
	ErrOnlyOwnersMultisig = errors.New("factory: only owners multisig")
)

type factoryState interface {
	NextObjectID() (uint64, error)
	SetNextObjectID(uint64) error
}

type objectCreator interface {
	CreateObject(caller [20]byte, params object.ObjectParams) (*object.Object, error)
}

// ObjectSpec carries the governance-chosen parameters of a new share object.
// Identifier and address assignment stay with the factory.
type ObjectSpec struct {
	MaxShares              uint64
	OneSharePrice          *big.Int
	SaleStopTimestamp      int64
	ReferralProgramEnabled bool
}

// Factory assigns sequential object ids and deterministic object addresses,
// then initialises objects through the engine under its own factory
// identity. Creation itself is multisig-gated.
type Factory struct {
	engine    objectCreator
	authority roles.Authority
	state     factoryState
	addr      [20]byte
}

// New wires a factory. addr must be registered as a factory identity with
// the role authority the engine consults.
func New(engine objectCreator, authority roles.Authority, state factoryState, addr [20]byte) *Factory {
	return &Factory{engine: engine, authority: authority, state: state, addr: addr}
}

// Address returns the factory's own identity address.
func (f *Factory) Address() [20]byte { return f.addr }

// DeriveObjectAddress computes the deterministic account address for an
// object id: the trailing 20 bytes of keccak256(factory address || id).
func (f *Factory) DeriveObjectAddress(id uint64) [20]byte {
	buf := make([]byte, 28)
	copy(buf, f.addr[:])
	binary.BigEndian.PutUint64(buf[20:], id)
	hash := ethcrypto.Keccak256(buf)
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr
}

// CreateFullSaleObject creates an object whose single stage carries the
// entire share cap.
func (f *Factory) CreateFullSaleObject(caller [20]byte, spec ObjectSpec) (*object.Object, error) {
	return f.create(caller, spec, false, 0)
}

// CreateStageSaleObject creates an object whose first stage carries
// initialStageShares out of the cap; later stages are opened by governance.
func (f *Factory) CreateStageSaleObject(caller [20]byte, spec ObjectSpec, initialStageShares uint64) (*object.Object, error) {
	return f.create(caller, spec, true, initialStageShares)
}

func (f *Factory) create(caller [20]byte, spec ObjectSpec, stageSale bool, initialStageShares uint64) (*object.Object, error) {
	if f == nil || f.engine == nil {
		return nil, ErrNilEngine
	}
	if f.state == nil {
		return nil, ErrNilState
	}
	if f.authority == nil {
		return nil, ErrNilAuthority
	}
	if !f.authority.IsOwnersMultisig(caller) {
		return nil, ErrOnlyOwnersMultisig
	}
	id, err := f.state.NextObjectID()
	if err != nil {
		return nil, err
	}
	if id == 0 {
		id = 1
	}
	obj, err := f.engine.CreateObject(f.addr, object.ObjectParams{
		ID:                     id,
		Address:                f.DeriveObjectAddress(id),
		MaxShares:              spec.MaxShares,
		StageSale:              stageSale,
		InitialStageShares:     initialStageShares,
		SaleStopTimestamp:      spec.SaleStopTimestamp,
		OneSharePrice:          spec.OneSharePrice,
		ReferralProgramEnabled: spec.ReferralProgramEnabled,
	})
	if err != nil {
		return nil, err
	}
	if err := f.state.SetNextObjectID(id + 1); err != nil {
		return nil, err
	}
	return obj, nil
}
