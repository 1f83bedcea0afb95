package object

import (
	"math/big"
	"time"

	"brickshare/core/events"
	"brickshare/core/types"
	"brickshare/native/oracle"
	"brickshare/native/roles"
)

type engineState interface {
	ObjectPut(*Object) error
	ObjectGet(id uint64) (*Object, bool, error)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// ReferralHook receives purchase notifications so the referral collaborator
// can accrue rewards from its own balances. The engine never moves referral
// funds itself.
type ReferralHook interface {
	PurchaseRecorded(objectID, stageID uint64, buyer, referrer [20]byte, usdAmount *big.Int) error
}

// Engine wires the share-object business logic with external state, role
// checks, pricing, and event emission. Every state-mutating call is atomic
// relative to the object record: the mutated object is persisted in a single
// put after all checks pass.
type Engine struct {
	state     engineState
	authority roles.Authority
	pauser    roles.Pauser
	pricer    oracle.Pricer
	referral  ReferralHook
	treasury  [20]byte
	emitter   events.Emitter
	nowFn     func() int64
}

// NewEngine creates a share-object engine with a no-op emitter. Callers can
// override collaborators via the setters.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAuthority configures the role authority consulted on privileged calls.
func (e *Engine) SetAuthority(authority roles.Authority) { e.authority = authority }

// SetPauser configures the cooperative pause switch. The engine re-reads it
// on every mutating call and never caches the answer.
func (e *Engine) SetPauser(pauser roles.Pauser) { e.pauser = pauser }

// SetPricer configures the oracle used for USD/asset conversions.
func (e *Engine) SetPricer(pricer oracle.Pricer) { e.pricer = pricer }

// SetReferralHook configures the referral collaborator notified on purchases.
// Passing nil disables notifications.
func (e *Engine) SetReferralHook(hook ReferralHook) { e.referral = hook }

// SetTreasury configures the address receiving company buyback sweeps.
func (e *Engine) SetTreasury(addr [20]byte) { e.treasury = addr }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(objectEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) requireNotPaused() error {
	if e.pauser != nil && e.pauser.Paused() {
		return ErrPaused
	}
	return nil
}

func (e *Engine) requireOwnersMultisig(caller [20]byte) error {
	if e.authority == nil {
		return ErrNilAuthority
	}
	if !e.authority.IsOwnersMultisig(caller) {
		return ErrOnlyOwnersMultisig
	}
	return nil
}

func (e *Engine) requireAdministrator(caller [20]byte) error {
	if e.authority == nil {
		return ErrNilAuthority
	}
	if !e.authority.IsAdministrator(caller) {
		return ErrOnlyAdministrator
	}
	return nil
}

func (e *Engine) requireFactory(caller [20]byte) error {
	if e.authority == nil {
		return ErrNilAuthority
	}
	if !e.authority.IsFactory(caller) {
		return ErrOnlyFactory
	}
	return nil
}

func (e *Engine) loadObject(id uint64) (*Object, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	obj, ok, err := e.state.ObjectGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || obj == nil {
		return nil, ErrObjectNotFound
	}
	return obj, nil
}

func (e *Engine) storeObject(obj *Object) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	return e.state.ObjectPut(obj)
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return types.NewAccount()
	}
	if acc.Balances == nil {
		acc.Balances = make(map[string]*big.Int)
	}
	return acc
}

// assetBalance reads the balance an address holds in the given asset.
func (e *Engine) assetBalance(addr [20]byte, asset string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	acc, err := e.state.GetAccount(addr[:])
	if err != nil {
		return nil, err
	}
	return ensureAccount(acc).Balance(asset), nil
}

func (e *Engine) transferAsset(from, to [20]byte, asset string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return ErrInvalidAmount
	}
	normalized := types.NormalizeAsset(asset)
	fromAcc, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	toAcc, err := e.state.GetAccount(to[:])
	if err != nil {
		return err
	}
	fromAcc = ensureAccount(fromAcc)
	toAcc = ensureAccount(toAcc)
	if fromAcc.Balance(normalized).Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	fromAcc.SetBalance(normalized, new(big.Int).Sub(fromAcc.Balance(normalized), amt))
	toAcc.SetBalance(normalized, new(big.Int).Add(toAcc.Balance(normalized), amt))
	if err := e.state.PutAccount(from[:], fromAcc); err != nil {
		return err
	}
	return e.state.PutAccount(to[:], toAcc)
}

// ObjectParams carries the constructor-equivalent initializer arguments
// assigned by the factory.
type ObjectParams struct {
	ID                     uint64
	Address                [20]byte
	MaxShares              uint64
	StageSale              bool
	InitialStageShares     uint64
	SaleStopTimestamp      int64
	OneSharePrice          *big.Int
	ReferralProgramEnabled bool
}

// CreateObject initialises a new share object with its first stage. Only the
// factory may call it. In full-sale mode the single stage carries the entire
// cap; in stage-sale mode the first stage carries a subset and later stages
// are added by governance.
func (e *Engine) CreateObject(caller [20]byte, params ObjectParams) (*Object, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := e.requireFactory(caller); err != nil {
		return nil, err
	}
	if params.MaxShares == 0 {
		return nil, ErrZeroShares
	}
	if params.OneSharePrice == nil || params.OneSharePrice.Sign() <= 0 {
		return nil, ErrZeroPrice
	}
	firstStageShares := params.MaxShares
	if params.StageSale {
		if params.InitialStageShares == 0 {
			return nil, ErrZeroShares
		}
		if params.InitialStageShares > params.MaxShares {
			return nil, ErrMaxSharesExceeded
		}
		firstStageShares = params.InitialStageShares
	}
	if _, ok, err := e.state.ObjectGet(params.ID); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrObjectExists
	}
	obj := &Object{
		ID:                     params.ID,
		Address:                params.Address,
		MaxShares:              params.MaxShares,
		StageSale:              params.StageSale,
		IsActiveSale:           true,
		Earnings:               big.NewInt(0),
		ReferralProgramEnabled: params.ReferralProgramEnabled,
		Stages: []*Stage{{
			ID:                1,
			OneSharePrice:     cloneBigInt(params.OneSharePrice),
			Allocated:         firstStageShares,
			AvailableShares:   firstStageShares,
			SaleStopTimestamp: params.SaleStopTimestamp,
			BoostedEarnings:   big.NewInt(0),
		}},
		Tokens:         make(map[uint64]*ShareToken),
		NextTokenID:    1,
		PersonalPrices: make(map[string]*big.Int),
		CreatedAt:      e.now(),
	}
	if err := e.storeObject(obj); err != nil {
		return nil, err
	}
	e.emit(newObjectCreatedEvent(obj))
	e.emit(newStageCreatedEvent(obj.ID, obj.Stages[0]))
	return obj.Clone(), nil
}

func (e *Engine) mintToken(obj *Object, owner [20]byte, shares uint64, buyPrice *big.Int, stageID uint64) *ShareToken {
	token := &ShareToken{
		ID:          obj.NextTokenID,
		Owner:       owner,
		Shares:      shares,
		BuyPrice:    cloneBigInt(buyPrice),
		MintStageID: stageID,
	}
	obj.NextTokenID++
	obj.Tokens[token.ID] = token
	return token
}
