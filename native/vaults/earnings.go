package vaults

import (
	"math/big"
	"strconv"

	"brickshare/core/events"
	"brickshare/core/types"
	"brickshare/native/oracle"
	"brickshare/native/roles"
)

type earningsState interface {
	balanceState
	EarningsClaimedGet(objectID, tokenID uint64) (*big.Int, error)
	EarningsClaimedPut(objectID, tokenID uint64, amount *big.Int) error
}

type rewardsEstimator interface {
	OwnerOf(objectID, tokenID uint64) ([20]byte, error)
	EstimateRewardsUSD(objectID, tokenID uint64) (*big.Int, error)
}

// EarningsPool pays out the engine's computed reward entitlements. Claims
// are cumulative: each token can claim the difference between its current
// entitlement and what it has already received.
type EarningsPool struct {
	state     earningsState
	engine    rewardsEstimator
	pricer    oracle.Pricer
	authority roles.Authority
	pauser    roles.Pauser
	treasury  [20]byte
	addr      [20]byte
	emitter   events.Emitter
}

// NewEarningsPool creates a pool paying from the given account address.
func NewEarningsPool(state earningsState, engine rewardsEstimator, pricer oracle.Pricer, addr [20]byte) *EarningsPool {
	return &EarningsPool{state: state, engine: engine, pricer: pricer, addr: addr, emitter: events.NoopEmitter{}}
}

// SetAuthority configures the role authority used for treasury withdrawals.
func (p *EarningsPool) SetAuthority(authority roles.Authority) { p.authority = authority }

// SetPauser configures the cooperative pause switch.
func (p *EarningsPool) SetPauser(pauser roles.Pauser) { p.pauser = pauser }

// SetTreasury configures the withdrawal destination.
func (p *EarningsPool) SetTreasury(addr [20]byte) { p.treasury = addr }

// SetEmitter configures the event emitter.
func (p *EarningsPool) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		p.emitter = events.NoopEmitter{}
		return
	}
	p.emitter = emitter
}

// Address returns the pool's funding account address.
func (p *EarningsPool) Address() [20]byte { return p.addr }

// EstimateClaim returns the USD amount the token could claim right now.
func (p *EarningsPool) EstimateClaim(objectID, tokenID uint64) (*big.Int, error) {
	if p == nil || p.engine == nil {
		return nil, ErrNilEngine
	}
	if p.state == nil {
		return nil, ErrNilState
	}
	total, err := p.engine.EstimateRewardsUSD(objectID, tokenID)
	if err != nil {
		return nil, err
	}
	claimed, err := p.state.EarningsClaimedGet(objectID, tokenID)
	if err != nil {
		return nil, err
	}
	owed := new(big.Int).Sub(total, cloneBigInt(claimed))
	if owed.Sign() < 0 {
		owed.SetInt64(0)
	}
	return owed, nil
}

// Claim pays the token's outstanding entitlement to its owner in the chosen
// asset and records the cumulative claimed amount.
func (p *EarningsPool) Claim(caller [20]byte, objectID, tokenID uint64, asset string) (*big.Int, error) {
	if p.pauser != nil && p.pauser.Paused() {
		return nil, ErrPaused
	}
	if p.pricer == nil {
		return nil, ErrNilPricer
	}
	owner, err := p.engine.OwnerOf(objectID, tokenID)
	if err != nil {
		return nil, err
	}
	if owner != caller {
		return nil, ErrOnlyTokenOwner
	}
	owedUSD, err := p.EstimateClaim(objectID, tokenID)
	if err != nil {
		return nil, err
	}
	if owedUSD.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	assetAmount, err := p.pricer.USDToAsset(owedUSD, asset)
	if err != nil {
		return nil, err
	}
	poolBalance, err := balanceOf(p.state, p.addr, types.NormalizeAsset(asset))
	if err != nil {
		return nil, err
	}
	if poolBalance.Cmp(assetAmount) < 0 {
		return nil, ErrInsufficientFunds
	}
	total, err := p.engine.EstimateRewardsUSD(objectID, tokenID)
	if err != nil {
		return nil, err
	}
	// Claimed ledger is updated before the payout.
	if err := p.state.EarningsClaimedPut(objectID, tokenID, total); err != nil {
		return nil, err
	}
	if err := transfer(p.state, p.addr, caller, asset, assetAmount); err != nil {
		return nil, err
	}
	emit(p.emitter, &types.Event{Type: EventTypeEarningsClaimed, Attributes: map[string]string{
		"objectId":    strconv.FormatUint(objectID, 10),
		"tokenId":     strconv.FormatUint(tokenID, 10),
		"usdAmount":   owedUSD.String(),
		"asset":       asset,
		"assetAmount": assetAmount.String(),
	}})
	return assetAmount, nil
}

// Claimed returns the cumulative USD value a token has already received.
func (p *EarningsPool) Claimed(objectID, tokenID uint64) (*big.Int, error) {
	if p == nil || p.state == nil {
		return nil, ErrNilState
	}
	claimed, err := p.state.EarningsClaimedGet(objectID, tokenID)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(claimed), nil
}

// WithdrawToTreasury moves surplus pool funds to the treasury.
func (p *EarningsPool) WithdrawToTreasury(caller [20]byte, asset string, amount *big.Int) error {
	if p.authority == nil {
		return ErrNilAuthority
	}
	if !p.authority.IsAdministrator(caller) {
		return ErrOnlyAdministrator
	}
	if p.treasury == ([20]byte{}) {
		return ErrNilTreasury
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := transfer(p.state, p.addr, p.treasury, asset, amount); err != nil {
		return err
	}
	emit(p.emitter, &types.Event{Type: EventTypeTreasuryWithdraw, Attributes: map[string]string{
		"vault":  "earnings_pool",
		"asset":  asset,
		"amount": amount.String(),
	}})
	return nil
}
