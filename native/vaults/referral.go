package vaults

import (
	"math/big"
	"strconv"

	"brickshare/core/events"
	"brickshare/core/types"
	"brickshare/native/oracle"
	"brickshare/native/roles"
)

const bpsDenominator = 10_000

type referralState interface {
	balanceState
	ReferralRewardGet(addr [20]byte) (*big.Int, error)
	ReferralRewardPut(addr [20]byte, amount *big.Int) error
}

// ReferralProgram accrues a basis-point share of every referred purchase to
// the referrer and pays accrued rewards from its own balances. It plugs into
// the engine as its referral hook.
type ReferralProgram struct {
	state     referralState
	pricer    oracle.Pricer
	authority roles.Authority
	pauser    roles.Pauser
	treasury  [20]byte
	addr      [20]byte
	rewardBps uint32
	emitter   events.Emitter
}

// NewReferralProgram creates a program rewarding rewardBps of each referred
// purchase's USD volume.
func NewReferralProgram(state referralState, pricer oracle.Pricer, addr [20]byte, rewardBps uint32) (*ReferralProgram, error) {
	if rewardBps > bpsDenominator {
		return nil, ErrInvalidRewardBps
	}
	return &ReferralProgram{
		state:     state,
		pricer:    pricer,
		addr:      addr,
		rewardBps: rewardBps,
		emitter:   events.NoopEmitter{},
	}, nil
}

// SetAuthority configures the role authority used for treasury withdrawals.
func (r *ReferralProgram) SetAuthority(authority roles.Authority) { r.authority = authority }

// SetPauser configures the cooperative pause switch.
func (r *ReferralProgram) SetPauser(pauser roles.Pauser) { r.pauser = pauser }

// SetTreasury configures the withdrawal destination.
func (r *ReferralProgram) SetTreasury(addr [20]byte) { r.treasury = addr }

// SetEmitter configures the event emitter.
func (r *ReferralProgram) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// Address returns the program's funding account address.
func (r *ReferralProgram) Address() [20]byte { return r.addr }

// RewardBps returns the configured reward rate in basis points.
func (r *ReferralProgram) RewardBps() uint32 { return r.rewardBps }

// PurchaseRecorded accrues the referrer's share of a referred purchase. The
// engine calls this after a successful referred buy.
func (r *ReferralProgram) PurchaseRecorded(objectID, stageID uint64, buyer, referrer [20]byte, usdAmount *big.Int) error {
	if r == nil || r.state == nil {
		return ErrNilState
	}
	if usdAmount == nil || usdAmount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	reward := new(big.Int).Mul(usdAmount, new(big.Int).SetUint64(uint64(r.rewardBps)))
	reward.Quo(reward, big.NewInt(bpsDenominator))
	if reward.Sign() == 0 {
		return nil
	}
	accrued, err := r.state.ReferralRewardGet(referrer)
	if err != nil {
		return err
	}
	if err := r.state.ReferralRewardPut(referrer, new(big.Int).Add(cloneBigInt(accrued), reward)); err != nil {
		return err
	}
	emit(r.emitter, &types.Event{Type: EventTypeReferralAccrued, Attributes: map[string]string{
		"objectId": strconv.FormatUint(objectID, 10),
		"stageId":  strconv.FormatUint(stageID, 10),
		"referrer": hexAddr(referrer),
		"reward":   reward.String(),
	}})
	return nil
}

// PendingReward returns the referrer's unclaimed USD balance.
func (r *ReferralProgram) PendingReward(referrer [20]byte) (*big.Int, error) {
	if r == nil || r.state == nil {
		return nil, ErrNilState
	}
	accrued, err := r.state.ReferralRewardGet(referrer)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(accrued), nil
}

// Claim pays the caller's entire accrued reward in the chosen asset.
func (r *ReferralProgram) Claim(caller [20]byte, asset string) (*big.Int, error) {
	if r.pauser != nil && r.pauser.Paused() {
		return nil, ErrPaused
	}
	if r.pricer == nil {
		return nil, ErrNilPricer
	}
	owedUSD, err := r.PendingReward(caller)
	if err != nil {
		return nil, err
	}
	if owedUSD.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	assetAmount, err := r.pricer.USDToAsset(owedUSD, asset)
	if err != nil {
		return nil, err
	}
	programBalance, err := balanceOf(r.state, r.addr, types.NormalizeAsset(asset))
	if err != nil {
		return nil, err
	}
	if programBalance.Cmp(assetAmount) < 0 {
		return nil, ErrInsufficientFunds
	}
	if err := r.state.ReferralRewardPut(caller, big.NewInt(0)); err != nil {
		return nil, err
	}
	if err := transfer(r.state, r.addr, caller, asset, assetAmount); err != nil {
		return nil, err
	}
	emit(r.emitter, &types.Event{Type: EventTypeReferralClaimed, Attributes: map[string]string{
		"referrer":    hexAddr(caller),
		"usdAmount":   owedUSD.String(),
		"asset":       asset,
		"assetAmount": assetAmount.String(),
	}})
	return assetAmount, nil
}

// WithdrawToTreasury moves surplus program funds to the treasury.
func (r *ReferralProgram) WithdrawToTreasury(caller [20]byte, asset string, amount *big.Int) error {
	if r.authority == nil {
		return ErrNilAuthority
	}
	if !r.authority.IsAdministrator(caller) {
		return ErrOnlyAdministrator
	}
	if r.treasury == ([20]byte{}) {
		return ErrNilTreasury
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := transfer(r.state, r.addr, r.treasury, asset, amount); err != nil {
		return err
	}
	emit(r.emitter, &types.Event{Type: EventTypeTreasuryWithdraw, Attributes: map[string]string{
		"vault":  "referral_program",
		"asset":  asset,
		"amount": amount.String(),
	}})
	return nil
}
