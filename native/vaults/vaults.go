// Package vaults holds the funded collaborators around the share-object
// engine: the earnings pool, the referral program, and the buyback fund.
// Each vault owns an account address and pays claims exclusively from its
// own balances; the engine itself never distributes rewards.
package vaults

import (
	"encoding/hex"
	"errors"
	"math/big"

	"brickshare/core/events"
	"brickshare/core/types"
)

var (
	ErrNilState          = errors.New("vaults: state not configured")
	ErrNilEngine         = errors.New("vaults: engine not configured")
	ErrNilPricer         = errors.New("vaults: pricer not configured")
	ErrNilAuthority      = errors.New("vaults: role authority not configured")
	ErrNilTreasury       = errors.New("vaults: treasury not configured")
	ErrOnlyAdministrator = errors.New("vaults: only administrator")
	ErrOnlyTokenOwner    = errors.New("vaults: only token owner")
	ErrPaused            = errors.New("vaults: paused")
	ErrNothingToClaim    = errors.New("vaults: nothing to claim")
	ErrInsufficientFunds = errors.New("vaults: insufficient vault balance")
	ErrInvalidAmount     = errors.New("vaults: amount must be positive")
	ErrInvalidRewardBps  = errors.New("vaults: reward bps exceeds 10000")
)

const (
	EventTypeEarningsClaimed  = "vault.earnings_claimed"
	EventTypeReferralAccrued  = "vault.referral_accrued"
	EventTypeReferralClaimed  = "vault.referral_claimed"
	EventTypeBuyback          = "vault.buyback"
	EventTypeTreasuryWithdraw = "vault.treasury_withdraw"
)

type balanceState interface {
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

type vaultEvent struct {
	evt *types.Event
}

func (e vaultEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

// Event exposes the underlying typed event payload.
func (e vaultEvent) Event() *types.Event { return e.evt }

func emit(emitter events.Emitter, evt *types.Event) {
	if emitter == nil || evt == nil {
		return
	}
	emitter.Emit(vaultEvent{evt: evt})
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
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

func balanceOf(state balanceState, addr [20]byte, asset string) (*big.Int, error) {
	if state == nil {
		return nil, ErrNilState
	}
	acc, err := state.GetAccount(addr[:])
	if err != nil {
		return nil, err
	}
	return ensureAccount(acc).Balance(asset), nil
}

func transfer(state balanceState, from, to [20]byte, asset string, amount *big.Int) error {
	if state == nil {
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
	fromAcc, err := state.GetAccount(from[:])
	if err != nil {
		return err
	}
	toAcc, err := state.GetAccount(to[:])
	if err != nil {
		return err
	}
	fromAcc = ensureAccount(fromAcc)
	toAcc = ensureAccount(toAcc)
	if fromAcc.Balance(normalized).Cmp(amt) < 0 {
		return ErrInsufficientFunds
	}
	fromAcc.SetBalance(normalized, new(big.Int).Sub(fromAcc.Balance(normalized), amt))
	toAcc.SetBalance(normalized, new(big.Int).Add(toAcc.Balance(normalized), amt))
	if err := state.PutAccount(from[:], fromAcc); err != nil {
		return err
	}
	return state.PutAccount(to[:], toAcc)
}
