package vaults

import (
	"math/big"
	"strconv"

	"brickshare/core/events"
	"brickshare/core/types"
	"brickshare/native/object"
	"brickshare/native/oracle"
	"brickshare/native/roles"
)

type tokenRegistry interface {
	Token(objectID, tokenID uint64) (*object.ShareToken, error)
	TransferToken(caller [20]byte, objectID, tokenID uint64, to [20]byte) error
}

// BuyBackFund repurchases share tokens from holders at their recorded buy
// price. The fund takes ownership of the token; it is funded independently
// of the object accounts.
type BuyBackFund struct {
	state     balanceState
	engine    tokenRegistry
	pricer    oracle.Pricer
	authority roles.Authority
	pauser    roles.Pauser
	treasury  [20]byte
	addr      [20]byte
	emitter   events.Emitter
}

// NewBuyBackFund creates a fund paying from the given account address.
func NewBuyBackFund(state balanceState, engine tokenRegistry, pricer oracle.Pricer, addr [20]byte) *BuyBackFund {
	return &BuyBackFund{state: state, engine: engine, pricer: pricer, addr: addr, emitter: events.NoopEmitter{}}
}

// SetAuthority configures the role authority used for treasury withdrawals.
func (f *BuyBackFund) SetAuthority(authority roles.Authority) { f.authority = authority }

// SetPauser configures the cooperative pause switch.
func (f *BuyBackFund) SetPauser(pauser roles.Pauser) { f.pauser = pauser }

// SetTreasury configures the withdrawal destination.
func (f *BuyBackFund) SetTreasury(addr [20]byte) { f.treasury = addr }

// SetEmitter configures the event emitter.
func (f *BuyBackFund) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		f.emitter = events.NoopEmitter{}
		return
	}
	f.emitter = emitter
}

// Address returns the fund's account address.
func (f *BuyBackFund) Address() [20]byte { return f.addr }

// Quote returns the asset amount the fund would pay for a token right now.
func (f *BuyBackFund) Quote(objectID, tokenID uint64, asset string) (*big.Int, error) {
	if f == nil || f.engine == nil {
		return nil, ErrNilEngine
	}
	if f.pricer == nil {
		return nil, ErrNilPricer
	}
	token, err := f.engine.Token(objectID, tokenID)
	if err != nil {
		return nil, err
	}
	return f.pricer.USDToAsset(token.BuyPrice, asset)
}

// Sell transfers the caller's token to the fund and pays its recorded buy
// price in the chosen asset.
func (f *BuyBackFund) Sell(caller [20]byte, objectID, tokenID uint64, asset string) (*big.Int, error) {
	if f.pauser != nil && f.pauser.Paused() {
		return nil, ErrPaused
	}
	if f.engine == nil {
		return nil, ErrNilEngine
	}
	if f.pricer == nil {
		return nil, ErrNilPricer
	}
	token, err := f.engine.Token(objectID, tokenID)
	if err != nil {
		return nil, err
	}
	if token.Owner != caller {
		return nil, ErrOnlyTokenOwner
	}
	assetAmount, err := f.pricer.USDToAsset(token.BuyPrice, asset)
	if err != nil {
		return nil, err
	}
	fundBalance, err := balanceOf(f.state, f.addr, types.NormalizeAsset(asset))
	if err != nil {
		return nil, err
	}
	if fundBalance.Cmp(assetAmount) < 0 {
		return nil, ErrInsufficientFunds
	}
	if err := f.engine.TransferToken(caller, objectID, tokenID, f.addr); err != nil {
		return nil, err
	}
	if err := transfer(f.state, f.addr, caller, asset, assetAmount); err != nil {
		return nil, err
	}
	emit(f.emitter, &types.Event{Type: EventTypeBuyback, Attributes: map[string]string{
		"objectId":    strconv.FormatUint(objectID, 10),
		"tokenId":     strconv.FormatUint(tokenID, 10),
		"seller":      hexAddr(caller),
		"usdAmount":   token.BuyPrice.String(),
		"asset":       asset,
		"assetAmount": assetAmount.String(),
	}})
	return assetAmount, nil
}

// WithdrawToTreasury moves surplus fund balances to the treasury.
func (f *BuyBackFund) WithdrawToTreasury(caller [20]byte, asset string, amount *big.Int) error {
	if f.authority == nil {
		return ErrNilAuthority
	}
	if !f.authority.IsAdministrator(caller) {
		return ErrOnlyAdministrator
	}
	if f.treasury == ([20]byte{}) {
		return ErrNilTreasury
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := transfer(f.state, f.addr, f.treasury, asset, amount); err != nil {
		return err
	}
	emit(f.emitter, &types.Event{Type: EventTypeTreasuryWithdraw, Attributes: map[string]string{
		"vault":  "buyback_fund",
		"asset":  asset,
		"amount": amount.String(),
	}})
	return nil
}
