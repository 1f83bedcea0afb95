package types

import (
	"math/big"
	"strings"
)

// Account tracks the payment-asset balances held by an address. Balances are
// keyed by the normalized asset symbol (e.g. "USDT").
type Account struct {
	Nonce    uint64              `json:"nonce"`
	Balances map[string]*big.Int `json:"balances"`
}

// NewAccount returns an empty account with an allocated balance table.
func NewAccount() *Account {
	return &Account{Balances: make(map[string]*big.Int)}
}

// NormalizeAsset canonicalises an asset symbol. Empty symbols stay empty.
func NormalizeAsset(asset string) string {
	return strings.ToUpper(strings.TrimSpace(asset))
}

// Balance returns the balance held in the given asset, never nil.
func (a *Account) Balance(asset string) *big.Int {
	if a == nil || a.Balances == nil {
		return big.NewInt(0)
	}
	bal, ok := a.Balances[NormalizeAsset(asset)]
	if !ok || bal == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(bal)
}

// SetBalance overwrites the balance held in the given asset.
func (a *Account) SetBalance(asset string, amount *big.Int) {
	if a == nil {
		return
	}
	if a.Balances == nil {
		a.Balances = make(map[string]*big.Int)
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	a.Balances[NormalizeAsset(asset)] = new(big.Int).Set(amount)
}

// Clone returns a deep copy of the account to avoid mutating shared pointers.
func (a *Account) Clone() *Account {
	if a == nil {
		return NewAccount()
	}
	clone := &Account{Nonce: a.Nonce, Balances: make(map[string]*big.Int, len(a.Balances))}
	for asset, bal := range a.Balances {
		if bal == nil {
			clone.Balances[asset] = big.NewInt(0)
			continue
		}
		clone.Balances[asset] = new(big.Int).Set(bal)
	}
	return clone
}
