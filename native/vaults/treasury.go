package vaults

import "math/big"

// Treasury is the balance sink for company buyback sweeps and vault
// withdrawals. It holds no logic beyond balance inspection.
type Treasury struct {
	state balanceState
	addr  [20]byte
}

// NewTreasury wraps the treasury account address.
func NewTreasury(state balanceState, addr [20]byte) *Treasury {
	return &Treasury{state: state, addr: addr}
}

// Address returns the treasury account address.
func (t *Treasury) Address() [20]byte { return t.addr }

// Balance returns the treasury's balance in the given asset.
func (t *Treasury) Balance(asset string) (*big.Int, error) {
	if t == nil || t.state == nil {
		return nil, ErrNilState
	}
	return balanceOf(t.state, t.addr, asset)
}
