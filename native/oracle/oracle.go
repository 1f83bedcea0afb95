package oracle

import (
	"errors"
	"math/big"
	"sort"
	"sync"

	"brickshare/core/types"
)

// usdScale is the fixed-point scale of reference-currency amounts (18
// decimals), matching the scale used by the share engine.
var usdScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var (
	// ErrUnknownAsset indicates the requested payment asset has no registered
	// quote.
	ErrUnknownAsset = errors.New("oracle: unknown asset")
	// ErrInvalidRate indicates a zero or negative exchange rate.
	ErrInvalidRate = errors.New("oracle: invalid rate")
	// ErrInvalidAmount indicates a nil or negative conversion amount.
	ErrInvalidAmount = errors.New("oracle: invalid amount")
)

// Pricer converts between reference-currency (USD, 18 decimals) amounts and
// amounts of a specific accepted payment asset. Both directions round down so
// repeated round-trips can only lose dust, never mint value.
type Pricer interface {
	USDToAsset(usd *big.Int, asset string) (*big.Int, error)
	AssetToUSD(amount *big.Int, asset string) (*big.Int, error)
}

// AssetQuote captures the pricing parameters for one accepted payment asset.
// Rate is the USD value of one whole asset unit.
type AssetQuote struct {
	Rate     *big.Rat
	Decimals uint8
}

// Clone returns a deep copy of the quote to prevent accidental mutations.
func (q AssetQuote) Clone() AssetQuote {
	clone := AssetQuote{Decimals: q.Decimals}
	if q.Rate != nil {
		clone.Rate = new(big.Rat).Set(q.Rate)
	}
	return clone
}

// Manager resolves conversions for a set of registered payment assets. It is
// safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	quotes map[string]AssetQuote
}

// NewManager constructs an empty pricing manager.
func NewManager() *Manager {
	return &Manager{quotes: make(map[string]AssetQuote)}
}

// RegisterAsset records (or replaces) the quote for an accepted asset.
func (m *Manager) RegisterAsset(asset string, rate *big.Rat, decimals uint8) error {
	normalized := types.NormalizeAsset(asset)
	if normalized == "" {
		return ErrUnknownAsset
	}
	if rate == nil || rate.Sign() <= 0 {
		return ErrInvalidRate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[normalized] = AssetQuote{Rate: new(big.Rat).Set(rate), Decimals: decimals}
	return nil
}

// Assets lists the registered asset symbols in deterministic order.
func (m *Manager) Assets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.quotes))
	for asset := range m.quotes {
		out = append(out, asset)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether the asset has a registered quote.
func (m *Manager) Supports(asset string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.quotes[types.NormalizeAsset(asset)]
	return ok
}

func (m *Manager) quote(asset string) (AssetQuote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quotes[types.NormalizeAsset(asset)]
	if !ok {
		return AssetQuote{}, ErrUnknownAsset
	}
	return q.Clone(), nil
}

func assetScale(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// USDToAsset converts a USD amount (18 decimals) into asset base units,
// rounding down.
func (m *Manager) USDToAsset(usd *big.Int, asset string) (*big.Int, error) {
	if usd == nil || usd.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	q, err := m.quote(asset)
	if err != nil {
		return nil, err
	}
	// units = usd / usdScale / rate * 10^decimals
	value := new(big.Rat).SetFrac(new(big.Int).Mul(usd, assetScale(q.Decimals)), usdScale)
	value.Quo(value, q.Rate)
	return new(big.Int).Quo(value.Num(), value.Denom()), nil
}

// AssetToUSD converts asset base units into a USD amount (18 decimals),
// rounding down.
func (m *Manager) AssetToUSD(amount *big.Int, asset string) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	q, err := m.quote(asset)
	if err != nil {
		return nil, err
	}
	value := new(big.Rat).SetFrac(new(big.Int).Mul(amount, usdScale), assetScale(q.Decimals))
	value.Mul(value, q.Rate)
	return new(big.Int).Quo(value.Num(), value.Denom()), nil
}
