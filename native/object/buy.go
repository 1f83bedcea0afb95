package object

import "math/big"

// priceFor computes the effective per-share price for a buyer: the stage
// price, improved by the buyer's personal lock when that is lower.
func priceFor(obj *Object, buyer [20]byte) (*big.Int, error) {
	stage := obj.CurrentStage()
	if stage == nil {
		return nil, ErrStageNotFound
	}
	price := cloneBigInt(stage.OneSharePrice)
	if personal := obj.personalPrice(buyer); personal != nil && personal.Cmp(price) < 0 {
		price = personal
	}
	return price, nil
}

// PriceForUser returns the effective per-share USD price the buyer would be
// charged right now.
func (e *Engine) PriceForUser(objectID uint64, buyer [20]byte) (*big.Int, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	return priceFor(obj, buyer)
}

// EstimateBuySharesUSD returns the USD cost of buying the given share count
// at the buyer's effective price.
func (e *Engine) EstimateBuySharesUSD(objectID uint64, buyer [20]byte, shares uint64) (*big.Int, error) {
	if shares == 0 {
		return nil, ErrZeroShares
	}
	price, err := e.PriceForUser(objectID, buyer)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Mul(price, new(big.Int).SetUint64(shares)), nil
}

// EstimateBuySharesAsset converts the USD cost of a purchase into the
// requested payment asset through the oracle.
func (e *Engine) EstimateBuySharesAsset(objectID uint64, buyer [20]byte, shares uint64, asset string) (*big.Int, error) {
	if e.pricer == nil {
		return nil, ErrNilPricer
	}
	usd, err := e.EstimateBuySharesUSD(objectID, buyer, shares)
	if err != nil {
		return nil, err
	}
	return e.pricer.USDToAsset(usd, asset)
}

// BuyShares purchases shares from the object's open stage. The purchase is
// all-or-nothing: it fails when the stage cannot cover the full share count.
// maxAssetAmount guards the buyer against price movement between estimation
// and execution.
func (e *Engine) BuyShares(caller [20]byte, objectID uint64, shares uint64, asset string, maxAssetAmount *big.Int, referrer [20]byte) (*ShareToken, error) {
	if err := e.requireNotPaused(); err != nil {
		return nil, err
	}
	if e.pricer == nil {
		return nil, ErrNilPricer
	}
	if shares == 0 {
		return nil, ErrZeroShares
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	if obj.IsSold {
		return nil, ErrObjectSold
	}
	if !obj.IsActiveSale {
		return nil, ErrSaleInactive
	}
	stage := obj.CurrentStage()
	if stage == nil || stage.Closed {
		return nil, ErrSaleInactive
	}
	if shares > stage.AvailableShares {
		return nil, ErrStageExhausted
	}
	price, err := priceFor(obj, caller)
	if err != nil {
		return nil, err
	}
	usdCost := new(big.Int).Mul(price, new(big.Int).SetUint64(shares))
	assetAmount, err := e.pricer.USDToAsset(usdCost, asset)
	if err != nil {
		return nil, err
	}
	if maxAssetAmount != nil && assetAmount.Cmp(maxAssetAmount) > 0 {
		return nil, ErrSlippageExceeded
	}
	// Check the buyer can settle before inventory is committed, so a failed
	// transfer cannot leave the stage decremented.
	buyerBalance, err := e.assetBalance(caller, asset)
	if err != nil {
		return nil, err
	}
	if buyerBalance.Cmp(assetAmount) < 0 {
		return nil, ErrInsufficientBalance
	}

	// Effects before interactions: commit inventory and the minted token
	// before the settlement transfer touches external account state.
	stage.AvailableShares -= shares
	token := e.mintToken(obj, caller, shares, usdCost, stage.ID)
	obj.setPersonalPrice(caller, price)
	if err := e.storeObject(obj); err != nil {
		return nil, err
	}
	if err := e.transferAsset(caller, obj.Address, asset, assetAmount); err != nil {
		return nil, err
	}
	e.emit(newSharesPurchasedEvent(obj.ID, token, asset, assetAmount))

	// The purchase is committed at this point; a failing hook cannot unwind
	// it, so accrual errors are dropped.
	if obj.ReferralProgramEnabled && e.referral != nil && !isZeroAddress(referrer) && referrer != caller {
		_ = e.referral.PurchaseRecorded(obj.ID, stage.ID, caller, referrer, usdCost)
	}
	return token.Clone(), nil
}
