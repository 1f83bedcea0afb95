package object

import "math/big"

func requireStageReady(obj *Object, stageID uint64) error {
	stage, ok := obj.StageByID(stageID)
	if !ok {
		return ErrStageNotFound
	}
	if !stage.Closed {
		return ErrStageNotReady
	}
	return nil
}

func requireToken(obj *Object, tokenID uint64) (*ShareToken, error) {
	token, ok := obj.Tokens[tokenID]
	if !ok || token == nil {
		return nil, ErrTokenNotFound
	}
	return token, nil
}

// SplitToken carves rightShares out of an existing token into a new token
// owned by the same holder. The original token keeps its id; the buy price
// is apportioned pro-rata with the integer remainder staying on the
// original, so the pair always sums to the original buy price.
func (e *Engine) SplitToken(caller [20]byte, objectID, tokenID, rightShares uint64) (*ShareToken, error) {
	if err := e.requireNotPaused(); err != nil {
		return nil, err
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	token, err := requireToken(obj, tokenID)
	if err != nil {
		return nil, err
	}
	if token.Owner != caller {
		return nil, ErrOnlyTokenOwner
	}
	if err := requireStageReady(obj, token.MintStageID); err != nil {
		return nil, err
	}
	if rightShares == 0 || rightShares >= token.Shares {
		return nil, ErrSplitShares
	}
	rightPrice := new(big.Int).Mul(token.BuyPrice, new(big.Int).SetUint64(rightShares))
	rightPrice.Quo(rightPrice, new(big.Int).SetUint64(token.Shares))
	token.Shares -= rightShares
	token.BuyPrice = new(big.Int).Sub(token.BuyPrice, rightPrice)
	right := e.mintToken(obj, caller, rightShares, rightPrice, token.MintStageID)
	if err := e.storeObject(obj); err != nil {
		return nil, err
	}
	e.emit(newTokenSplitEvent(obj.ID, token, right))
	return right.Clone(), nil
}

// MergeTokens burns two tokens of the same owner and mint stage and mints a
// fresh token with combined shares and summed buy price.
func (e *Engine) MergeTokens(caller [20]byte, objectID, leftID, rightID uint64) (*ShareToken, error) {
	if err := e.requireNotPaused(); err != nil {
		return nil, err
	}
	if leftID == rightID {
		return nil, ErrMergeStageMismatch
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	left, err := requireToken(obj, leftID)
	if err != nil {
		return nil, err
	}
	right, err := requireToken(obj, rightID)
	if err != nil {
		return nil, err
	}
	if left.Owner != caller || right.Owner != caller {
		return nil, ErrOnlyTokenOwner
	}
	if left.MintStageID != right.MintStageID {
		return nil, ErrMergeStageMismatch
	}
	if err := requireStageReady(obj, left.MintStageID); err != nil {
		return nil, err
	}
	mergedPrice := new(big.Int).Add(left.BuyPrice, right.BuyPrice)
	mergedShares := left.Shares + right.Shares
	delete(obj.Tokens, leftID)
	delete(obj.Tokens, rightID)
	merged := e.mintToken(obj, caller, mergedShares, mergedPrice, left.MintStageID)
	if err := e.storeObject(obj); err != nil {
		return nil, err
	}
	e.emit(newTokenMergedEvent(obj.ID, merged, leftID, rightID))
	return merged.Clone(), nil
}

// TransferToken moves ownership of a live token to another holder. The
// recipient inherits the token as-is; buy price and mint stage travel with
// it.
func (e *Engine) TransferToken(caller [20]byte, objectID, tokenID uint64, to [20]byte) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	if isZeroAddress(to) {
		return ErrInvalidRecipient
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	token, err := requireToken(obj, tokenID)
	if err != nil {
		return err
	}
	if token.Owner != caller {
		return ErrOnlyTokenOwner
	}
	token.Owner = to
	if err := e.storeObject(obj); err != nil {
		return err
	}
	e.emit(newTokenTransferredEvent(obj.ID, tokenID, caller, to))
	return nil
}

// Exit burns the caller's token and redeems its share count in the chosen
// asset at the caller's effective price, exactly as a purchase would be
// charged. Exit opens once the object's sale is closed or the token's stage
// sale-stop deadline has elapsed; a stage with no deadline cannot be exited
// while the sale stays active.
func (e *Engine) Exit(caller [20]byte, objectID, tokenID uint64, asset string) (*big.Int, error) {
	if err := e.requireNotPaused(); err != nil {
		return nil, err
	}
	if e.pricer == nil {
		return nil, ErrNilPricer
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	token, err := requireToken(obj, tokenID)
	if err != nil {
		return nil, err
	}
	if token.Owner != caller {
		return nil, ErrOnlyTokenOwner
	}
	stage, ok := obj.StageByID(token.MintStageID)
	if !ok {
		return nil, ErrStageNotFound
	}
	if obj.IsActiveSale {
		if stage.SaleStopTimestamp == 0 || e.now() < stage.SaleStopTimestamp {
			return nil, ErrActiveSaleExit
		}
	}
	price, err := priceFor(obj, caller)
	if err != nil {
		return nil, err
	}
	usdValue := new(big.Int).Mul(price, new(big.Int).SetUint64(token.Shares))
	assetAmount, err := e.pricer.USDToAsset(usdValue, asset)
	if err != nil {
		return nil, err
	}
	objBalance, err := e.assetBalance(obj.Address, asset)
	if err != nil {
		return nil, err
	}
	if objBalance.Cmp(assetAmount) < 0 {
		return nil, ErrInsufficientBalance
	}
	// Burn before paying out so a reentrant settlement cannot redeem twice.
	delete(obj.Tokens, tokenID)
	if err := e.storeObject(obj); err != nil {
		return nil, err
	}
	if err := e.transferAsset(obj.Address, caller, asset, assetAmount); err != nil {
		return nil, err
	}
	e.emit(newTokenExitEvent(obj.ID, token, asset, assetAmount))
	return assetAmount, nil
}

// BuySharesForCompany consumes up to the requested amount from the open
// stage into company ownership and sweeps the object's accumulated
// payment-asset balances to the treasury. No token is minted. Returns the
// share count actually consumed.
func (e *Engine) BuySharesForCompany(caller [20]byte, objectID, amount uint64) (uint64, error) {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, ErrZeroShares
	}
	if e.treasury == ([20]byte{}) {
		return 0, ErrNilTreasury
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return 0, err
	}
	stage := obj.CurrentStage()
	if stage == nil || stage.Closed {
		return 0, ErrSaleInactive
	}
	consumed := amount
	if consumed > stage.AvailableShares {
		consumed = stage.AvailableShares
	}
	stage.AvailableShares -= consumed
	obj.CompanyShares += consumed
	if err := e.storeObject(obj); err != nil {
		return 0, err
	}
	if err := e.sweepToTreasury(obj.Address); err != nil {
		return 0, err
	}
	e.emit(newCompanyBuybackEvent(obj.ID, consumed, obj.CompanyShares))
	return consumed, nil
}

// sweepToTreasury pushes every asset balance held by the object account to
// the treasury.
func (e *Engine) sweepToTreasury(objectAddr [20]byte) error {
	acc, err := e.state.GetAccount(objectAddr[:])
	if err != nil {
		return err
	}
	acc = ensureAccount(acc)
	for asset := range acc.Balances {
		balance := acc.Balance(asset)
		if balance.Sign() == 0 {
			continue
		}
		if err := e.transferAsset(objectAddr, e.treasury, asset, balance); err != nil {
			return err
		}
	}
	return nil
}

// WithdrawCompanyShares mints a token to the recipient out of company-held
// shares. virtualPrice is the governance-assigned cost basis used for later
// earnings proportioning; it is not derived from any sale. The minted token
// is returned directly so callers never have to infer its id.
func (e *Engine) WithdrawCompanyShares(caller [20]byte, objectID, amount uint64, recipient [20]byte, virtualPrice *big.Int) (*ShareToken, error) {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrZeroShares
	}
	if virtualPrice == nil || virtualPrice.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	if amount > obj.CompanyShares {
		return nil, ErrCompanySharesUnderflow
	}
	stage := obj.CurrentStage()
	if stage == nil {
		return nil, ErrStageNotFound
	}
	obj.CompanyShares -= amount
	token := e.mintToken(obj, recipient, amount, virtualPrice, stage.ID)
	if err := e.storeObject(obj); err != nil {
		return nil, err
	}
	e.emit(newCompanyWithdrawEvent(obj.ID, token))
	return token.Clone(), nil
}
