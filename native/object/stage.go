package object

import "math/big"

// CreateNewStage opens the next sequential stage for a stage-sale object.
// The previous stage must already be closed; the new allocation must fit
// under the object's share cap.
func (e *Engine) CreateNewStage(caller [20]byte, objectID, shares uint64, saleStopTimestamp int64, oneSharePrice *big.Int) (*Stage, error) {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return nil, err
	}
	if shares == 0 {
		return nil, ErrZeroShares
	}
	if oneSharePrice == nil || oneSharePrice.Sign() <= 0 {
		return nil, ErrZeroPrice
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	if obj.IsSold {
		return nil, ErrObjectSold
	}
	if !obj.StageSale {
		return nil, ErrFullSaleStages
	}
	current := obj.CurrentStage()
	if current != nil && !current.Closed {
		return nil, ErrStageOpen
	}
	if shares > obj.MaxShares-obj.allocatedShares() {
		return nil, ErrMaxSharesExceeded
	}
	stage := &Stage{
		ID:                uint64(len(obj.Stages)) + 1,
		OneSharePrice:     cloneBigInt(oneSharePrice),
		Allocated:         shares,
		AvailableShares:   shares,
		SaleStopTimestamp: saleStopTimestamp,
		BoostedEarnings:   big.NewInt(0),
	}
	obj.Stages = append(obj.Stages, stage)
	if err := e.storeObject(obj); err != nil {
		return nil, err
	}
	e.emit(newStageCreatedEvent(obj.ID, stage))
	return stage.Clone(), nil
}

// CloseStage marks a stage closed and moves its unsold shares into company
// ownership. Closed stages can no longer be purchased from; their tokens
// become eligible for split, merge, and exit gating.
func (e *Engine) CloseStage(caller [20]byte, objectID, stageID uint64) error {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return err
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	stage, ok := obj.StageByID(stageID)
	if !ok {
		return ErrStageNotFound
	}
	if stage.Closed {
		return ErrStageClosed
	}
	moved := stage.AvailableShares
	obj.CompanyShares += moved
	stage.AvailableShares = 0
	stage.Closed = true
	if err := e.storeObject(obj); err != nil {
		return err
	}
	e.emit(newStageClosedEvent(obj.ID, stage, moved))
	return nil
}

// SetStagePriceOneShare updates the per-share USD price of any existing
// stage. Rejected once the object is sold: the stage price feeds exit
// payouts.
func (e *Engine) SetStagePriceOneShare(caller [20]byte, objectID, stageID uint64, price *big.Int) error {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return err
	}
	if price == nil || price.Sign() <= 0 {
		return ErrZeroPrice
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	if obj.IsSold {
		return ErrObjectSold
	}
	stage, ok := obj.StageByID(stageID)
	if !ok {
		return ErrStageNotFound
	}
	stage.OneSharePrice = cloneBigInt(price)
	return e.storeObject(obj)
}

// SetSaleStopTimestamp updates the sale-stop deadline of any existing stage.
// Zero clears the deadline, making the stage's sale indefinite again.
func (e *Engine) SetSaleStopTimestamp(caller [20]byte, objectID, stageID uint64, timestamp int64) error {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return err
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	if obj.IsSold {
		return ErrObjectSold
	}
	stage, ok := obj.StageByID(stageID)
	if !ok {
		return ErrStageNotFound
	}
	stage.SaleStopTimestamp = timestamp
	return e.storeObject(obj)
}

// CloseSale deactivates purchases and stamps the open stage's sale-stop
// deadline to now when unset, enabling immediate exits.
func (e *Engine) CloseSale(caller [20]byte, objectID uint64) error {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return err
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	obj.IsActiveSale = false
	if stage := obj.CurrentStage(); stage != nil && stage.SaleStopTimestamp == 0 {
		stage.SaleStopTimestamp = e.now()
	}
	if err := e.storeObject(obj); err != nil {
		return err
	}
	e.emit(newSaleClosedEvent(obj.ID))
	return nil
}

// SellObjectAndClose records the sale of the underlying asset: the sale
// price joins the earnings pool and the object becomes a pure payout
// vehicle. Purchases and stage mutation are rejected afterwards; exits and
// reward claims remain valid.
func (e *Engine) SellObjectAndClose(caller [20]byte, objectID uint64, price *big.Int) error {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return err
	}
	if price == nil || price.Sign() < 0 {
		return ErrInvalidAmount
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	if obj.IsSold {
		return ErrObjectSold
	}
	obj.Earnings = new(big.Int).Add(obj.Earnings, price)
	obj.IsSold = true
	obj.IsActiveSale = false
	if stage := obj.CurrentStage(); stage != nil && stage.SaleStopTimestamp == 0 {
		stage.SaleStopTimestamp = e.now()
	}
	if err := e.storeObject(obj); err != nil {
		return err
	}
	e.emit(newSoldEvent(obj.ID, price))
	return nil
}
