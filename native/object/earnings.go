package object

import "math/big"

// AddEarnings adds reference-currency value to the object's distribution
// pool.
func (e *Engine) AddEarnings(caller [20]byte, objectID uint64, amount *big.Int) error {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	if obj.IsSold {
		return ErrObjectSold
	}
	obj.Earnings = new(big.Int).Add(obj.Earnings, amount)
	if err := e.storeObject(obj); err != nil {
		return err
	}
	e.emit(newEarningsEvent(EventTypeEarningsAdded, obj.ID, amount, obj.Earnings))
	return nil
}

// SubEarnings removes value from the distribution pool, e.g. to correct a
// misattribution. Administrator-gated; the pool can never go negative.
func (e *Engine) SubEarnings(caller [20]byte, objectID uint64, amount *big.Int) error {
	if err := e.requireAdministrator(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	if obj.IsSold {
		return ErrObjectSold
	}
	if obj.Earnings == nil || obj.Earnings.Cmp(amount) < 0 {
		return ErrEarningsUnderflow
	}
	obj.Earnings = new(big.Int).Sub(obj.Earnings, amount)
	if err := e.storeObject(obj); err != nil {
		return err
	}
	e.emit(newEarningsEvent(EventTypeEarningsSubtracted, obj.ID, amount, obj.Earnings))
	return nil
}

// AddStageBoostedEarnings attributes retroactive earnings to specific
// stages. stageIDs and amounts are parallel arrays; tokens minted in a
// boosted stage receive its boost on top of the general pool.
func (e *Engine) AddStageBoostedEarnings(caller [20]byte, objectID uint64, stageIDs []uint64, amounts []*big.Int) error {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return err
	}
	if len(stageIDs) == 0 || len(stageIDs) != len(amounts) {
		return ErrLengthMismatch
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	if obj.IsSold {
		return ErrObjectSold
	}
	for i, stageID := range stageIDs {
		stage, ok := obj.StageByID(stageID)
		if !ok {
			return ErrStageNotFound
		}
		if amounts[i] == nil || amounts[i].Sign() <= 0 {
			return ErrInvalidAmount
		}
		stage.BoostedEarnings = new(big.Int).Add(stage.BoostedEarnings, amounts[i])
	}
	if err := e.storeObject(obj); err != nil {
		return err
	}
	for i, stageID := range stageIDs {
		e.emit(newStageBoostedEvent(obj.ID, stageID, amounts[i]))
	}
	return nil
}

// EnableReferralProgram turns referral notifications back on. Multisig-gated.
func (e *Engine) EnableReferralProgram(caller [20]byte, objectID uint64) error {
	if err := e.requireOwnersMultisig(caller); err != nil {
		return err
	}
	return e.setReferralProgram(objectID, true)
}

// DisableReferralProgram turns referral notifications off.
// Administrator-gated, so the program can be stopped without a multisig
// round-trip.
func (e *Engine) DisableReferralProgram(caller [20]byte, objectID uint64) error {
	if err := e.requireAdministrator(caller); err != nil {
		return err
	}
	return e.setReferralProgram(objectID, false)
}

func (e *Engine) setReferralProgram(objectID uint64, enabled bool) error {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	obj.ReferralProgramEnabled = enabled
	if err := e.storeObject(obj); err != nil {
		return err
	}
	if enabled {
		e.emit(newReferralToggleEvent(EventTypeReferralEnabled, obj.ID))
	} else {
		e.emit(newReferralToggleEvent(EventTypeReferralDisabled, obj.ID))
	}
	return nil
}
