package object

import "math/big"

// Object returns a deep copy of the full object record.
func (e *Engine) Object(objectID uint64) (*Object, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	return obj.Clone(), nil
}

// MaxShares returns the object's absolute share cap.
func (e *Engine) MaxShares(objectID uint64) (uint64, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return 0, err
	}
	return obj.MaxShares, nil
}

// Earnings returns the object-level distribution pool.
func (e *Engine) Earnings(objectID uint64) (*big.Int, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(obj.Earnings), nil
}

// CompanyShares returns the count of shares held by the company.
func (e *Engine) CompanyShares(objectID uint64) (uint64, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return 0, err
	}
	return obj.CompanyShares, nil
}

// IsSold reports whether the object reached its terminal sold state.
func (e *Engine) IsSold(objectID uint64) (bool, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return false, err
	}
	return obj.IsSold, nil
}

// IsActiveSale reports whether purchases are currently permitted.
func (e *Engine) IsActiveSale(objectID uint64) (bool, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return false, err
	}
	return obj.IsActiveSale, nil
}

// ReferralProgramEnabled reports the purchase-time referral toggle.
func (e *Engine) ReferralProgramEnabled(objectID uint64) (bool, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return false, err
	}
	return obj.ReferralProgramEnabled, nil
}

// CurrentStageID returns the id of the highest-numbered stage.
func (e *Engine) CurrentStageID(objectID uint64) (uint64, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return 0, err
	}
	stage := obj.CurrentStage()
	if stage == nil {
		return 0, ErrStageNotFound
	}
	return stage.ID, nil
}

// CurrentPriceOneShare returns the open stage's per-share USD price.
func (e *Engine) CurrentPriceOneShare(objectID uint64) (*big.Int, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	stage := obj.CurrentStage()
	if stage == nil {
		return nil, ErrStageNotFound
	}
	return cloneBigInt(stage.OneSharePrice), nil
}

// StageAvailableShares returns the unsold share count of a stage.
func (e *Engine) StageAvailableShares(objectID, stageID uint64) (uint64, error) {
	stage, err := e.stage(objectID, stageID)
	if err != nil {
		return 0, err
	}
	return stage.AvailableShares, nil
}

// StageSaleStopTimestamp returns the sale-stop deadline of a stage; zero
// means the sale is indefinite while active.
func (e *Engine) StageSaleStopTimestamp(objectID, stageID uint64) (int64, error) {
	stage, err := e.stage(objectID, stageID)
	if err != nil {
		return 0, err
	}
	return stage.SaleStopTimestamp, nil
}

// StageBoostedEarnings returns the retroactive earnings attributed to a
// stage.
func (e *Engine) StageBoostedEarnings(objectID, stageID uint64) (*big.Int, error) {
	stage, err := e.stage(objectID, stageID)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(stage.BoostedEarnings), nil
}

func (e *Engine) stage(objectID, stageID uint64) (*Stage, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	stage, ok := obj.StageByID(stageID)
	if !ok {
		return nil, ErrStageNotFound
	}
	return stage, nil
}

// Token returns a deep copy of a live share token.
func (e *Engine) Token(objectID, tokenID uint64) (*ShareToken, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	token, err := requireToken(obj, tokenID)
	if err != nil {
		return nil, err
	}
	return token.Clone(), nil
}

// TokenShares returns the share count represented by a live token.
func (e *Engine) TokenShares(objectID, tokenID uint64) (uint64, error) {
	token, err := e.Token(objectID, tokenID)
	if err != nil {
		return 0, err
	}
	return token.Shares, nil
}

// TokenBuyPrice returns the USD cost basis recorded for a live token.
func (e *Engine) TokenBuyPrice(objectID, tokenID uint64) (*big.Int, error) {
	token, err := e.Token(objectID, tokenID)
	if err != nil {
		return nil, err
	}
	return token.BuyPrice, nil
}

// TokenMintStage returns the stage a token's share balance was established
// in.
func (e *Engine) TokenMintStage(objectID, tokenID uint64) (uint64, error) {
	token, err := e.Token(objectID, tokenID)
	if err != nil {
		return 0, err
	}
	return token.MintStageID, nil
}

// OwnerOf returns the owner of a live token.
func (e *Engine) OwnerOf(objectID, tokenID uint64) ([20]byte, error) {
	token, err := e.Token(objectID, tokenID)
	if err != nil {
		return [20]byte{}, err
	}
	return token.Owner, nil
}

// BalanceOf counts the live tokens held by an owner.
func (e *Engine) BalanceOf(objectID uint64, owner [20]byte) (uint64, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return 0, err
	}
	var count uint64
	for _, token := range obj.Tokens {
		if token.Owner == owner {
			count++
		}
	}
	return count, nil
}

// RequireStageReady verifies a stage exists and has been closed.
func (e *Engine) RequireStageReady(objectID, stageID uint64) error {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	return requireStageReady(obj, stageID)
}

// RequireTokenReady verifies a token exists and its mint stage has been
// closed.
func (e *Engine) RequireTokenReady(objectID, tokenID uint64) error {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	token, err := requireToken(obj, tokenID)
	if err != nil {
		return err
	}
	return requireStageReady(obj, token.MintStageID)
}

// EstimateRewardsUSD computes the claimable USD value for a token:
// (earnings + boosted earnings of its mint stage) x shares / maxShares. The
// engine moves no funds for this call; vault collaborators pay claims from
// their own balances.
func (e *Engine) EstimateRewardsUSD(objectID, tokenID uint64) (*big.Int, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	token, err := requireToken(obj, tokenID)
	if err != nil {
		return nil, err
	}
	stage, ok := obj.StageByID(token.MintStageID)
	if !ok {
		return nil, ErrStageNotFound
	}
	pool := new(big.Int).Add(cloneBigInt(obj.Earnings), cloneBigInt(stage.BoostedEarnings))
	pool.Mul(pool, new(big.Int).SetUint64(token.Shares))
	return pool.Quo(pool, new(big.Int).SetUint64(obj.MaxShares)), nil
}

// VotingSellPrice returns the proposed sale price of a voting round.
func (e *Engine) VotingSellPrice(objectID, votingID uint64) (*big.Int, error) {
	voting, err := e.voting(objectID, votingID)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(voting.SellPrice), nil
}

// VotingExpiredTimestamp returns the expiry of a voting round.
func (e *Engine) VotingExpiredTimestamp(objectID, votingID uint64) (int64, error) {
	voting, err := e.voting(objectID, votingID)
	if err != nil {
		return 0, err
	}
	return voting.ExpiredTimestamp, nil
}

// VotingYesShares returns the accumulated approving weight of a round.
func (e *Engine) VotingYesShares(objectID, votingID uint64) (uint64, error) {
	voting, err := e.voting(objectID, votingID)
	if err != nil {
		return 0, err
	}
	return voting.YesShares, nil
}

// VotingNoShares returns the accumulated rejecting weight of a round.
func (e *Engine) VotingNoShares(objectID, votingID uint64) (uint64, error) {
	voting, err := e.voting(objectID, votingID)
	if err != nil {
		return 0, err
	}
	return voting.NoShares, nil
}

// TokenVoted reports whether a token already voted in a round.
func (e *Engine) TokenVoted(objectID, votingID, tokenID uint64) (bool, error) {
	voting, err := e.voting(objectID, votingID)
	if err != nil {
		return false, err
	}
	return voting.Voted[tokenID], nil
}

func (e *Engine) voting(objectID, votingID uint64) (*Voting, error) {
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	if votingID == 0 || votingID > uint64(len(obj.Votings)) {
		return nil, ErrVotingNotFound
	}
	return obj.Votings[votingID-1], nil
}
