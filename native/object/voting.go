package object

import "math/big"

// CreateVoting opens the next sequential sale-approval round. Only one round
// may be open at a time; the previous round must have expired or been
// closed.
func (e *Engine) CreateVoting(caller [20]byte, objectID uint64, sellPrice *big.Int, expiredTimestamp int64) (*Voting, error) {
	if err := e.requireAdministrator(caller); err != nil {
		return nil, err
	}
	if sellPrice == nil || sellPrice.Sign() <= 0 {
		return nil, ErrZeroPrice
	}
	if expiredTimestamp <= e.now() {
		return nil, ErrVotingInvalidExpiry
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return nil, err
	}
	if current := obj.CurrentVoting(); current != nil && e.now() < current.ExpiredTimestamp {
		return nil, ErrVotingOpen
	}
	voting := &Voting{
		ID:               uint64(len(obj.Votings)) + 1,
		SellPrice:        cloneBigInt(sellPrice),
		ExpiredTimestamp: expiredTimestamp,
		Voted:            make(map[uint64]bool),
	}
	obj.Votings = append(obj.Votings, voting)
	if err := e.storeObject(obj); err != nil {
		return nil, err
	}
	e.emit(newVotingCreatedEvent(obj.ID, voting))
	return voting.Clone(), nil
}

// Vote casts the token's weight in the current round. A token votes at most
// once per round, weighted by its share count at vote time. Tokens minted
// after the vote (split children, merge results) start unvoted; the one-vote
// rule is strictly per token id per round.
func (e *Engine) Vote(caller [20]byte, objectID, votingID, tokenID uint64, inFavor bool) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	voting := obj.CurrentVoting()
	if voting == nil {
		return ErrVotingNotFound
	}
	if voting.ID != votingID {
		return ErrVotingNotCurrent
	}
	if e.now() >= voting.ExpiredTimestamp {
		return ErrVotingExpired
	}
	token, err := requireToken(obj, tokenID)
	if err != nil {
		return err
	}
	if token.Owner != caller {
		return ErrOnlyTokenOwner
	}
	if voting.Voted[tokenID] {
		return ErrTokenAlreadyVoted
	}
	voting.Voted[tokenID] = true
	if inFavor {
		voting.YesShares += token.Shares
	} else {
		voting.NoShares += token.Shares
	}
	if err := e.storeObject(obj); err != nil {
		return err
	}
	e.emit(newVoteCastEvent(obj.ID, votingID, tokenID, token.Shares, inFavor))
	return nil
}

// CloseVoting finalises the current round by stamping its expiry to now. The
// tally triggers no engine action; interpreting the result is a governance
// decision made elsewhere.
func (e *Engine) CloseVoting(caller [20]byte, objectID, votingID uint64) error {
	if err := e.requireAdministrator(caller); err != nil {
		return err
	}
	obj, err := e.loadObject(objectID)
	if err != nil {
		return err
	}
	voting := obj.CurrentVoting()
	if voting == nil {
		return ErrVotingNotFound
	}
	if voting.ID != votingID {
		return ErrVotingNotCurrent
	}
	if e.now() >= voting.ExpiredTimestamp {
		return ErrVotingExpired
	}
	voting.ExpiredTimestamp = e.now()
	if err := e.storeObject(obj); err != nil {
		return err
	}
	e.emit(newVotingClosedEvent(obj.ID, voting))
	return nil
}
