package object

import "errors"

var (
	ErrNilState       = errors.New("object engine: state not configured")
	ErrNilPricer      = errors.New("object engine: pricer not configured")
	ErrNilAuthority   = errors.New("object engine: role authority not configured")
	ErrNilTreasury    = errors.New("object engine: treasury not configured")
	ErrObjectExists   = errors.New("object: already exists")
	ErrObjectNotFound = errors.New("object: not found")

	ErrPaused             = errors.New("object: paused")
	ErrOnlyOwnersMultisig = errors.New("object: only owners multisig")
	ErrOnlyAdministrator  = errors.New("object: only administrator")
	ErrOnlyFactory        = errors.New("object: only factory")
	ErrOnlyTokenOwner     = errors.New("object: only token owner")

	ErrSaleInactive      = errors.New("object: sale inactive")
	ErrObjectSold        = errors.New("object: already sold")
	ErrStageNotFound     = errors.New("object: stage not exists")
	ErrStageNotReady     = errors.New("object: stage not ready")
	ErrStageClosed       = errors.New("object: stage already closed")
	ErrStageOpen         = errors.New("object: previous stage still open")
	ErrStageExhausted    = errors.New("object: stage available shares exceeded")
	ErrFullSaleStages    = errors.New("object: full sale object has a single stage")
	ErrMaxSharesExceeded = errors.New("object: max shares exceeded")

	ErrZeroShares             = errors.New("object: shares is zero")
	ErrZeroPrice              = errors.New("object: one share price is zero")
	ErrInvalidAmount          = errors.New("object: amount must be positive")
	ErrSlippageExceeded       = errors.New("object: max asset amount exceeded")
	ErrInsufficientBalance    = errors.New("object: insufficient balance")
	ErrLengthMismatch         = errors.New("object: stage ids and amounts length mismatch")
	ErrEarningsUnderflow      = errors.New("object: earnings underflow")
	ErrCompanySharesUnderflow = errors.New("object: company shares underflow")

	ErrTokenNotFound      = errors.New("object: token not exists")
	ErrInvalidRecipient   = errors.New("object: recipient is zero address")
	ErrSplitShares        = errors.New("object: split shares out of range")
	ErrMergeStageMismatch = errors.New("object: merge stage mismatch")
	ErrActiveSaleExit     = errors.New("object: cannot exit with active sale")

	ErrVotingNotFound      = errors.New("object: voting not exists")
	ErrVotingNotCurrent    = errors.New("object: can close or vote only current voting")
	ErrVotingExpired       = errors.New("object: voting expired")
	ErrVotingOpen          = errors.New("object: current voting still open")
	ErrVotingInvalidExpiry = errors.New("object: voting expiry in the past")
	ErrTokenAlreadyVoted   = errors.New("object: token already voted")
)
