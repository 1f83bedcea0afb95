package object

import (
	"math/big"
	"strconv"

	"brickshare/core/types"
)

const (
	EventTypeObjectCreated      = "object.created"
	EventTypeStageCreated       = "object.stage_created"
	EventTypeStageClosed        = "object.stage_closed"
	EventTypeSharesPurchased    = "object.shares_purchased"
	EventTypeTokenSplit         = "object.token_split"
	EventTypeTokenMerged        = "object.token_merged"
	EventTypeTokenExit          = "object.token_exit"
	EventTypeTokenTransferred   = "object.token_transferred"
	EventTypeCompanyBuyback     = "object.company_buyback"
	EventTypeCompanyWithdraw    = "object.company_withdraw"
	EventTypeEarningsAdded      = "object.earnings_added"
	EventTypeEarningsSubtracted = "object.earnings_subtracted"
	EventTypeStageBoosted       = "object.stage_boosted"
	EventTypeSold               = "object.sold"
	EventTypeSaleClosed         = "object.sale_closed"
	EventTypeVotingCreated      = "object.voting_created"
	EventTypeVotingClosed       = "object.voting_closed"
	EventTypeVoteCast           = "object.vote_cast"
	EventTypeReferralEnabled    = "object.referral_enabled"
	EventTypeReferralDisabled   = "object.referral_disabled"
)

type objectEvent struct {
	evt *types.Event
}

func (e objectEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

// Event exposes the underlying typed event payload.
func (e objectEvent) Event() *types.Event { return e.evt }

func newEvent(eventType string, objectID uint64, attrs map[string]string) *types.Event {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	attrs["objectId"] = strconv.FormatUint(objectID, 10)
	return &types.Event{Type: eventType, Attributes: attrs}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func newObjectCreatedEvent(o *Object) *types.Event {
	return newEvent(EventTypeObjectCreated, o.ID, map[string]string{
		"address":   hexAddr(o.Address),
		"maxShares": strconv.FormatUint(o.MaxShares, 10),
		"stageSale": strconv.FormatBool(o.StageSale),
	})
}

func newStageCreatedEvent(objectID uint64, stage *Stage) *types.Event {
	return newEvent(EventTypeStageCreated, objectID, map[string]string{
		"stageId":         strconv.FormatUint(stage.ID, 10),
		"availableShares": strconv.FormatUint(stage.AvailableShares, 10),
		"oneSharePrice":   bigString(stage.OneSharePrice),
	})
}

func newStageClosedEvent(objectID uint64, stage *Stage, movedShares uint64) *types.Event {
	return newEvent(EventTypeStageClosed, objectID, map[string]string{
		"stageId":     strconv.FormatUint(stage.ID, 10),
		"movedShares": strconv.FormatUint(movedShares, 10),
	})
}

func newSharesPurchasedEvent(objectID uint64, token *ShareToken, asset string, assetAmount *big.Int) *types.Event {
	return newEvent(EventTypeSharesPurchased, objectID, map[string]string{
		"tokenId":     strconv.FormatUint(token.ID, 10),
		"buyer":       hexAddr(token.Owner),
		"shares":      strconv.FormatUint(token.Shares, 10),
		"usdAmount":   bigString(token.BuyPrice),
		"asset":       asset,
		"assetAmount": bigString(assetAmount),
		"stageId":     strconv.FormatUint(token.MintStageID, 10),
	})
}

func newTokenSplitEvent(objectID uint64, left, right *ShareToken) *types.Event {
	return newEvent(EventTypeTokenSplit, objectID, map[string]string{
		"leftTokenId":  strconv.FormatUint(left.ID, 10),
		"rightTokenId": strconv.FormatUint(right.ID, 10),
		"leftShares":   strconv.FormatUint(left.Shares, 10),
		"rightShares":  strconv.FormatUint(right.Shares, 10),
	})
}

func newTokenMergedEvent(objectID uint64, merged *ShareToken, leftID, rightID uint64) *types.Event {
	return newEvent(EventTypeTokenMerged, objectID, map[string]string{
		"tokenId":      strconv.FormatUint(merged.ID, 10),
		"leftTokenId":  strconv.FormatUint(leftID, 10),
		"rightTokenId": strconv.FormatUint(rightID, 10),
		"shares":       strconv.FormatUint(merged.Shares, 10),
	})
}

func newTokenExitEvent(objectID uint64, token *ShareToken, asset string, assetAmount *big.Int) *types.Event {
	return newEvent(EventTypeTokenExit, objectID, map[string]string{
		"tokenId":     strconv.FormatUint(token.ID, 10),
		"owner":       hexAddr(token.Owner),
		"shares":      strconv.FormatUint(token.Shares, 10),
		"asset":       asset,
		"assetAmount": bigString(assetAmount),
	})
}

func newTokenTransferredEvent(objectID, tokenID uint64, from, to [20]byte) *types.Event {
	return newEvent(EventTypeTokenTransferred, objectID, map[string]string{
		"tokenId": strconv.FormatUint(tokenID, 10),
		"from":    hexAddr(from),
		"to":      hexAddr(to),
	})
}

func newCompanyBuybackEvent(objectID, shares, companyShares uint64) *types.Event {
	return newEvent(EventTypeCompanyBuyback, objectID, map[string]string{
		"shares":        strconv.FormatUint(shares, 10),
		"companyShares": strconv.FormatUint(companyShares, 10),
	})
}

func newCompanyWithdrawEvent(objectID uint64, token *ShareToken) *types.Event {
	return newEvent(EventTypeCompanyWithdraw, objectID, map[string]string{
		"tokenId":      strconv.FormatUint(token.ID, 10),
		"recipient":    hexAddr(token.Owner),
		"shares":       strconv.FormatUint(token.Shares, 10),
		"virtualPrice": bigString(token.BuyPrice),
	})
}

func newEarningsEvent(eventType string, objectID uint64, amount, total *big.Int) *types.Event {
	return newEvent(eventType, objectID, map[string]string{
		"amount":   bigString(amount),
		"earnings": bigString(total),
	})
}

func newStageBoostedEvent(objectID, stageID uint64, amount *big.Int) *types.Event {
	return newEvent(EventTypeStageBoosted, objectID, map[string]string{
		"stageId": strconv.FormatUint(stageID, 10),
		"amount":  bigString(amount),
	})
}

func newSoldEvent(objectID uint64, price *big.Int) *types.Event {
	return newEvent(EventTypeSold, objectID, map[string]string{
		"price": bigString(price),
	})
}

func newSaleClosedEvent(objectID uint64) *types.Event {
	return newEvent(EventTypeSaleClosed, objectID, nil)
}

func newVotingCreatedEvent(objectID uint64, voting *Voting) *types.Event {
	return newEvent(EventTypeVotingCreated, objectID, map[string]string{
		"votingId":         strconv.FormatUint(voting.ID, 10),
		"sellPrice":        bigString(voting.SellPrice),
		"expiredTimestamp": strconv.FormatInt(voting.ExpiredTimestamp, 10),
	})
}

func newVotingClosedEvent(objectID uint64, voting *Voting) *types.Event {
	return newEvent(EventTypeVotingClosed, objectID, map[string]string{
		"votingId":  strconv.FormatUint(voting.ID, 10),
		"yesShares": strconv.FormatUint(voting.YesShares, 10),
		"noShares":  strconv.FormatUint(voting.NoShares, 10),
	})
}

func newVoteCastEvent(objectID, votingID, tokenID, weight uint64, inFavor bool) *types.Event {
	return newEvent(EventTypeVoteCast, objectID, map[string]string{
		"votingId": strconv.FormatUint(votingID, 10),
		"tokenId":  strconv.FormatUint(tokenID, 10),
		"shares":   strconv.FormatUint(weight, 10),
		"inFavor":  strconv.FormatBool(inFavor),
	})
}

func newReferralToggleEvent(eventType string, objectID uint64) *types.Event {
	return newEvent(eventType, objectID, nil)
}
