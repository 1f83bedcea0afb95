package gateway

import "brickshare/native/object"

type stageView struct {
	ID                uint64 `json:"id"`
	OneSharePrice     string `json:"oneSharePrice"`
	Allocated         uint64 `json:"allocated"`
	AvailableShares   uint64 `json:"availableShares"`
	SaleStopTimestamp int64  `json:"saleStopTimestamp"`
	BoostedEarnings   string `json:"boostedEarnings"`
	Closed            bool   `json:"closed"`
}

type tokenView struct {
	ID          uint64 `json:"id"`
	Owner       string `json:"owner"`
	Shares      uint64 `json:"shares"`
	BuyPrice    string `json:"buyPrice"`
	MintStageID uint64 `json:"mintStageId"`
}

type votingView struct {
	ID               uint64 `json:"id"`
	SellPrice        string `json:"sellPrice"`
	ExpiredTimestamp int64  `json:"expiredTimestamp"`
	YesShares        uint64 `json:"yesShares"`
	NoShares         uint64 `json:"noShares"`
}

type objectView struct {
	ID                     uint64       `json:"id"`
	Address                string       `json:"address"`
	MaxShares              uint64       `json:"maxShares"`
	StageSale              bool         `json:"stageSale"`
	IsActiveSale           bool         `json:"isActiveSale"`
	IsSold                 bool         `json:"isSold"`
	CompanyShares          uint64       `json:"companyShares"`
	Earnings               string       `json:"earnings"`
	ReferralProgramEnabled bool         `json:"referralProgramEnabled"`
	Stages                 []stageView  `json:"stages"`
	Tokens                 []tokenView  `json:"tokens"`
	Votings                []votingView `json:"votings"`
	CreatedAt              int64        `json:"createdAt"`
}

func newStageView(stage *object.Stage) stageView {
	return stageView{
		ID:                stage.ID,
		OneSharePrice:     bigString(stage.OneSharePrice),
		Allocated:         stage.Allocated,
		AvailableShares:   stage.AvailableShares,
		SaleStopTimestamp: stage.SaleStopTimestamp,
		BoostedEarnings:   bigString(stage.BoostedEarnings),
		Closed:            stage.Closed,
	}
}

func newTokenView(token *object.ShareToken) tokenView {
	return tokenView{
		ID:          token.ID,
		Owner:       hexAddress(token.Owner),
		Shares:      token.Shares,
		BuyPrice:    bigString(token.BuyPrice),
		MintStageID: token.MintStageID,
	}
}

func newVotingView(voting *object.Voting) votingView {
	return votingView{
		ID:               voting.ID,
		SellPrice:        bigString(voting.SellPrice),
		ExpiredTimestamp: voting.ExpiredTimestamp,
		YesShares:        voting.YesShares,
		NoShares:         voting.NoShares,
	}
}

func newObjectView(obj *object.Object) objectView {
	view := objectView{
		ID:                     obj.ID,
		Address:                hexAddress(obj.Address),
		MaxShares:              obj.MaxShares,
		StageSale:              obj.StageSale,
		IsActiveSale:           obj.IsActiveSale,
		IsSold:                 obj.IsSold,
		CompanyShares:          obj.CompanyShares,
		Earnings:               bigString(obj.Earnings),
		ReferralProgramEnabled: obj.ReferralProgramEnabled,
		Stages:                 make([]stageView, 0, len(obj.Stages)),
		Tokens:                 make([]tokenView, 0, len(obj.Tokens)),
		Votings:                make([]votingView, 0, len(obj.Votings)),
		CreatedAt:              obj.CreatedAt,
	}
	for _, stage := range obj.Stages {
		view.Stages = append(view.Stages, newStageView(stage))
	}
	for id := uint64(1); id < obj.NextTokenID; id++ {
		if token, ok := obj.Tokens[id]; ok {
			view.Tokens = append(view.Tokens, newTokenView(token))
		}
	}
	for _, voting := range obj.Votings {
		view.Votings = append(view.Votings, newVotingView(voting))
	}
	return view
}
