package gateway

import (
	"net/http"

	"brickshare/native/factory"
	"brickshare/native/object"
)

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	ids, err := s.lister.ListObjectIDs()
	if err != nil {
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	writeJSON(w, http.StatusOK, map[string][]uint64{"objects": ids})
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	objectID, err := uintParam(r, "objectID")
	if err != nil {
		writeError(w, err)
		return
	}
	obj, err := s.engine.Object(objectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newObjectView(obj))
}

func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	objectID, err := uintParam(r, "objectID")
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := parseAddress(r.URL.Query().Get("user"))
	if err != nil {
		writeError(w, err)
		return
	}
	price, err := s.engine.PriceForUser(objectID, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"oneSharePrice": bigString(price)})
}

func (s *Server) handleGetStage(w http.ResponseWriter, r *http.Request) {
	objectID, err := uintParam(r, "objectID")
	if err != nil {
		writeError(w, err)
		return
	}
	stageID, err := uintParam(r, "stageID")
	if err != nil {
		writeError(w, err)
		return
	}
	obj, err := s.engine.Object(objectID)
	if err != nil {
		writeError(w, err)
		return
	}
	stage, ok := obj.StageByID(stageID)
	if !ok {
		writeError(w, object.ErrStageNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newStageView(stage))
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	objectID, err := uintParam(r, "objectID")
	if err != nil {
		writeError(w, err)
		return
	}
	tokenID, err := uintParam(r, "tokenID")
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.engine.Token(objectID, tokenID)
	if err != nil {
		writeError(w, err)
		return
	}
	rewards, err := s.engine.EstimateRewardsUSD(objectID, tokenID)
	if err != nil {
		writeError(w, err)
		return
	}
	response := struct {
		tokenView
		RewardsUSD   string `json:"rewardsUsd"`
		ClaimableUSD string `json:"claimableUsd,omitempty"`
	}{tokenView: newTokenView(token), RewardsUSD: bigString(rewards)}
	if s.pool != nil {
		claimable, err := s.pool.EstimateClaim(objectID, tokenID)
		if err != nil {
			writeError(w, err)
			return
		}
		response.ClaimableUSD = bigString(claimable)
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetVoting(w http.ResponseWriter, r *http.Request) {
	objectID, err := uintParam(r, "objectID")
	if err != nil {
		writeError(w, err)
		return
	}
	votingID, err := uintParam(r, "votingID")
	if err != nil {
		writeError(w, err)
		return
	}
	sellPrice, err := s.engine.VotingSellPrice(objectID, votingID)
	if err != nil {
		writeError(w, err)
		return
	}
	expiry, err := s.engine.VotingExpiredTimestamp(objectID, votingID)
	if err != nil {
		writeError(w, err)
		return
	}
	yes, err := s.engine.VotingYesShares(objectID, votingID)
	if err != nil {
		writeError(w, err)
		return
	}
	no, err := s.engine.VotingNoShares(objectID, votingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, votingView{
		ID:               votingID,
		SellPrice:        bigString(sellPrice),
		ExpiredTimestamp: expiry,
		YesShares:        yes,
		NoShares:         no,
	})
}

func (s *Server) handleReferralRewards(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chiURLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	pending, err := s.program.PendingReward(addr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"pendingUsd": bigString(pending)})
}

func (s *Server) handleCreateObject(w http.ResponseWriter, r *http.Request) {
	caller, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		MaxShares              uint64 `json:"maxShares"`
		OneSharePrice          string `json:"oneSharePrice"`
		StageSale              bool   `json:"stageSale"`
		InitialStageShares     uint64 `json:"initialStageShares"`
		SaleStopTimestamp      int64  `json:"saleStopTimestamp"`
		ReferralProgramEnabled bool   `json:"referralProgramEnabled"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	price, err := parseBig(req.OneSharePrice)
	if err != nil {
		writeError(w, err)
		return
	}
	spec := factory.ObjectSpec{
		MaxShares:              req.MaxShares,
		OneSharePrice:          price,
		SaleStopTimestamp:      req.SaleStopTimestamp,
		ReferralProgramEnabled: req.ReferralProgramEnabled,
	}
	if req.StageSale {
		obj, err := s.factory.CreateStageSaleObject(caller, spec, req.InitialStageShares)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newObjectView(obj))
		return
	}
	obj, err := s.factory.CreateFullSaleObject(caller, spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newObjectView(obj))
}

func (s *Server) handleBuyShares(w http.ResponseWriter, r *http.Request) {
	caller, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	objectID, err := uintParam(r, "objectID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Shares         uint64 `json:"shares"`
		Asset          string `json:"asset"`
		MaxAssetAmount string `json:"maxAssetAmount"`
		Referrer       string `json:"referrer,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	maxAmount, err := parseBig(req.MaxAssetAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	var referrer [20]byte
	if req.Referrer != "" {
		if referrer, err = parseAddress(req.Referrer); err != nil {
			writeError(w, err)
			return
		}
	}
	token, err := s.engine.BuyShares(caller, objectID, req.Shares, req.Asset, maxAmount, referrer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTokenView(token))
}

func (s *Server) handleCloseSale(w http.ResponseWriter, r *http.Request) {
	s.objectAction(w, r, func(caller [20]byte, objectID uint64) error {
		return s.engine.CloseSale(caller, objectID)
	})
}

func (s *Server) handleSellObject(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	var req struct {
		Price string `json:"price"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	price, err := parseBig(req.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.SellObjectAndClose(caller, objectID, price); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sold"})
}

func (s *Server) handleCreateStage(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	var req struct {
		Shares            uint64 `json:"shares"`
		OneSharePrice     string `json:"oneSharePrice"`
		SaleStopTimestamp int64  `json:"saleStopTimestamp"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	price, err := parseBig(req.OneSharePrice)
	if err != nil {
		writeError(w, err)
		return
	}
	stage, err := s.engine.CreateNewStage(caller, objectID, req.Shares, req.SaleStopTimestamp, price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newStageView(stage))
}

func (s *Server) handleCloseStage(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	stageID, err := uintParam(r, "stageID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.CloseStage(caller, objectID, stageID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleSetStagePrice(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	stageID, err := uintParam(r, "stageID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		OneSharePrice string `json:"oneSharePrice"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	price, err := parseBig(req.OneSharePrice)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.SetStagePriceOneShare(caller, objectID, stageID, price); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleSetSaleStop(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	stageID, err := uintParam(r, "stageID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.SetSaleStopTimestamp(caller, objectID, stageID, req.Timestamp); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleAddEarnings(w http.ResponseWriter, r *http.Request) {
	s.earningsAction(w, r, s.engine.AddEarnings)
}

func (s *Server) handleSubEarnings(w http.ResponseWriter, r *http.Request) {
	s.earningsAction(w, r, s.engine.SubEarnings)
}

func (s *Server) handleBoostEarnings(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	var req struct {
		StageIDs []uint64 `json:"stageIds"`
		Amounts  []string `json:"amounts"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	parsed, err := parseBigSlice(req.Amounts)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.AddStageBoostedEarnings(caller, objectID, req.StageIDs, parsed); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "boosted"})
}

func (s *Server) handleCompanyBuy(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount uint64 `json:"amount"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	consumed, err := s.engine.BuySharesForCompany(caller, objectID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"consumed": consumed})
}

func (s *Server) handleCompanyWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount       uint64 `json:"amount"`
		Recipient    string `json:"recipient"`
		VirtualPrice string `json:"virtualPrice"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	recipient, err := parseAddress(req.Recipient)
	if err != nil {
		writeError(w, err)
		return
	}
	virtualPrice, err := parseBig(req.VirtualPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.engine.WithdrawCompanyShares(caller, objectID, req.Amount, recipient, virtualPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTokenView(token))
}

func (s *Server) handleEnableReferral(w http.ResponseWriter, r *http.Request) {
	s.objectAction(w, r, func(caller [20]byte, objectID uint64) error {
		return s.engine.EnableReferralProgram(caller, objectID)
	})
}

func (s *Server) handleDisableReferral(w http.ResponseWriter, r *http.Request) {
	s.objectAction(w, r, func(caller [20]byte, objectID uint64) error {
		return s.engine.DisableReferralProgram(caller, objectID)
	})
}

func (s *Server) handleCreateVoting(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	var req struct {
		SellPrice        string `json:"sellPrice"`
		ExpiredTimestamp int64  `json:"expiredTimestamp"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sellPrice, err := parseBig(req.SellPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	voting, err := s.engine.CreateVoting(caller, objectID, sellPrice, req.ExpiredTimestamp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newVotingView(voting))
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	votingID, err := uintParam(r, "votingID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		TokenID uint64 `json:"tokenId"`
		InFavor bool   `json:"inFavor"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.Vote(caller, objectID, votingID, req.TokenID, req.InFavor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "voted"})
}

func (s *Server) handleCloseVoting(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	votingID, err := uintParam(r, "votingID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.CloseVoting(caller, objectID, votingID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleSplitToken(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	tokenID, err := uintParam(r, "tokenID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		RightShares uint64 `json:"rightShares"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, err := s.engine.SplitToken(caller, objectID, tokenID, req.RightShares)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTokenView(token))
}

func (s *Server) handleMergeTokens(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	var req struct {
		LeftID  uint64 `json:"leftId"`
		RightID uint64 `json:"rightId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, err := s.engine.MergeTokens(caller, objectID, req.LeftID, req.RightID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTokenView(token))
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	s.tokenAssetAction(w, r, func(caller [20]byte, objectID, tokenID uint64, asset string) (string, error) {
		amount, err := s.engine.Exit(caller, objectID, tokenID, asset)
		if err != nil {
			return "", err
		}
		return bigString(amount), nil
	})
}

func (s *Server) handleTransferToken(w http.ResponseWriter, r *http.Request) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	tokenID, err := uintParam(r, "tokenID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		To string `json:"to"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	to, err := parseAddress(req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.TransferToken(caller, objectID, tokenID, to); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

func (s *Server) handleClaimEarnings(w http.ResponseWriter, r *http.Request) {
	s.tokenAssetAction(w, r, func(caller [20]byte, objectID, tokenID uint64, asset string) (string, error) {
		amount, err := s.pool.Claim(caller, objectID, tokenID, asset)
		if err != nil {
			return "", err
		}
		return bigString(amount), nil
	})
}

func (s *Server) handleBuyback(w http.ResponseWriter, r *http.Request) {
	s.tokenAssetAction(w, r, func(caller [20]byte, objectID, tokenID uint64, asset string) (string, error) {
		amount, err := s.fund.Sell(caller, objectID, tokenID, asset)
		if err != nil {
			return "", err
		}
		return bigString(amount), nil
	})
}

func (s *Server) handleClaimReferral(w http.ResponseWriter, r *http.Request) {
	caller, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Asset string `json:"asset"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	amount, err := s.program.Claim(caller, req.Asset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"assetAmount": bigString(amount)})
}
