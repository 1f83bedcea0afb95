package object

import (
	"encoding/hex"
	"math/big"
)

// Stage is a time-boxed slice of an object's share supply with its own price
// and optional sale-stop deadline. Ids are sequential from 1 and never reused.
type Stage struct {
	ID                uint64   `json:"id"`
	OneSharePrice     *big.Int `json:"oneSharePrice"`
	Allocated         uint64   `json:"allocated"`
	AvailableShares   uint64   `json:"availableShares"`
	SaleStopTimestamp int64    `json:"saleStopTimestamp"`
	BoostedEarnings   *big.Int `json:"boostedEarnings"`
	Closed            bool     `json:"closed"`
}

// Clone returns a deep copy of the stage.
func (s *Stage) Clone() *Stage {
	if s == nil {
		return nil
	}
	clone := *s
	if s.OneSharePrice != nil {
		clone.OneSharePrice = new(big.Int).Set(s.OneSharePrice)
	}
	if s.BoostedEarnings != nil {
		clone.BoostedEarnings = new(big.Int).Set(s.BoostedEarnings)
	}
	return &clone
}

// ShareToken is the NFT-style certificate for a share count bought (or
// company-assigned) within a specific stage.
type ShareToken struct {
	ID          uint64   `json:"id"`
	Owner       [20]byte `json:"owner"`
	Shares      uint64   `json:"shares"`
	BuyPrice    *big.Int `json:"buyPrice"`
	MintStageID uint64   `json:"mintStageId"`
}

// Clone returns a deep copy of the token.
func (t *ShareToken) Clone() *ShareToken {
	if t == nil {
		return nil
	}
	clone := *t
	if t.BuyPrice != nil {
		clone.BuyPrice = new(big.Int).Set(t.BuyPrice)
	}
	return &clone
}

// Voting is one sequential sale-approval round. Only the highest-numbered
// round may be voted on or closed.
type Voting struct {
	ID               uint64          `json:"id"`
	SellPrice        *big.Int        `json:"sellPrice"`
	ExpiredTimestamp int64           `json:"expiredTimestamp"`
	YesShares        uint64          `json:"yesShares"`
	NoShares         uint64          `json:"noShares"`
	Voted            map[uint64]bool `json:"voted"`
}

// Clone returns a deep copy of the voting round.
func (v *Voting) Clone() *Voting {
	if v == nil {
		return nil
	}
	clone := *v
	if v.SellPrice != nil {
		clone.SellPrice = new(big.Int).Set(v.SellPrice)
	}
	clone.Voted = make(map[uint64]bool, len(v.Voted))
	for id, voted := range v.Voted {
		clone.Voted[id] = voted
	}
	return &clone
}

// Object is the full state of one tokenized asset: stage lifecycle, live
// share tokens, personal price locks, voting rounds, and the earnings pool.
type Object struct {
	ID                     uint64                `json:"id"`
	Address                [20]byte              `json:"address"`
	MaxShares              uint64                `json:"maxShares"`
	StageSale              bool                  `json:"stageSale"`
	IsActiveSale           bool                  `json:"isActiveSale"`
	IsSold                 bool                  `json:"isSold"`
	CompanyShares          uint64                `json:"companyShares"`
	Earnings               *big.Int              `json:"earnings"`
	ReferralProgramEnabled bool                  `json:"referralProgramEnabled"`
	Stages                 []*Stage              `json:"stages"`
	Tokens                 map[uint64]*ShareToken `json:"tokens"`
	NextTokenID            uint64                `json:"nextTokenId"`
	PersonalPrices         map[string]*big.Int   `json:"personalPrices"`
	Votings                []*Voting             `json:"votings"`
	CreatedAt              int64                 `json:"createdAt"`
}

// Clone returns a deep copy of the object to avoid mutating shared pointers.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Earnings != nil {
		clone.Earnings = new(big.Int).Set(o.Earnings)
	}
	clone.Stages = make([]*Stage, len(o.Stages))
	for i, stage := range o.Stages {
		clone.Stages[i] = stage.Clone()
	}
	clone.Tokens = make(map[uint64]*ShareToken, len(o.Tokens))
	for id, token := range o.Tokens {
		clone.Tokens[id] = token.Clone()
	}
	clone.PersonalPrices = make(map[string]*big.Int, len(o.PersonalPrices))
	for addr, price := range o.PersonalPrices {
		if price == nil {
			continue
		}
		clone.PersonalPrices[addr] = new(big.Int).Set(price)
	}
	clone.Votings = make([]*Voting, len(o.Votings))
	for i, voting := range o.Votings {
		clone.Votings[i] = voting.Clone()
	}
	return &clone
}

// CurrentStage returns the highest-numbered stage, the only one that can be
// open for purchases.
func (o *Object) CurrentStage() *Stage {
	if o == nil || len(o.Stages) == 0 {
		return nil
	}
	return o.Stages[len(o.Stages)-1]
}

// StageByID resolves a stage by its sequential id.
func (o *Object) StageByID(id uint64) (*Stage, bool) {
	if o == nil || id == 0 || id > uint64(len(o.Stages)) {
		return nil, false
	}
	return o.Stages[id-1], true
}

// CurrentVoting returns the highest-numbered voting round, if any.
func (o *Object) CurrentVoting() *Voting {
	if o == nil || len(o.Votings) == 0 {
		return nil
	}
	return o.Votings[len(o.Votings)-1]
}

func (o *Object) allocatedShares() uint64 {
	var total uint64
	for _, stage := range o.Stages {
		total += stage.Allocated
	}
	return total
}

func (o *Object) personalPrice(addr [20]byte) *big.Int {
	if o == nil || o.PersonalPrices == nil {
		return nil
	}
	price, ok := o.PersonalPrices[hexAddr(addr)]
	if !ok || price == nil {
		return nil
	}
	return new(big.Int).Set(price)
}

func (o *Object) setPersonalPrice(addr [20]byte, price *big.Int) {
	if o.PersonalPrices == nil {
		o.PersonalPrices = make(map[string]*big.Int)
	}
	o.PersonalPrices[hexAddr(addr)] = new(big.Int).Set(price)
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}
