package object

import (
	"testing"
)

func (env *testEnv) openVoting(t *testing.T) *Voting {
	t.Helper()
	voting, err := env.engine.CreateVoting(adminAddr, 1, usd(5_000), env.clock.now+86_400)
	if err != nil {
		t.Fatalf("create voting: %v", err)
	}
	return voting
}

func TestCreateVotingAuthorization(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	if _, err := env.engine.CreateVoting(userAddr, 1, usd(5_000), env.clock.now+3600); err != ErrOnlyAdministrator {
		t.Fatalf("user create: %v", err)
	}
	// Multisig passes the administrator check.
	if _, err := env.engine.CreateVoting(multisigAddr, 1, usd(5_000), env.clock.now+3600); err != nil {
		t.Fatalf("multisig create: %v", err)
	}
}

func TestCreateVotingValidation(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	if _, err := env.engine.CreateVoting(adminAddr, 1, nil, env.clock.now+3600); err != ErrZeroPrice {
		t.Fatalf("nil price: %v", err)
	}
	if _, err := env.engine.CreateVoting(adminAddr, 1, usd(5_000), env.clock.now); err != ErrVotingInvalidExpiry {
		t.Fatalf("past expiry: %v", err)
	}
	env.openVoting(t)
	if _, err := env.engine.CreateVoting(adminAddr, 1, usd(6_000), env.clock.now+3600); err != ErrVotingOpen {
		t.Fatalf("second open round: %v", err)
	}
}

func TestVoteTally(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	first := env.buyToken(t, userAddr, 5)
	second := env.buyToken(t, userAddr, 2)
	third := env.buyToken(t, user2Addr, 3)
	voting := env.openVoting(t)

	if err := env.engine.Vote(userAddr, 1, voting.ID, first.ID, true); err != nil {
		t.Fatalf("vote 1: %v", err)
	}
	if err := env.engine.Vote(userAddr, 1, voting.ID, second.ID, true); err != nil {
		t.Fatalf("vote 2: %v", err)
	}
	if err := env.engine.Vote(user2Addr, 1, voting.ID, third.ID, false); err != nil {
		t.Fatalf("vote 3: %v", err)
	}

	yes, _ := env.engine.VotingYesShares(1, voting.ID)
	no, _ := env.engine.VotingNoShares(1, voting.ID)
	if yes != 7 || no != 3 {
		t.Fatalf("tally yes=%d no=%d, want 7/3", yes, no)
	}

	if err := env.engine.Vote(userAddr, 1, voting.ID, first.ID, true); err != ErrTokenAlreadyVoted {
		t.Fatalf("double vote: %v", err)
	}
	if err := env.engine.Vote(user2Addr, 1, voting.ID, first.ID, true); err != ErrOnlyTokenOwner {
		t.Fatalf("foreign vote: %v", err)
	}
}

func TestVoteOnlyCurrentRound(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 5)
	first := env.openVoting(t)
	if err := env.engine.CloseVoting(adminAddr, 1, first.ID); err != nil {
		t.Fatalf("close round 1: %v", err)
	}
	env.clock.advance(1)
	second := env.openVoting(t)

	if err := env.engine.Vote(userAddr, 1, first.ID, token.ID, true); err != ErrVotingNotCurrent {
		t.Fatalf("vote on stale round: %v", err)
	}
	if err := env.engine.Vote(userAddr, 1, second.ID, token.ID, true); err != nil {
		t.Fatalf("vote on current round: %v", err)
	}
}

func TestVoteExpired(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 5)
	voting := env.openVoting(t)
	env.clock.advance(90_000)
	if err := env.engine.Vote(userAddr, 1, voting.ID, token.ID, true); err != ErrVotingExpired {
		t.Fatalf("vote after expiry: %v", err)
	}
}

func TestCloseVoting(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	voting := env.openVoting(t)

	if err := env.engine.CloseVoting(userAddr, 1, voting.ID); err != ErrOnlyAdministrator {
		t.Fatalf("user close: %v", err)
	}
	if err := env.engine.CloseVoting(adminAddr, 1, voting.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	expiry, _ := env.engine.VotingExpiredTimestamp(1, voting.ID)
	if expiry != env.clock.now {
		t.Fatalf("expiry = %d, want %d", expiry, env.clock.now)
	}
	if err := env.engine.CloseVoting(adminAddr, 1, voting.ID); err != ErrVotingExpired {
		t.Fatalf("double close: %v", err)
	}
}

func TestSplitChildVotesIndependently(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 10)
	if err := env.engine.CloseStage(multisigAddr, 1, 1); err != nil {
		t.Fatalf("close stage: %v", err)
	}
	voting := env.openVoting(t)

	if err := env.engine.Vote(userAddr, 1, voting.ID, token.ID, true); err != nil {
		t.Fatalf("vote parent: %v", err)
	}
	child, err := env.engine.SplitToken(userAddr, 1, token.ID, 4)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	// The parent token id already voted; the freshly minted child has not.
	if err := env.engine.Vote(userAddr, 1, voting.ID, token.ID, true); err != ErrTokenAlreadyVoted {
		t.Fatalf("parent revote: %v", err)
	}
	if err := env.engine.Vote(userAddr, 1, voting.ID, child.ID, true); err != nil {
		t.Fatalf("child vote: %v", err)
	}
	yes, _ := env.engine.VotingYesShares(1, voting.ID)
	if yes != 14 {
		t.Fatalf("yes = %d, want 14", yes)
	}
	voted, _ := env.engine.TokenVoted(1, voting.ID, child.ID)
	if !voted {
		t.Fatalf("child not marked voted")
	}
}
