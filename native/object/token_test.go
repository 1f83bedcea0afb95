package object

import (
	"math/big"
	"testing"
)

func (env *testEnv) buyToken(t *testing.T, buyer [20]byte, shares uint64) *ShareToken {
	t.Helper()
	env.state.fund(buyer, "USDT", usdt(1_000_000))
	token, err := env.engine.BuyShares(buyer, 1, shares, "USDT", maxUint(), [20]byte{})
	if err != nil {
		t.Fatalf("buy %d shares: %v", shares, err)
	}
	return token
}

func TestSplitRequiresClosedStage(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 10)

	if _, err := env.engine.SplitToken(userAddr, 1, token.ID, 4); err != ErrStageNotReady {
		t.Fatalf("split on open stage: %v", err)
	}
}

func TestSplitMergeRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 10)
	if err := env.engine.CloseStage(multisigAddr, 1, 1); err != nil {
		t.Fatalf("close stage: %v", err)
	}

	right, err := env.engine.SplitToken(userAddr, 1, token.ID, 4)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if right.Shares != 4 || right.BuyPrice.Cmp(usd(40)) != 0 || right.MintStageID != 1 {
		t.Fatalf("right token mismatch: %+v", right)
	}
	left, err := env.engine.Token(1, token.ID)
	if err != nil {
		t.Fatalf("left token: %v", err)
	}
	if left.Shares != 6 || left.BuyPrice.Cmp(usd(60)) != 0 {
		t.Fatalf("left token mismatch: %+v", left)
	}
	env.checkInventory(t, 1)

	merged, err := env.engine.MergeTokens(userAddr, 1, left.ID, right.ID)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Shares != 10 || merged.BuyPrice.Cmp(usd(100)) != 0 || merged.MintStageID != 1 {
		t.Fatalf("merged token mismatch: %+v", merged)
	}
	if _, err := env.engine.Token(1, left.ID); err != ErrTokenNotFound {
		t.Fatalf("left survived merge: %v", err)
	}
	if _, err := env.engine.Token(1, right.ID); err != ErrTokenNotFound {
		t.Fatalf("right survived merge: %v", err)
	}
	env.checkInventory(t, 1)
}

func TestSplitRemainderStaysOnOriginal(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 3)
	if err := env.engine.CloseStage(multisigAddr, 1, 1); err != nil {
		t.Fatalf("close stage: %v", err)
	}

	// 30 USD over 3 shares split 1 off: floor(30*1/3)=10 right, 20 left.
	right, err := env.engine.SplitToken(userAddr, 1, token.ID, 1)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	left, _ := env.engine.Token(1, token.ID)
	sum := new(big.Int).Add(left.BuyPrice, right.BuyPrice)
	if sum.Cmp(usd(30)) != 0 {
		t.Fatalf("split prices sum to %s, want %s", sum, usd(30))
	}
}

func TestSplitShareRange(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 10)
	if err := env.engine.CloseStage(multisigAddr, 1, 1); err != nil {
		t.Fatalf("close stage: %v", err)
	}
	if _, err := env.engine.SplitToken(userAddr, 1, token.ID, 0); err != ErrSplitShares {
		t.Fatalf("zero right shares: %v", err)
	}
	if _, err := env.engine.SplitToken(userAddr, 1, token.ID, 10); err != ErrSplitShares {
		t.Fatalf("full right shares: %v", err)
	}
	if _, err := env.engine.SplitToken(user2Addr, 1, token.ID, 4); err != ErrOnlyTokenOwner {
		t.Fatalf("foreign split: %v", err)
	}
}

func TestMergeStageMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.createStageSaleObject(t, 100, 40, usd(10))
	first := env.buyToken(t, userAddr, 10)
	if err := env.engine.CloseStage(multisigAddr, 1, 1); err != nil {
		t.Fatalf("close stage 1: %v", err)
	}
	if _, err := env.engine.CreateNewStage(multisigAddr, 1, 30, 0, usd(12)); err != nil {
		t.Fatalf("create stage 2: %v", err)
	}
	second := env.buyToken(t, userAddr, 5)
	if err := env.engine.CloseStage(multisigAddr, 1, 2); err != nil {
		t.Fatalf("close stage 2: %v", err)
	}

	if _, err := env.engine.MergeTokens(userAddr, 1, first.ID, second.ID); err != ErrMergeStageMismatch {
		t.Fatalf("cross-stage merge: %v", err)
	}
}

func TestMergeOwnershipChecks(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	mine := env.buyToken(t, userAddr, 10)
	theirs := env.buyToken(t, user2Addr, 5)
	if err := env.engine.CloseStage(multisigAddr, 1, 1); err != nil {
		t.Fatalf("close stage: %v", err)
	}
	if _, err := env.engine.MergeTokens(userAddr, 1, mine.ID, theirs.ID); err != ErrOnlyTokenOwner {
		t.Fatalf("foreign merge: %v", err)
	}
	if _, err := env.engine.MergeTokens(userAddr, 1, mine.ID, mine.ID); err != ErrMergeStageMismatch {
		t.Fatalf("self merge: %v", err)
	}
}

func TestExitGating(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 10)

	if _, err := env.engine.Exit(userAddr, 1, token.ID, "USDT"); err != ErrActiveSaleExit {
		t.Fatalf("exit with active indefinite sale: %v", err)
	}

	deadline := env.clock.now + 3600
	if err := env.engine.SetSaleStopTimestamp(multisigAddr, 1, 1, deadline); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	if _, err := env.engine.Exit(userAddr, 1, token.ID, "USDT"); err != ErrActiveSaleExit {
		t.Fatalf("exit before deadline: %v", err)
	}

	env.clock.advance(3600)
	amount, err := env.engine.Exit(userAddr, 1, token.ID, "USDT")
	if err != nil {
		t.Fatalf("exit after deadline: %v", err)
	}
	if amount.Cmp(usdt(100)) != 0 {
		t.Fatalf("exit amount = %s, want %s", amount, usdt(100))
	}
}

func TestExitAfterCloseSale(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 10)
	if err := env.engine.CloseSale(multisigAddr, 1); err != nil {
		t.Fatalf("close sale: %v", err)
	}

	balanceBefore := env.state.balance(userAddr, "USDT")
	amount, err := env.engine.Exit(userAddr, 1, token.ID, "USDT")
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	gained := new(big.Int).Sub(env.state.balance(userAddr, "USDT"), balanceBefore)
	if gained.Cmp(amount) != 0 || amount.Cmp(usdt(100)) != 0 {
		t.Fatalf("payout %s / gained %s, want %s", amount, gained, usdt(100))
	}
	if _, err := env.engine.Exit(userAddr, 1, token.ID, "USDT"); err != ErrTokenNotFound {
		t.Fatalf("double exit: %v", err)
	}
}

func TestExitOnlyOwner(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 10)
	if err := env.engine.CloseSale(multisigAddr, 1); err != nil {
		t.Fatalf("close sale: %v", err)
	}
	if _, err := env.engine.Exit(user2Addr, 1, token.ID, "USDT"); err != ErrOnlyTokenOwner {
		t.Fatalf("foreign exit: %v", err)
	}
}

func TestExitPaused(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 10)
	if err := env.engine.CloseSale(multisigAddr, 1); err != nil {
		t.Fatalf("close sale: %v", err)
	}
	if err := env.pause.SetPaused(adminAddr, true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := env.engine.Exit(userAddr, 1, token.ID, "USDT"); err != ErrPaused {
		t.Fatalf("paused exit: %v", err)
	}
}

func TestTransferToken(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	token := env.buyToken(t, userAddr, 10)

	if err := env.engine.TransferToken(user2Addr, 1, token.ID, user2Addr); err != ErrOnlyTokenOwner {
		t.Fatalf("foreign transfer: %v", err)
	}
	if err := env.engine.TransferToken(userAddr, 1, token.ID, [20]byte{}); err != ErrInvalidRecipient {
		t.Fatalf("zero recipient: %v", err)
	}
	if err := env.engine.TransferToken(userAddr, 1, token.ID, user2Addr); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	owner, err := env.engine.OwnerOf(1, token.ID)
	if err != nil || owner != user2Addr {
		t.Fatalf("owner = %x (%v), want %x", owner, err, user2Addr)
	}
	shares, _ := env.engine.TokenShares(1, token.ID)
	if shares != 10 {
		t.Fatalf("shares changed on transfer: %d", shares)
	}
}

func TestBuySharesForCompanyClampsAndSweeps(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.buyToken(t, userAddr, 10)

	if _, err := env.engine.BuySharesForCompany(adminAddr, 1, 10); err != ErrOnlyOwnersMultisig {
		t.Fatalf("admin buyback: %v", err)
	}

	// Asks for more than the 90 remaining; consumes exactly the remainder.
	consumed, err := env.engine.BuySharesForCompany(multisigAddr, 1, 200)
	if err != nil {
		t.Fatalf("buyback: %v", err)
	}
	if consumed != 90 {
		t.Fatalf("consumed = %d, want 90", consumed)
	}
	companyShares, _ := env.engine.CompanyShares(1)
	if companyShares != 90 {
		t.Fatalf("company shares = %d, want 90", companyShares)
	}
	if env.state.balance(objectAddr, "USDT").Sign() != 0 {
		t.Fatalf("object balance not swept")
	}
	if got := env.state.balance(treasuryAddr, "USDT"); got.Cmp(usdt(100)) != 0 {
		t.Fatalf("treasury = %s, want %s", got, usdt(100))
	}
	env.checkInventory(t, 1)
}

func TestWithdrawCompanyShares(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	if _, err := env.engine.BuySharesForCompany(multisigAddr, 1, 40); err != nil {
		t.Fatalf("buyback: %v", err)
	}

	if _, err := env.engine.WithdrawCompanyShares(adminAddr, 1, 10, user2Addr, usd(8)); err != ErrOnlyOwnersMultisig {
		t.Fatalf("admin withdraw: %v", err)
	}
	if _, err := env.engine.WithdrawCompanyShares(multisigAddr, 1, 50, user2Addr, usd(8)); err != ErrCompanySharesUnderflow {
		t.Fatalf("over withdraw: %v", err)
	}

	token, err := env.engine.WithdrawCompanyShares(multisigAddr, 1, 10, user2Addr, usd(80))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if token.Owner != user2Addr || token.Shares != 10 || token.BuyPrice.Cmp(usd(80)) != 0 {
		t.Fatalf("withdrawn token mismatch: %+v", token)
	}
	companyShares, _ := env.engine.CompanyShares(1)
	if companyShares != 30 {
		t.Fatalf("company shares = %d, want 30", companyShares)
	}
	env.checkInventory(t, 1)
}
