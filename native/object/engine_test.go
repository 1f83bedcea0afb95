package object

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"brickshare/core/events"
	"brickshare/core/types"
	"brickshare/native/oracle"
	"brickshare/native/roles"
)

type mockState struct {
	objects  map[uint64]*Object
	accounts map[[20]byte]*types.Account
}

func newMockState() *mockState {
	return &mockState{
		objects:  make(map[uint64]*Object),
		accounts: make(map[[20]byte]*types.Account),
	}
}

func (m *mockState) ObjectPut(obj *Object) error {
	m.objects[obj.ID] = obj.Clone()
	return nil
}

func (m *mockState) ObjectGet(id uint64) (*Object, bool, error) {
	obj, ok := m.objects[id]
	if !ok {
		return nil, false, nil
	}
	return obj.Clone(), true, nil
}

func (m *mockState) GetAccount(addr []byte) (*types.Account, error) {
	var key [20]byte
	copy(key[:], addr)
	acc, ok := m.accounts[key]
	if !ok {
		return types.NewAccount(), nil
	}
	return acc.Clone(), nil
}

func (m *mockState) PutAccount(addr []byte, account *types.Account) error {
	var key [20]byte
	copy(key[:], addr)
	m.accounts[key] = account.Clone()
	return nil
}

func (m *mockState) fund(addr [20]byte, asset string, amount *big.Int) {
	acc, ok := m.accounts[addr]
	if !ok {
		acc = types.NewAccount()
		m.accounts[addr] = acc
	}
	acc.SetBalance(asset, new(big.Int).Add(acc.Balance(asset), amount))
}

func (m *mockState) balance(addr [20]byte, asset string) *big.Int {
	acc, ok := m.accounts[addr]
	if !ok {
		return big.NewInt(0)
	}
	return acc.Balance(asset)
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

var (
	multisigAddr = newTestAddress(0xA1)
	adminAddr    = newTestAddress(0xA2)
	factoryAddr  = newTestAddress(0xA3)
	treasuryAddr = newTestAddress(0xA4)
	userAddr     = newTestAddress(0x01)
	user2Addr    = newTestAddress(0x02)
	referrerAddr = newTestAddress(0x03)
	objectAddr   = newTestAddress(0xB1)
)

type testClock struct {
	now int64
}

func (c *testClock) advance(d int64) { c.now += d }

type recordedReferral struct {
	objectID  uint64
	stageID   uint64
	buyer     [20]byte
	referrer  [20]byte
	usdAmount *big.Int
}

type mockReferral struct {
	calls []recordedReferral
	err   error
}

func (m *mockReferral) PurchaseRecorded(objectID, stageID uint64, buyer, referrer [20]byte, usdAmount *big.Int) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, recordedReferral{
		objectID:  objectID,
		stageID:   stageID,
		buyer:     buyer,
		referrer:  referrer,
		usdAmount: new(big.Int).Set(usdAmount),
	})
	return nil
}

type testEnv struct {
	engine   *Engine
	state    *mockState
	registry *roles.Registry
	pause    *roles.Pause
	pricer   *oracle.Manager
	referral *mockReferral
	capture  *events.Capture
	clock    *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	registry := roles.NewRegistry()
	registry.SetOwnersMultisig(multisigAddr)
	registry.AddAdministrator(adminAddr)
	registry.AddFactory(factoryAddr)

	pricer := oracle.NewManager()
	if err := pricer.RegisterAsset("USDT", big.NewRat(1, 1), 6); err != nil {
		t.Fatalf("register USDT: %v", err)
	}
	if err := pricer.RegisterAsset("USDC", big.NewRat(1, 1), 6); err != nil {
		t.Fatalf("register USDC: %v", err)
	}

	state := newMockState()
	clock := &testClock{now: 1_700_000_000}
	capture := &events.Capture{}
	referral := &mockReferral{}
	pause := roles.NewPause(registry)

	engine := NewEngine()
	engine.SetState(state)
	engine.SetAuthority(registry)
	engine.SetPauser(pause)
	engine.SetPricer(pricer)
	engine.SetReferralHook(referral)
	engine.SetTreasury(treasuryAddr)
	engine.SetEmitter(capture)
	engine.SetNowFunc(func() int64 { return clock.now })

	return &testEnv{
		engine:   engine,
		state:    state,
		registry: registry,
		pause:    pause,
		pricer:   pricer,
		referral: referral,
		capture:  capture,
		clock:    clock,
	}
}

func usd(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func usdt(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), big.NewInt(1_000_000))
}

func maxUint() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), 255)
}

func (env *testEnv) createFullSaleObject(t *testing.T, maxShares uint64, price *big.Int) *Object {
	t.Helper()
	obj, err := env.engine.CreateObject(factoryAddr, ObjectParams{
		ID:                     1,
		Address:                objectAddr,
		MaxShares:              maxShares,
		OneSharePrice:          price,
		ReferralProgramEnabled: true,
	})
	if err != nil {
		t.Fatalf("create full sale object: %v", err)
	}
	return obj
}

func (env *testEnv) createStageSaleObject(t *testing.T, maxShares, stageShares uint64, price *big.Int) *Object {
	t.Helper()
	obj, err := env.engine.CreateObject(factoryAddr, ObjectParams{
		ID:                     1,
		Address:                objectAddr,
		MaxShares:              maxShares,
		StageSale:              true,
		InitialStageShares:     stageShares,
		OneSharePrice:          price,
		ReferralProgramEnabled: true,
	})
	if err != nil {
		t.Fatalf("create stage sale object: %v", err)
	}
	return obj
}

// checkInventory asserts the conservation invariant: live token shares plus
// company shares plus remaining stage inventory always equals the total
// allocated to stages.
func (env *testEnv) checkInventory(t *testing.T, objectID uint64) {
	t.Helper()
	obj, ok := env.state.objects[objectID]
	if !ok {
		t.Fatalf("object %d missing", objectID)
	}
	var total uint64
	for _, token := range obj.Tokens {
		total += token.Shares
	}
	total += obj.CompanyShares
	for _, stage := range obj.Stages {
		total += stage.AvailableShares
	}
	if total != obj.allocatedShares() {
		t.Fatalf("inventory leak: tokens+company+available=%d, allocated=%d", total, obj.allocatedShares())
	}
	if obj.allocatedShares() > obj.MaxShares {
		t.Fatalf("allocated %d exceeds cap %d", obj.allocatedShares(), obj.MaxShares)
	}
}

func TestCreateObjectOnlyFactory(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.CreateObject(userAddr, ObjectParams{ID: 1, MaxShares: 100, OneSharePrice: usd(10)})
	if err != ErrOnlyFactory {
		t.Fatalf("expected ErrOnlyFactory, got %v", err)
	}
}

func TestCreateObjectValidation(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.CreateObject(factoryAddr, ObjectParams{ID: 1, OneSharePrice: usd(10)}); err != ErrZeroShares {
		t.Fatalf("zero max shares: %v", err)
	}
	if _, err := env.engine.CreateObject(factoryAddr, ObjectParams{ID: 1, MaxShares: 100}); err != ErrZeroPrice {
		t.Fatalf("zero price: %v", err)
	}
	if _, err := env.engine.CreateObject(factoryAddr, ObjectParams{ID: 1, MaxShares: 100, StageSale: true, OneSharePrice: usd(10)}); err != ErrZeroShares {
		t.Fatalf("zero stage shares: %v", err)
	}
	if _, err := env.engine.CreateObject(factoryAddr, ObjectParams{ID: 1, MaxShares: 100, StageSale: true, InitialStageShares: 200, OneSharePrice: usd(10)}); err != ErrMaxSharesExceeded {
		t.Fatalf("stage over cap: %v", err)
	}

	env.createFullSaleObject(t, 100, usd(10))
	if _, err := env.engine.CreateObject(factoryAddr, ObjectParams{ID: 1, MaxShares: 100, OneSharePrice: usd(10)}); err != ErrObjectExists {
		t.Fatalf("duplicate id: %v", err)
	}
}

func TestCreateObjectModes(t *testing.T) {
	env := newTestEnv(t)
	obj := env.createStageSaleObject(t, 100, 20, usd(10))
	if len(obj.Stages) != 1 || obj.Stages[0].AvailableShares != 20 {
		t.Fatalf("stage sale object first stage misallocated: %+v", obj.Stages)
	}
	if !obj.IsActiveSale || obj.IsSold {
		t.Fatalf("fresh object flags wrong: %+v", obj)
	}
}

func TestBuySharesRegular(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.state.fund(userAddr, "USDT", usdt(10_000))

	estimate, err := env.engine.EstimateBuySharesAsset(1, userAddr, 10, "USDT")
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if estimate.Cmp(usdt(100)) != 0 {
		t.Fatalf("estimate = %s, want %s", estimate, usdt(100))
	}

	token, err := env.engine.BuyShares(userAddr, 1, 10, "USDT", maxUint(), [20]byte{})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if token.ID != 1 || token.Shares != 10 || token.MintStageID != 1 {
		t.Fatalf("token mismatch: %+v", token)
	}
	if token.BuyPrice.Cmp(usd(100)) != 0 {
		t.Fatalf("buy price = %s, want %s", token.BuyPrice, usd(100))
	}
	if got := env.state.balance(objectAddr, "USDT"); got.Cmp(usdt(100)) != 0 {
		t.Fatalf("object balance = %s, want %s", got, usdt(100))
	}
	if got := env.state.balance(userAddr, "USDT"); got.Cmp(usdt(9_900)) != 0 {
		t.Fatalf("user balance = %s, want %s", got, usdt(9_900))
	}
	available, err := env.engine.StageAvailableShares(1, 1)
	if err != nil || available != 90 {
		t.Fatalf("available = %d (%v), want 90", available, err)
	}
	env.checkInventory(t, 1)
}

func TestBuySharesOverdraw(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.state.fund(userAddr, "USDT", usdt(1_000_000))

	_, err := env.engine.BuyShares(userAddr, 1, 110, "USDT", maxUint(), [20]byte{})
	if err != ErrStageExhausted {
		t.Fatalf("expected ErrStageExhausted, got %v", err)
	}
	available, _ := env.engine.StageAvailableShares(1, 1)
	if available != 100 {
		t.Fatalf("failed buy mutated inventory: %d", available)
	}
	if env.state.balance(objectAddr, "USDT").Sign() != 0 {
		t.Fatalf("failed buy moved funds")
	}
}

func TestBuySharesPaused(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.state.fund(userAddr, "USDT", usdt(10_000))
	if err := env.pause.SetPaused(adminAddr, true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := env.engine.BuyShares(userAddr, 1, 10, "USDT", maxUint(), [20]byte{}); err != ErrPaused {
		t.Fatalf("expected ErrPaused, got %v", err)
	}
}

func TestBuySharesSlippageGuard(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.state.fund(userAddr, "USDT", usdt(10_000))
	if _, err := env.engine.BuyShares(userAddr, 1, 10, "USDT", usdt(99), [20]byte{}); err != ErrSlippageExceeded {
		t.Fatalf("expected ErrSlippageExceeded, got %v", err)
	}
}

func TestBuySharesZeroCount(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	if _, err := env.engine.BuyShares(userAddr, 1, 0, "USDT", maxUint(), [20]byte{}); err != ErrZeroShares {
		t.Fatalf("expected ErrZeroShares, got %v", err)
	}
}

func TestBuySharesInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.state.fund(userAddr, "USDT", usdt(50))
	if _, err := env.engine.BuyShares(userAddr, 1, 10, "USDT", maxUint(), [20]byte{}); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	available, _ := env.engine.StageAvailableShares(1, 1)
	if available != 100 {
		t.Fatalf("failed buy mutated inventory: %d", available)
	}
}

func TestBuySharesAfterCloseSale(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.state.fund(userAddr, "USDT", usdt(10_000))
	if err := env.engine.CloseSale(multisigAddr, 1); err != nil {
		t.Fatalf("close sale: %v", err)
	}
	if _, err := env.engine.BuyShares(userAddr, 1, 10, "USDT", maxUint(), [20]byte{}); err != ErrSaleInactive {
		t.Fatalf("expected ErrSaleInactive, got %v", err)
	}
}

func TestPersonalPriceLock(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.state.fund(userAddr, "USDT", usdt(10_000))

	if _, err := env.engine.BuyShares(userAddr, 1, 10, "USDT", maxUint(), [20]byte{}); err != nil {
		t.Fatalf("first buy: %v", err)
	}

	// A price increase must not retroactively charge the locked buyer more.
	if err := env.engine.SetStagePriceOneShare(multisigAddr, 1, 1, usd(11)); err != nil {
		t.Fatalf("raise price: %v", err)
	}
	price, err := env.engine.PriceForUser(1, userAddr)
	if err != nil || price.Cmp(usd(10)) != 0 {
		t.Fatalf("locked price = %s (%v), want %s", price, err, usd(10))
	}
	balanceBefore := env.state.balance(userAddr, "USDT")
	if _, err := env.engine.BuyShares(userAddr, 1, 5, "USDT", maxUint(), [20]byte{}); err != nil {
		t.Fatalf("second buy: %v", err)
	}
	paid := new(big.Int).Sub(balanceBefore, env.state.balance(userAddr, "USDT"))
	if paid.Cmp(usdt(50)) != 0 {
		t.Fatalf("locked buyer paid %s, want %s", paid, usdt(50))
	}

	// A new buyer pays the raised stage price.
	env.state.fund(user2Addr, "USDT", usdt(10_000))
	balanceBefore = env.state.balance(user2Addr, "USDT")
	if _, err := env.engine.BuyShares(user2Addr, 1, 5, "USDT", maxUint(), [20]byte{}); err != nil {
		t.Fatalf("fresh buyer: %v", err)
	}
	paid = new(big.Int).Sub(balanceBefore, env.state.balance(user2Addr, "USDT"))
	if paid.Cmp(usdt(55)) != 0 {
		t.Fatalf("fresh buyer paid %s, want %s", paid, usdt(55))
	}

	// A price decrease benefits the locked buyer immediately.
	if err := env.engine.SetStagePriceOneShare(multisigAddr, 1, 1, usd(9)); err != nil {
		t.Fatalf("lower price: %v", err)
	}
	price, err = env.engine.PriceForUser(1, userAddr)
	if err != nil || price.Cmp(usd(9)) != 0 {
		t.Fatalf("lowered price = %s (%v), want %s", price, err, usd(9))
	}
	env.checkInventory(t, 1)
}

func TestBuySharesReferralNotification(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.state.fund(userAddr, "USDT", usdt(10_000))

	if _, err := env.engine.BuyShares(userAddr, 1, 10, "USDT", maxUint(), referrerAddr); err != nil {
		t.Fatalf("buy with referrer: %v", err)
	}
	if len(env.referral.calls) != 1 {
		t.Fatalf("referral calls = %d, want 1", len(env.referral.calls))
	}
	call := env.referral.calls[0]
	if call.objectID != 1 || call.stageID != 1 || call.buyer != userAddr || call.referrer != referrerAddr {
		t.Fatalf("referral call mismatch: %+v", call)
	}
	if call.usdAmount.Cmp(usd(100)) != 0 {
		t.Fatalf("referral amount = %s, want %s", call.usdAmount, usd(100))
	}

	// Zero referrer and self-referral do not notify.
	if _, err := env.engine.BuyShares(userAddr, 1, 5, "USDT", maxUint(), [20]byte{}); err != nil {
		t.Fatalf("buy without referrer: %v", err)
	}
	if _, err := env.engine.BuyShares(userAddr, 1, 5, "USDT", maxUint(), userAddr); err != nil {
		t.Fatalf("self-referred buy: %v", err)
	}
	if len(env.referral.calls) != 1 {
		t.Fatalf("unexpected referral notifications: %d", len(env.referral.calls))
	}

	// Disabled program suppresses notifications.
	if err := env.engine.DisableReferralProgram(adminAddr, 1); err != nil {
		t.Fatalf("disable referral: %v", err)
	}
	if _, err := env.engine.BuyShares(userAddr, 1, 5, "USDT", maxUint(), referrerAddr); err != nil {
		t.Fatalf("buy with disabled program: %v", err)
	}
	if len(env.referral.calls) != 1 {
		t.Fatalf("disabled program still notified")
	}
}

func TestReferralProgramToggles(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))

	if err := env.engine.DisableReferralProgram(userAddr, 1); err != ErrOnlyAdministrator {
		t.Fatalf("user disable: %v", err)
	}
	if err := env.engine.DisableReferralProgram(adminAddr, 1); err != nil {
		t.Fatalf("admin disable: %v", err)
	}
	enabled, _ := env.engine.ReferralProgramEnabled(1)
	if enabled {
		t.Fatalf("program not disabled")
	}
	if err := env.engine.EnableReferralProgram(adminAddr, 1); err != ErrOnlyOwnersMultisig {
		t.Fatalf("admin enable: %v", err)
	}
	if err := env.engine.EnableReferralProgram(multisigAddr, 1); err != nil {
		t.Fatalf("multisig enable: %v", err)
	}
	enabled, _ = env.engine.ReferralProgramEnabled(1)
	if !enabled {
		t.Fatalf("program not re-enabled")
	}
}

func TestReferralHookFailureKeepsPurchase(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.state.fund(userAddr, "USDT", usdt(10_000))
	env.referral.err = errors.New("hook down")

	token, err := env.engine.BuyShares(userAddr, 1, 10, "USDT", maxUint(), referrerAddr)
	if err != nil {
		t.Fatalf("buy with failing hook: %v", err)
	}
	owner, err := env.engine.OwnerOf(1, token.ID)
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if owner != userAddr {
		t.Fatalf("owner = %x, want buyer", owner)
	}
	available, _ := env.engine.StageAvailableShares(1, 1)
	if available != 90 {
		t.Fatalf("available = %d, want 90", available)
	}
	if len(env.referral.calls) != 0 {
		t.Fatalf("failed hook recorded %d calls", len(env.referral.calls))
	}
}

func TestInventoryConservationSequence(t *testing.T) {
	env := newTestEnv(t)
	env.createStageSaleObject(t, 100, 40, usd(10))
	env.state.fund(userAddr, "USDT", usdt(1_000_000))

	if _, err := env.engine.BuyShares(userAddr, 1, 10, "USDT", maxUint(), [20]byte{}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	env.checkInventory(t, 1)

	if _, err := env.engine.BuySharesForCompany(multisigAddr, 1, 5); err != nil {
		t.Fatalf("company buy: %v", err)
	}
	env.checkInventory(t, 1)

	if err := env.engine.CloseStage(multisigAddr, 1, 1); err != nil {
		t.Fatalf("close stage: %v", err)
	}
	env.checkInventory(t, 1)

	if _, err := env.engine.CreateNewStage(multisigAddr, 1, 30, 0, usd(12)); err != nil {
		t.Fatalf("new stage: %v", err)
	}
	env.checkInventory(t, 1)

	if _, err := env.engine.SplitToken(userAddr, 1, 1, 4); err != nil {
		t.Fatalf("split: %v", err)
	}
	env.checkInventory(t, 1)

	if _, err := env.engine.WithdrawCompanyShares(multisigAddr, 1, 3, user2Addr, usd(5)); err != nil {
		t.Fatalf("withdraw company shares: %v", err)
	}
	env.checkInventory(t, 1)
}

func TestEventsEmittedOnBuy(t *testing.T) {
	env := newTestEnv(t)
	env.createFullSaleObject(t, 100, usd(10))
	env.state.fund(userAddr, "USDT", usdt(10_000))
	env.capture.Events = nil

	if _, err := env.engine.BuyShares(userAddr, 1, 10, "USDT", maxUint(), [20]byte{}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	emitted := env.capture.Types()
	if len(emitted) != 1 || emitted[0] != EventTypeSharesPurchased {
		t.Fatalf("events = %v", emitted)
	}
}
