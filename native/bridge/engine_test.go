package bridge

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"poolbridge/core/events"
	"poolbridge/core/state"
)

const testAsset = "USDC"

var testStart = time.Unix(1_700_000_000, 0).UTC()

type mockEngineState struct {
	mu       sync.Mutex
	reserves map[string]*Reserve
}

func newMockEngineState() *mockEngineState {
	return &mockEngineState{reserves: make(map[string]*Reserve)}
}

func (m *mockEngineState) GetReserve(asset string) (*Reserve, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserves[asset], nil
}

func (m *mockEngineState) PutReserve(asset string, reserve *Reserve) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reserves[asset] = reserve
	return nil
}

func (m *mockEngineState) reserve(asset string) *Reserve {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserves[asset]
}

type mockRoles struct {
	bridges map[common.Address]bool
	admins  map[common.Address]bool
}

func (m *mockRoles) IsBridge(addr common.Address) bool    { return m.bridges[addr] }
func (m *mockRoles) IsRiskAdmin(addr common.Address) bool { return m.admins[addr] }

type captureEmitter struct {
	mu      sync.Mutex
	emitted []events.Event
}

func (c *captureEmitter) Emit(evt events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitted = append(c.emitted, evt)
}

func makeAddress(suffix byte) common.Address {
	var addr common.Address
	addr[common.AddressLength-1] = suffix
	return addr
}

func wholeTokens(units int64, decimals uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), tenPow(decimals))
}

type testHarness struct {
	engine   *Engine
	state    *mockEngineState
	ledger   *state.TokenLedger
	roles    *mockRoles
	emitter  *captureEmitter
	module   common.Address
	treasury common.Address
	bridge   common.Address
	admin    common.Address
	user     common.Address
}

func newTestHarness() *testHarness {
	h := &testHarness{
		state:    newMockEngineState(),
		ledger:   state.NewTokenLedger(),
		emitter:  &captureEmitter{},
		module:   makeAddress(0xAA),
		treasury: makeAddress(0xBB),
		bridge:   makeAddress(0xCC),
		admin:    makeAddress(0xDD),
		user:     makeAddress(0xEE),
	}
	h.roles = &mockRoles{
		bridges: map[common.Address]bool{h.bridge: true},
		admins:  map[common.Address]bool{h.admin: true},
	}
	h.engine = NewEngine(h.module, h.treasury)
	h.engine.SetState(h.state)
	h.engine.SetCustody(h.ledger)
	h.engine.SetRoles(h.roles)
	h.engine.SetEmitter(h.emitter)
	h.engine.SetNowFunc(func() time.Time { return testStart })
	return h
}

func (h *testHarness) initReserve(decimals uint8, rateRay *big.Int) error {
	return h.engine.InitReserve(testAsset, decimals, rateRay)
}

func (h *testHarness) storedReserve() *Reserve {
	return h.state.reserve(testAsset)
}
