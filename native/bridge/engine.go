package bridge

import (
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"poolbridge/core/events"
	nativecommon "poolbridge/native/common"
)

var (
	errNilState      = errors.New("bridge engine: state not configured")
	errNilCustody    = errors.New("bridge engine: token custody not configured")
	errNilRoles      = errors.New("bridge engine: role registry not configured")
	errNilReserve    = errors.New("bridge engine: reserve not initialised")
	errAssetRequired = errors.New("bridge engine: asset not specified")
	errReserveExists = errors.New("bridge engine: reserve already initialised")

	// ErrCallerNotBridge rejects mint/back calls from addresses the role
	// registry does not currently recognise as bridges.
	ErrCallerNotBridge = errors.New("bridge engine: caller is not a registered bridge")
	// ErrCallerNotRiskAdmin rejects configuration calls from addresses the
	// role registry does not recognise as risk admins.
	ErrCallerNotRiskAdmin = errors.New("bridge engine: caller is not a risk admin")
	// ErrUnbackedMintCapExceeded rejects mints that would push the total
	// outstanding unbacked balance above the configured cap.
	ErrUnbackedMintCapExceeded = errors.New("bridge engine: unbacked mint cap exceeded")
	// ErrInvalidAmount rejects zero or negative amounts where disallowed.
	ErrInvalidAmount = errors.New("bridge engine: amount must be positive")
	// ErrInvalidFee rejects protocol fee rates above 100%.
	ErrInvalidFee = errors.New("bridge engine: fee exceeds 100%")
)

const moduleName = "bridge"

type engineState interface {
	GetReserve(asset string) (*Reserve, error)
	PutReserve(asset string, reserve *Reserve) error
}

// RoleView exposes the external role registry. Predicates are evaluated
// fresh on every call so a revoked bridge is rejected on its next call.
type RoleView interface {
	IsBridge(addr common.Address) bool
	IsRiskAdmin(addr common.Address) bool
}

// TokenCustody abstracts the token transfer/custody layer the engine
// delegates receipt-token mints and underlying transfers to.
type TokenCustody interface {
	MintScaled(asset string, to common.Address, scaledAmount *big.Int) error
	TransferFrom(asset string, from, to common.Address, amount *big.Int) error
}

// Engine orchestrates the unbacked-mint and back-unbacked state transitions
// for bridge-facing reserves.
type Engine struct {
	state           engineState
	custody         TokenCustody
	roles           RoleView
	emitter         events.Emitter
	pauses          nativecommon.PauseView
	nowFn           func() time.Time
	moduleAddress   common.Address
	treasuryAddress common.Address

	mu             sync.Mutex
	protocolFeeBps uint64
	locks          map[string]*sync.Mutex
}

// NewEngine constructs a bridge engine configured with the module custody
// address and the protocol treasury address.
func NewEngine(moduleAddr, treasuryAddr common.Address) *Engine {
	return &Engine{
		emitter:         events.NoopEmitter{},
		nowFn:           func() time.Time { return time.Now().UTC() },
		moduleAddress:   moduleAddr,
		treasuryAddress: treasuryAddr,
		locks:           make(map[string]*sync.Mutex),
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) {
	if e == nil {
		return
	}
	e.state = state
}

// SetCustody wires the engine to the token custody collaborator.
func (e *Engine) SetCustody(custody TokenCustody) {
	if e == nil {
		return
	}
	e.custody = custody
}

// SetRoles wires the engine to the external role registry.
func (e *Engine) SetRoles(roles RoleView) {
	if e == nil {
		return
	}
	e.roles = roles
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetNowFunc overrides the time source used for index accrual. Nil restores
// the default UTC clock.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if e == nil {
		return
	}
	if now == nil {
		e.nowFn = func() time.Time { return time.Now().UTC() }
		return
	}
	e.nowFn = now
}

// ProtocolFeeBps returns the share of back-unbacked fees currently diverted
// to the protocol treasury, in basis points.
func (e *Engine) ProtocolFeeBps() uint64 {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.protocolFeeBps
}

// InitReserve creates the accounting record for an asset with a zero
// unbacked balance and a unit liquidity index.
func (e *Engine) InitReserve(asset string, decimals uint8, liquidityRateRay *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return errAssetRequired
	}
	// A negative rate would shrink the index on accrual; the index must
	// never decrease.
	if liquidityRateRay != nil && liquidityRateRay.Sign() < 0 {
		return ErrInvalidAmount
	}
	lock := e.assetLock(asset)
	lock.Lock()
	defer lock.Unlock()

	existing, err := e.state.GetReserve(asset)
	if err != nil {
		return err
	}
	if existing != nil {
		return errReserveExists
	}
	reserve := &Reserve{
		Unbacked:          big.NewInt(0),
		LiquidityIndex:    new(big.Int).Set(ray),
		LiquidityRateRay:  big.NewInt(0),
		ScaledTotalSupply: big.NewInt(0),
		UnbackedMintCap:   big.NewInt(0),
		LastUpdateTime:    e.now().Unix(),
		Decimals:          decimals,
	}
	if liquidityRateRay != nil {
		reserve.LiquidityRateRay = new(big.Int).Set(liquidityRateRay)
	}
	return e.state.PutReserve(asset, reserve)
}

// MintUnbacked mints unbacked receipt tokens against a cross-chain liquidity
// claim. The scaled receipt amount minted to onBehalfOf is returned. The
// stored reserve is untouched when any check fails.
func (e *Engine) MintUnbacked(caller common.Address, asset string, amount *big.Int, onBehalfOf common.Address, referralCode uint16) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.custody == nil {
		return nil, errNilCustody
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.requireBridge(caller); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return nil, errAssetRequired
	}

	lock := e.assetLock(asset)
	lock.Lock()
	defer lock.Unlock()

	reserve, err := e.loadReserve(asset)
	if err != nil {
		return nil, err
	}
	if err := accrueLiquidityIndex(reserve, e.now().Unix()); err != nil {
		return nil, err
	}

	newUnbacked := new(big.Int).Add(reserve.Unbacked, amount)
	if _, err := boundUint256(newUnbacked); err != nil {
		return nil, err
	}
	if err := checkUnbackedCap(newUnbacked, reserve.UnbackedMintCap, reserve.Decimals); err != nil {
		return nil, err
	}
	reserve.Unbacked = newUnbacked

	scaledAmount, err := rayDiv(amount, reserve.LiquidityIndex)
	if err != nil {
		return nil, err
	}
	// Dust amounts below half a scaled unit round to zero; mint one scaled
	// unit instead so the recipient always holds a claim to redeem against.
	if scaledAmount.Sign() == 0 {
		scaledAmount = big.NewInt(1)
	}
	if err := e.custody.MintScaled(asset, onBehalfOf, scaledAmount); err != nil {
		return nil, err
	}
	reserve.ScaledTotalSupply = new(big.Int).Add(reserve.ScaledTotalSupply, scaledAmount)

	if err := e.state.PutReserve(asset, reserve); err != nil {
		return nil, err
	}

	e.emit(events.UnbackedMinted{
		Asset:        asset,
		Amount:       new(big.Int).Set(amount),
		Caller:       caller,
		OnBehalfOf:   onBehalfOf,
		ReferralCode: referralCode,
	})
	return scaledAmount, nil
}

// BackUnbacked settles outstanding unbacked claims with real liquidity plus
// a fee. The fee is split between the protocol treasury and the reserve's
// liquidity index; any amount beyond the current unbacked balance is treated
// purely as yield. The backed (debt-reducing) portion is returned.
//
// amount=0 with fee>0 is a pure donation: the index rises and unbacked is
// untouched. fee=0 with amount>0 covers unbacked with no yield beyond the
// backing amount's pro-rata distribution.
func (e *Engine) BackUnbacked(caller common.Address, asset string, amount, fee *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.custody == nil {
		return nil, errNilCustody
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.requireBridge(caller); err != nil {
		return nil, err
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	if fee == nil {
		fee = big.NewInt(0)
	}
	if amount.Sign() < 0 || fee.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if amount.Sign() == 0 && fee.Sign() == 0 {
		return nil, ErrInvalidAmount
	}
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return nil, errAssetRequired
	}

	lock := e.assetLock(asset)
	lock.Lock()
	defer lock.Unlock()

	reserve, err := e.loadReserve(asset)
	if err != nil {
		return nil, err
	}
	if err := accrueLiquidityIndex(reserve, e.now().Unix()); err != nil {
		return nil, err
	}

	backingAmount := new(big.Int).Set(amount)
	if backingAmount.Cmp(reserve.Unbacked) > 0 {
		backingAmount = new(big.Int).Set(reserve.Unbacked)
	}
	reserve.Unbacked = new(big.Int).Sub(reserve.Unbacked, backingAmount)

	feeToProtocol, err := percentMul(fee, e.ProtocolFeeBps())
	if err != nil {
		return nil, err
	}
	feeToLiquidity := new(big.Int).Sub(fee, feeToProtocol)

	totalToReserve := new(big.Int).Add(backingAmount, feeToLiquidity)
	if totalToReserve.Sign() > 0 && reserve.ScaledTotalSupply.Sign() > 0 {
		increase, err := rayDiv(totalToReserve, reserve.ScaledTotalSupply)
		if err != nil {
			return nil, err
		}
		index, err := boundUint256(new(big.Int).Add(reserve.LiquidityIndex, increase))
		if err != nil {
			return nil, err
		}
		reserve.LiquidityIndex = index
	}

	totalIn := new(big.Int).Add(amount, fee)
	if totalIn.Sign() > 0 {
		if err := e.custody.TransferFrom(asset, caller, e.moduleAddress, totalIn); err != nil {
			return nil, err
		}
	}
	if feeToProtocol.Sign() > 0 {
		if err := e.custody.TransferFrom(asset, e.moduleAddress, e.treasuryAddress, feeToProtocol); err != nil {
			return nil, err
		}
	}

	if err := e.state.PutReserve(asset, reserve); err != nil {
		return nil, err
	}

	e.emit(events.BackUnbacked{
		Asset:         asset,
		BackingAmount: new(big.Int).Set(backingAmount),
		Fee:           new(big.Int).Set(fee),
		Caller:        caller,
	})
	return backingAmount, nil
}

// SetUnbackedMintCap updates the per-asset unbacked mint cap, expressed in
// whole token units. Zero disables the cap. Risk admin only.
func (e *Engine) SetUnbackedMintCap(caller common.Address, asset string, capWholeTokens *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireRiskAdmin(caller); err != nil {
		return err
	}
	if capWholeTokens == nil || capWholeTokens.Sign() < 0 {
		return ErrInvalidAmount
	}
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return errAssetRequired
	}

	lock := e.assetLock(asset)
	lock.Lock()
	defer lock.Unlock()

	reserve, err := e.loadReserve(asset)
	if err != nil {
		return err
	}
	oldCap := new(big.Int).Set(reserve.UnbackedMintCap)
	reserve.UnbackedMintCap = new(big.Int).Set(capWholeTokens)
	if err := e.state.PutReserve(asset, reserve); err != nil {
		return err
	}

	e.emit(events.UnbackedMintCapUpdated{
		Asset:  asset,
		OldCap: oldCap,
		NewCap: new(big.Int).Set(capWholeTokens),
		Caller: caller,
	})
	return nil
}

// SetBridgeProtocolFee updates the process-wide share of back-unbacked fees
// diverted to the treasury. Risk admin only.
func (e *Engine) SetBridgeProtocolFee(caller common.Address, bps uint64) error {
	if e == nil {
		return errNilState
	}
	if err := e.requireRiskAdmin(caller); err != nil {
		return err
	}
	if bps > 10_000 {
		return ErrInvalidFee
	}
	e.mu.Lock()
	oldFee := e.protocolFeeBps
	e.protocolFeeBps = bps
	e.mu.Unlock()

	e.emit(events.BridgeProtocolFeeUpdated{
		OldFeeBps: oldFee,
		NewFeeBps: bps,
		Caller:    caller,
	})
	return nil
}

// Reserve returns a snapshot of the asset's accounting record.
func (e *Engine) Reserve(asset string) (*Reserve, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return nil, errAssetRequired
	}
	lock := e.assetLock(asset)
	lock.Lock()
	defer lock.Unlock()
	return e.loadReserve(asset)
}

// NormalizedIncome returns the liquidity index accrued to now without
// mutating stored state.
func (e *Engine) NormalizedIncome(asset string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return nil, errAssetRequired
	}
	lock := e.assetLock(asset)
	lock.Lock()
	defer lock.Unlock()

	reserve, err := e.loadReserve(asset)
	if err != nil {
		return nil, err
	}
	if err := accrueLiquidityIndex(reserve, e.now().Unix()); err != nil {
		return nil, err
	}
	return reserve.LiquidityIndex, nil
}

func (e *Engine) requireBridge(caller common.Address) error {
	if e.roles == nil {
		return errNilRoles
	}
	if !e.roles.IsBridge(caller) {
		return ErrCallerNotBridge
	}
	return nil
}

func (e *Engine) requireRiskAdmin(caller common.Address) error {
	if e.roles == nil {
		return errNilRoles
	}
	if !e.roles.IsRiskAdmin(caller) {
		return ErrCallerNotRiskAdmin
	}
	return nil
}

// checkUnbackedCap compares the post-mint unbacked total against the cap so
// the cap ceilings total outstanding unbacked, not the per-call amount.
func checkUnbackedCap(unbackedAfterMint, capWholeTokens *big.Int, decimals uint8) error {
	if capWholeTokens == nil || capWholeTokens.Sign() == 0 {
		return nil
	}
	capWei := new(big.Int).Mul(capWholeTokens, tenPow(decimals))
	if unbackedAfterMint.Cmp(capWei) > 0 {
		return ErrUnbackedMintCapExceeded
	}
	return nil
}

// loadReserve returns a defaulted working copy; callers mutate the copy and
// persist it only once every check has passed.
func (e *Engine) loadReserve(asset string) (*Reserve, error) {
	reserve, err := e.state.GetReserve(asset)
	if err != nil {
		return nil, err
	}
	if reserve == nil {
		return nil, errNilReserve
	}
	clone := reserve.Clone()
	clone.ensureDefaults()
	return clone, nil
}

func (e *Engine) assetLock(asset string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[asset]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[asset] = lock
	}
	return lock
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) now() time.Time {
	if e == nil || e.nowFn == nil {
		return time.Now().UTC()
	}
	return e.nowFn()
}
