package state

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the
	// sender's balance.
	ErrInsufficientBalance = errors.New("token ledger: insufficient balance")
	// ErrAmountOutOfRange is returned when an amount does not fit the
	// 256-bit unsigned range the ledger tracks balances in.
	ErrAmountOutOfRange = errors.New("token ledger: amount exceeds 256 bits")
	// ErrNegativeAmount is returned for negative amounts.
	ErrNegativeAmount = errors.New("token ledger: amount must not be negative")
)

// TokenLedger is an in-memory token custody implementation tracking
// underlying balances and scaled receipt-token balances per asset. It backs
// the bridge engine in tests and local wiring; production deployments
// substitute the real custody layer.
type TokenLedger struct {
	mu       sync.RWMutex
	balances map[string]map[common.Address]*uint256.Int
	scaled   map[string]map[common.Address]*uint256.Int
}

// NewTokenLedger constructs an empty ledger.
func NewTokenLedger() *TokenLedger {
	return &TokenLedger{
		balances: make(map[string]map[common.Address]*uint256.Int),
		scaled:   make(map[string]map[common.Address]*uint256.Int),
	}
}

// Credit seeds an underlying balance, typically test fixtures or genesis
// allocations.
func (l *TokenLedger) Credit(asset string, addr common.Address, amount *big.Int) error {
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance := ensureBalance(l.balances, asset, addr)
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(balance, value); overflow {
		return ErrAmountOutOfRange
	}
	balance.Set(&sum)
	return nil
}

// MintScaled credits scaled receipt tokens to the recipient.
func (l *TokenLedger) MintScaled(asset string, to common.Address, scaledAmount *big.Int) error {
	value, err := toUint256(scaledAmount)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance := ensureBalance(l.scaled, asset, to)
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(balance, value); overflow {
		return ErrAmountOutOfRange
	}
	balance.Set(&sum)
	return nil
}

// TransferFrom moves underlying tokens between accounts.
func (l *TokenLedger) TransferFrom(asset string, from, to common.Address, amount *big.Int) error {
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	if value.IsZero() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	source := ensureBalance(l.balances, asset, from)
	if source.Lt(value) {
		return ErrInsufficientBalance
	}
	source.Sub(source, value)
	dest := ensureBalance(l.balances, asset, to)
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(dest, value); overflow {
		// restore the debit; a failed credit must not burn funds
		source.Add(source, value)
		return ErrAmountOutOfRange
	}
	dest.Set(&sum)
	return nil
}

// BalanceOf returns the underlying balance for the account.
func (l *TokenLedger) BalanceOf(asset string, addr common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return readBalance(l.balances, asset, addr)
}

// ScaledBalanceOf returns the scaled receipt-token balance for the account.
func (l *TokenLedger) ScaledBalanceOf(asset string, addr common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return readBalance(l.scaled, asset, addr)
}

func ensureBalance(buckets map[string]map[common.Address]*uint256.Int, asset string, addr common.Address) *uint256.Int {
	bucket, ok := buckets[asset]
	if !ok {
		bucket = make(map[common.Address]*uint256.Int)
		buckets[asset] = bucket
	}
	balance, ok := bucket[addr]
	if !ok {
		balance = uint256.NewInt(0)
		bucket[addr] = balance
	}
	return balance
}

func readBalance(buckets map[string]map[common.Address]*uint256.Int, asset string, addr common.Address) *big.Int {
	bucket, ok := buckets[asset]
	if !ok {
		return big.NewInt(0)
	}
	balance, ok := bucket[addr]
	if !ok {
		return big.NewInt(0)
	}
	return balance.ToBig()
}

func toUint256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil {
		return uint256.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrAmountOutOfRange
	}
	return value, nil
}
