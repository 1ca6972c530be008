package bridge

import (
	"errors"
	"math/big"
)

var (
	basisPoints = big.NewInt(10_000)
	halfBps     = big.NewInt(5_000)
	ray         = mustBigInt("1000000000000000000000000000") // 1e27 precision
	halfRay     = new(big.Int).Rsh(ray, 1)
	maxUint256  = func() *big.Int {
		max := new(big.Int).Lsh(big.NewInt(1), 256)
		return max.Sub(max, big.NewInt(1))
	}()
)

var (
	// ErrArithmeticOverflow is returned when a fixed-point result leaves the
	// 256-bit unsigned range. Overflow aborts the call rather than
	// saturating so insolvency is never masked.
	ErrArithmeticOverflow = errors.New("bridge engine: arithmetic overflow")
	errDivisionByZero     = errors.New("bridge engine: division by zero")
)

func mustBigInt(value string) *big.Int {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("invalid big integer constant")
	}
	return v
}

// rayMul multiplies two ray-precision values rounding half-up. The
// intermediate product is computed at arbitrary precision; the result must
// fit 256 bits.
func rayMul(a, b *big.Int) (*big.Int, error) {
	if a == nil || b == nil {
		return big.NewInt(0), nil
	}
	product := new(big.Int).Mul(a, b)
	product.Add(product, halfRay)
	product.Quo(product, ray)
	return boundUint256(product)
}

// rayDiv divides two ray-precision values rounding half-up.
func rayDiv(a, b *big.Int) (*big.Int, error) {
	if b == nil || b.Sign() == 0 {
		return nil, errDivisionByZero
	}
	if a == nil {
		return big.NewInt(0), nil
	}
	numerator := new(big.Int).Mul(a, ray)
	numerator.Add(numerator, halfUp(b))
	numerator.Quo(numerator, b)
	return boundUint256(numerator)
}

// percentMul computes amount*bps/10_000 rounding half-up.
func percentMul(amount *big.Int, bps uint64) (*big.Int, error) {
	if amount == nil || amount.Sign() == 0 || bps == 0 {
		return big.NewInt(0), nil
	}
	product := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	product.Add(product, halfBps)
	product.Quo(product, basisPoints)
	return boundUint256(product)
}

func boundUint256(v *big.Int) (*big.Int, error) {
	if v.Cmp(maxUint256) > 0 {
		return nil, ErrArithmeticOverflow
	}
	return v, nil
}

func halfUp(x *big.Int) *big.Int {
	if x == nil || x.Sign() <= 0 {
		return big.NewInt(0)
	}
	half := new(big.Int).Add(x, big.NewInt(1))
	half.Rsh(half, 1)
	return half
}

// tenPow returns 10^decimals, used to convert whole-token caps into the wei
// denomination unbacked balances are tracked in.
func tenPow(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
