package bridge

import "math/big"

const secondsPerYear = 31_536_000

// linearInterestFactor returns the ray-precision growth factor
// 1 + rate*elapsed/secondsPerYear for a linear-in-time accrual.
func linearInterestFactor(rateRay *big.Int, elapsed int64) *big.Int {
	if rateRay == nil || rateRay.Sign() <= 0 || elapsed <= 0 {
		return new(big.Int).Set(ray)
	}
	growth := new(big.Int).Mul(rateRay, big.NewInt(elapsed))
	growth.Quo(growth, big.NewInt(secondsPerYear))
	return growth.Add(growth, ray)
}

// accrueLiquidityIndex advances the reserve's liquidity index to now.
// Accrual happens at the start of every mutating operation so the index
// reflects elapsed time before the operation's own effect is applied.
func accrueLiquidityIndex(reserve *Reserve, now int64) error {
	if reserve == nil {
		return errNilReserve
	}
	elapsed := now - reserve.LastUpdateTime
	if elapsed <= 0 {
		return nil
	}
	factor := linearInterestFactor(reserve.LiquidityRateRay, elapsed)
	if factor.Cmp(ray) != 0 {
		index, err := rayMul(reserve.LiquidityIndex, factor)
		if err != nil {
			return err
		}
		reserve.LiquidityIndex = index
	}
	reserve.LastUpdateTime = now
	return nil
}
