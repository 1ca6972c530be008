package bridge

import "math/big"

// Reserve captures the bridge accounting state for a single asset. Amount
// values are denominated in wei and expressed as big integers to match
// on-chain precision.
type Reserve struct {
	// Unbacked is the outstanding claim total minted by bridges but not yet
	// backed by real liquidity.
	Unbacked *big.Int
	// LiquidityIndex is the cumulative yield multiplier applied to scaled
	// receipt-token balances, in ray precision. It never decreases.
	LiquidityIndex *big.Int
	// LiquidityRateRay is the annualised liquidity rate used for linear
	// index accrual, in ray precision.
	LiquidityRateRay *big.Int
	// ScaledTotalSupply snapshots the receipt-token supply in scaled
	// (index-independent) units. Owned by the token component; the engine
	// only adjusts it alongside custody mints.
	ScaledTotalSupply *big.Int
	// LastUpdateTime records the unix timestamp of the last index accrual.
	LastUpdateTime int64
	// UnbackedMintCap ceilings the total outstanding unbacked balance,
	// expressed in whole token units. Zero disables the cap.
	UnbackedMintCap *big.Int
	// Decimals is the asset's wei exponent, used to convert the cap.
	Decimals uint8
}

// Clone returns a deep copy so operations can mutate a working reserve and
// persist it only on full success.
func (r *Reserve) Clone() *Reserve {
	if r == nil {
		return nil
	}
	clone := &Reserve{
		LastUpdateTime: r.LastUpdateTime,
		Decimals:       r.Decimals,
	}
	if r.Unbacked != nil {
		clone.Unbacked = new(big.Int).Set(r.Unbacked)
	}
	if r.LiquidityIndex != nil {
		clone.LiquidityIndex = new(big.Int).Set(r.LiquidityIndex)
	}
	if r.LiquidityRateRay != nil {
		clone.LiquidityRateRay = new(big.Int).Set(r.LiquidityRateRay)
	}
	if r.ScaledTotalSupply != nil {
		clone.ScaledTotalSupply = new(big.Int).Set(r.ScaledTotalSupply)
	}
	if r.UnbackedMintCap != nil {
		clone.UnbackedMintCap = new(big.Int).Set(r.UnbackedMintCap)
	}
	return clone
}

func (r *Reserve) ensureDefaults() {
	if r == nil {
		return
	}
	if r.Unbacked == nil {
		r.Unbacked = big.NewInt(0)
	}
	if r.LiquidityIndex == nil || r.LiquidityIndex.Sign() == 0 {
		r.LiquidityIndex = new(big.Int).Set(ray)
	}
	if r.LiquidityRateRay == nil {
		r.LiquidityRateRay = big.NewInt(0)
	}
	if r.ScaledTotalSupply == nil {
		r.ScaledTotalSupply = big.NewInt(0)
	}
	if r.UnbackedMintCap == nil {
		r.UnbackedMintCap = big.NewInt(0)
	}
}
