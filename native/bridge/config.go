package bridge

import "math/big"

// Config captures the runtime configuration for the bridge module.
type Config struct {
	ProtocolFeeBps uint64                   `toml:"ProtocolFeeBps"`
	Treasury       string                   `toml:"Treasury"`
	Module         string                   `toml:"Module"`
	Reserves       map[string]ReserveConfig `toml:"reserves"`
}

// ReserveConfig describes the per-asset settings applied when a reserve is
// initialised from configuration.
type ReserveConfig struct {
	Decimals         uint8    `toml:"Decimals"`
	UnbackedMintCap  *big.Int `toml:"UnbackedMintCapWholeTokens"`
	LiquidityRateRay *big.Int `toml:"LiquidityRateRay"`
}

// Clone returns a deep copy of the reserve configuration.
func (c ReserveConfig) Clone() ReserveConfig {
	clone := ReserveConfig{Decimals: c.Decimals}
	if c.UnbackedMintCap != nil {
		clone.UnbackedMintCap = new(big.Int).Set(c.UnbackedMintCap)
	}
	if c.LiquidityRateRay != nil {
		clone.LiquidityRateRay = new(big.Int).Set(c.LiquidityRateRay)
	}
	return clone
}

// EnsureDefaults populates nil fields so TOML handling is safe.
func (c *Config) EnsureDefaults() {
	if c == nil {
		return
	}
	if c.Reserves == nil {
		c.Reserves = map[string]ReserveConfig{}
	}
	for asset, reserve := range c.Reserves {
		if reserve.UnbackedMintCap == nil {
			reserve.UnbackedMintCap = big.NewInt(0)
		}
		if reserve.LiquidityRateRay == nil {
			reserve.LiquidityRateRay = big.NewInt(0)
		}
		c.Reserves[asset] = reserve
	}
}
