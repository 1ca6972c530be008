package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"poolbridge/native/bridge"
)

// Config is the top-level module configuration decoded from TOML.
type Config struct {
	Bridge bridge.Config `toml:"bridge"`
}

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s contains unknown field %s", path, undecoded[0].String())
	}

	cfg.Bridge.EnsureDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine would refuse at runtime.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil configuration")
	}
	if c.Bridge.ProtocolFeeBps > 10_000 {
		return fmt.Errorf("config: bridge protocol fee %d exceeds 10000 bps", c.Bridge.ProtocolFeeBps)
	}
	if treasury := strings.TrimSpace(c.Bridge.Treasury); treasury != "" && !common.IsHexAddress(treasury) {
		return fmt.Errorf("config: bridge treasury %q is not a hex address", treasury)
	}
	if module := strings.TrimSpace(c.Bridge.Module); module != "" && !common.IsHexAddress(module) {
		return fmt.Errorf("config: bridge module address %q is not a hex address", module)
	}
	for asset, reserve := range c.Bridge.Reserves {
		if strings.TrimSpace(asset) == "" {
			return fmt.Errorf("config: reserve with empty asset symbol")
		}
		if reserve.Decimals > 36 {
			return fmt.Errorf("config: reserve %s decimals %d out of range", asset, reserve.Decimals)
		}
		if reserve.UnbackedMintCap != nil && reserve.UnbackedMintCap.Sign() < 0 {
			return fmt.Errorf("config: reserve %s unbacked mint cap is negative", asset)
		}
		if reserve.LiquidityRateRay != nil && reserve.LiquidityRateRay.Sign() < 0 {
			return fmt.Errorf("config: reserve %s liquidity rate is negative", asset)
		}
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Bridge.EnsureDefaults()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}
