package events

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"poolbridge/core/types"
)

const (
	// TypeUnbackedMinted is emitted whenever a bridge mints unbacked
	// receipt tokens against a cross-chain liquidity claim.
	TypeUnbackedMinted = "bridge.unbackedMinted"
	// TypeBackUnbacked is emitted when real liquidity plus a fee retires
	// outstanding unbacked claims.
	TypeBackUnbacked = "bridge.backUnbacked"
	// TypeUnbackedMintCapUpdated is emitted when the risk admin adjusts the
	// per-asset unbacked mint cap.
	TypeUnbackedMintCapUpdated = "bridge.unbackedMintCapUpdated"
	// TypeBridgeProtocolFeeUpdated is emitted when the protocol share of
	// back-unbacked fees changes.
	TypeBridgeProtocolFeeUpdated = "bridge.protocolFeeUpdated"
)

// UnbackedMinted captures a completed unbacked mint.
type UnbackedMinted struct {
	Asset        string
	Amount       *big.Int
	Caller       common.Address
	OnBehalfOf   common.Address
	ReferralCode uint16
}

func (UnbackedMinted) EventType() string { return TypeUnbackedMinted }

func (e UnbackedMinted) Event() *types.Event {
	if e.Amount == nil {
		e.Amount = big.NewInt(0)
	}
	return &types.Event{
		Type: TypeUnbackedMinted,
		Attributes: map[string]string{
			"asset":        normalizeAsset(e.Asset),
			"amount":       e.Amount.String(),
			"caller":       e.Caller.Hex(),
			"onBehalfOf":   e.OnBehalfOf.Hex(),
			"referralCode": strconv.FormatUint(uint64(e.ReferralCode), 10),
		},
	}
}

// BackUnbacked captures a completed back-unbacked settlement.
type BackUnbacked struct {
	Asset         string
	BackingAmount *big.Int
	Fee           *big.Int
	Caller        common.Address
}

func (BackUnbacked) EventType() string { return TypeBackUnbacked }

func (e BackUnbacked) Event() *types.Event {
	if e.BackingAmount == nil {
		e.BackingAmount = big.NewInt(0)
	}
	if e.Fee == nil {
		e.Fee = big.NewInt(0)
	}
	return &types.Event{
		Type: TypeBackUnbacked,
		Attributes: map[string]string{
			"asset":         normalizeAsset(e.Asset),
			"backingAmount": e.BackingAmount.String(),
			"fee":           e.Fee.String(),
			"caller":        e.Caller.Hex(),
		},
	}
}

// UnbackedMintCapUpdated captures a cap configuration change.
type UnbackedMintCapUpdated struct {
	Asset  string
	OldCap *big.Int
	NewCap *big.Int
	Caller common.Address
}

func (UnbackedMintCapUpdated) EventType() string { return TypeUnbackedMintCapUpdated }

func (e UnbackedMintCapUpdated) Event() *types.Event {
	if e.OldCap == nil {
		e.OldCap = big.NewInt(0)
	}
	if e.NewCap == nil {
		e.NewCap = big.NewInt(0)
	}
	return &types.Event{
		Type: TypeUnbackedMintCapUpdated,
		Attributes: map[string]string{
			"asset":  normalizeAsset(e.Asset),
			"oldCap": e.OldCap.String(),
			"newCap": e.NewCap.String(),
			"caller": e.Caller.Hex(),
		},
	}
}

// BridgeProtocolFeeUpdated captures a protocol fee rate change.
type BridgeProtocolFeeUpdated struct {
	OldFeeBps uint64
	NewFeeBps uint64
	Caller    common.Address
}

func (BridgeProtocolFeeUpdated) EventType() string { return TypeBridgeProtocolFeeUpdated }

func (e BridgeProtocolFeeUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeBridgeProtocolFeeUpdated,
		Attributes: map[string]string{
			"oldFeeBps": strconv.FormatUint(e.OldFeeBps, 10),
			"newFeeBps": strconv.FormatUint(e.NewFeeBps, 10),
			"caller":    e.Caller.Hex(),
		},
	}
}

func normalizeAsset(asset string) string {
	trimmed := strings.TrimSpace(asset)
	if trimmed == "" {
		return ""
	}
	return strings.ToUpper(trimmed)
}
