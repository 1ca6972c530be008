package events

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestUnbackedMintedEvent(t *testing.T) {
	caller := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000ee")

	evt := UnbackedMinted{
		Asset:        " usdc ",
		Amount:       big.NewInt(1234),
		Caller:       caller,
		OnBehalfOf:   recipient,
		ReferralCode: 42,
	}.Event()

	if evt.Type != TypeUnbackedMinted {
		t.Fatalf("unexpected event type %q", evt.Type)
	}
	if evt.Attributes["asset"] != "USDC" {
		t.Fatalf("expected normalised asset, got %q", evt.Attributes["asset"])
	}
	if evt.Attributes["amount"] != "1234" {
		t.Fatalf("unexpected amount %q", evt.Attributes["amount"])
	}
	if evt.Attributes["referralCode"] != "42" {
		t.Fatalf("unexpected referral code %q", evt.Attributes["referralCode"])
	}
	if evt.Attributes["caller"] != caller.Hex() || evt.Attributes["onBehalfOf"] != recipient.Hex() {
		t.Fatalf("unexpected addresses %v", evt.Attributes)
	}
}

func TestBackUnbackedEventDefaultsNilAmounts(t *testing.T) {
	evt := BackUnbacked{Asset: "DAI"}.Event()
	if evt.Attributes["backingAmount"] != "0" || evt.Attributes["fee"] != "0" {
		t.Fatalf("expected zero defaults, got %v", evt.Attributes)
	}
}
