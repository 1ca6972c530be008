package bridge

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	nativecommon "poolbridge/native/common"
)

type stubPauseView struct {
	modules map[string]bool
}

func (s stubPauseView) IsPaused(module string) bool {
	if s.modules == nil {
		return false
	}
	return s.modules[module]
}

func TestPauseGuardBlocksMutation(t *testing.T) {
	h := newTestHarness()
	if err := h.initReserve(18, nil); err != nil {
		t.Fatalf("init reserve: %v", err)
	}
	h.engine.SetPauses(stubPauseView{modules: map[string]bool{"bridge": true}})

	if _, err := h.engine.MintUnbacked(h.bridge, testAsset, wholeTokens(1, 18), h.user, 0); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
	if _, err := h.engine.BackUnbacked(h.bridge, testAsset, wholeTokens(1, 18), big.NewInt(0)); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}

	if unbacked := h.storedReserve().Unbacked; unbacked.Sign() != 0 {
		t.Fatalf("expected unbacked unchanged, got %s", unbacked)
	}
}

func TestConcurrentMintsOnDifferentAssets(t *testing.T) {
	h := newTestHarness()
	assets := []string{"USDC", "DAI", "WETH"}
	for _, asset := range assets {
		if err := h.engine.InitReserve(asset, 18, nil); err != nil {
			t.Fatalf("init %s: %v", asset, err)
		}
	}

	var wg sync.WaitGroup
	for _, asset := range assets {
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(asset string) {
				defer wg.Done()
				if _, err := h.engine.MintUnbacked(h.bridge, asset, wholeTokens(1, 18), h.user, 0); err != nil {
					t.Errorf("mint %s: %v", asset, err)
				}
			}(asset)
		}
	}
	wg.Wait()

	for _, asset := range assets {
		reserve := h.state.reserve(asset)
		if reserve.Unbacked.Cmp(wholeTokens(8, 18)) != 0 {
			t.Fatalf("expected %s unbacked 8 tokens, got %s", asset, reserve.Unbacked)
		}
	}
	if got := len(h.emitter.emitted); got != len(assets)*8 {
		t.Fatalf("expected %d mint events, got %d", len(assets)*8, got)
	}
}
