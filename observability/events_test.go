package observability

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"poolbridge/core/events"
)

type sinkEmitter struct {
	received []events.Event
}

func (s *sinkEmitter) Emit(evt events.Event) {
	s.received = append(s.received, evt)
}

func TestCollectorCountsAndForwards(t *testing.T) {
	sink := &sinkEmitter{}
	collector := NewCollector(sink)

	mintsBefore := testutil.ToFloat64(Events().unbackedMints.WithLabelValues("USDC"))
	backsBefore := testutil.ToFloat64(Events().backUnbacked.WithLabelValues("USDC"))

	collector.Emit(events.UnbackedMinted{Asset: "usdc", Amount: big.NewInt(1)})
	collector.Emit(events.BackUnbacked{Asset: "USDC", BackingAmount: big.NewInt(1)})
	collector.Emit(events.BridgeProtocolFeeUpdated{NewFeeBps: 100})

	require.Equal(t, mintsBefore+1, testutil.ToFloat64(Events().unbackedMints.WithLabelValues("USDC")))
	require.Equal(t, backsBefore+1, testutil.ToFloat64(Events().backUnbacked.WithLabelValues("USDC")))
	require.Len(t, sink.received, 3)
}

func TestCollectorNilSinkIsSafe(t *testing.T) {
	collector := NewCollector(nil)
	require.NotPanics(t, func() {
		collector.Emit(events.UnbackedMinted{Asset: "DAI", Amount: big.NewInt(1)})
	})
}
