package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderSwapSettled(t *testing.T) {
	SwapsSettled.Reset()
	AmountIn.Reset()
	AmountOut.Reset()

	rec := Recorder{}
	rec.SwapSettled("BID", 1000, 500)
	rec.SwapSettled("BID", 2000, 900)
	rec.SwapSettled("ASK", 1, 1)

	if got := testutil.ToFloat64(SwapsSettled.WithLabelValues("BID")); got != 2 {
		t.Errorf("SwapsSettled[BID] = %f, want 2", got)
	}
	if got := testutil.ToFloat64(SwapsSettled.WithLabelValues("ASK")); got != 1 {
		t.Errorf("SwapsSettled[ASK] = %f, want 1", got)
	}
}

func TestRecorderSwapRejected(t *testing.T) {
	SwapsRejected.Reset()

	rec := Recorder{}
	rec.SwapRejected("BID", "VALIDATED")
	rec.SwapRejected("BID", "VALIDATED")
	rec.SwapRejected("ASK", "DISPATCHED")

	if got := testutil.ToFloat64(SwapsRejected.WithLabelValues("BID", "VALIDATED")); got != 2 {
		t.Errorf("SwapsRejected[BID,VALIDATED] = %f, want 2", got)
	}
	if got := testutil.ToFloat64(SwapsRejected.WithLabelValues("ASK", "DISPATCHED")); got != 1 {
		t.Errorf("SwapsRejected[ASK,DISPATCHED] = %f, want 1", got)
	}
}
