package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveExchangeRequest(t *testing.T) {
	before := testutil.ToFloat64(ExchangeRequestsTotal.WithLabelValues("GET", "/fapi/v1/ping", "200"))

	ObserveExchangeRequest("GET", "/fapi/v1/ping", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(ExchangeRequestsTotal.WithLabelValues("GET", "/fapi/v1/ping", "200"))
	if after-before != 1 {
		t.Errorf("request counter delta = %v, want 1", after-before)
	}
}

func TestSetAcceptedSignal(t *testing.T) {
	SetAcceptedSignal("sell")

	if v := testutil.ToFloat64(AcceptedSignal.WithLabelValues("sell")); v != 1 {
		t.Errorf("sell gauge = %v, want 1", v)
	}
	if v := testutil.ToFloat64(AcceptedSignal.WithLabelValues("buy")); v != 0 {
		t.Errorf("buy gauge = %v, want 0", v)
	}
	if v := testutil.ToFloat64(AcceptedSignal.WithLabelValues("none")); v != 0 {
		t.Errorf("none gauge = %v, want 0", v)
	}
}
