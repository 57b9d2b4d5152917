package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCallObserverCountsCalls(t *testing.T) {
	before := testutil.ToFloat64(OracleCallsTotal.WithLabelValues("score", "ok"))
	CallObserver{}.ObserveCall("score", "ok", 2*time.Second)
	after := testutil.ToFloat64(OracleCallsTotal.WithLabelValues("score", "ok"))
	if after != before+1 {
		t.Fatalf("expected one more call, got %v -> %v", before, after)
	}
}

func TestServerExposesMetrics(t *testing.T) {
	FallbackParsesTotal.Inc()
	srv := NewServer("127.0.0.1:0", nil)
	addr, err := srv.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "vlmbench_fallback_parses_total") {
		t.Fatalf("expected fallback counter in output")
	}
}
