package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSessionLifecycleMetrics(t *testing.T) {
	m := NewMetrics()

	m.SessionStarted("idd")
	m.SessionStarted("ben")
	if got := testutil.ToFloat64(m.activeSessions); got != 2 {
		t.Fatalf("active sessions = %v, want 2", got)
	}

	m.SessionFinished("idd", "COMPLETE", 4)
	if got := testutil.ToFloat64(m.activeSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.sessionsStarted.WithLabelValues("idd")); got != 1 {
		t.Errorf("sessions started{idd} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.sessionsFinished.WithLabelValues("idd", "COMPLETE")); got != 1 {
		t.Errorf("sessions finished{idd,COMPLETE} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.sessionRounds); got != 1 {
		t.Errorf("session rounds series = %d, want 1", got)
	}
}

func TestExecutionMetrics(t *testing.T) {
	m := NewMetrics()

	m.ExecutionObserved(OutcomePass, 10*time.Millisecond)
	m.ExecutionObserved(OutcomePass, 20*time.Millisecond)
	m.ExecutionObserved(OutcomeFail, time.Second)
	m.ExecutionObserved(OutcomeForbidden, 0)
	m.ProbesRequested("aifl", 3)
	m.ProbesRequested("aifl", 0)
	m.CombinationsFound("aifl", 2)

	tests := []struct {
		outcome string
		want    float64
	}{
		{OutcomePass, 2},
		{OutcomeFail, 1},
		{OutcomeForbidden, 1},
		{OutcomeError, 0},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.executions.WithLabelValues(tt.outcome)); got != tt.want {
			t.Errorf("executions{%s} = %v, want %v", tt.outcome, got, tt.want)
		}
	}
	if got := testutil.ToFloat64(m.probesRequested.WithLabelValues("aifl")); got != 3 {
		t.Errorf("probes requested = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.combinationsFound.WithLabelValues("aifl")); got != 2 {
		t.Errorf("combinations found = %v, want 2", got)
	}

	// Forbidden probes are not executed and are excluded from the histogram.
	body := scrape(t, m)
	if want := "faultchar_execution_duration_seconds_count 3"; !strings.Contains(body, want) {
		t.Errorf("metrics output missing %q", want)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SessionStarted("idd")
	m.SessionFinished("idd", "FAILED", 0)
	m.ProbesRequested("idd", 1)
	m.ExecutionObserved(OutcomePass, time.Millisecond)
	m.CombinationsFound("idd", 1)
	m.StoreObserved("create", time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.SessionStarted("idd")
	m.StoreObserved("update", 2*time.Millisecond)

	body := scrape(t, m)
	for _, want := range []string{
		`faultchar_sessions_started_total{algorithm="idd"} 1`,
		`faultchar_sessions_active 1`,
		`faultchar_store_transaction_duration_seconds_count{operation="update"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}
