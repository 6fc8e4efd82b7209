package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestObserveSweep(t *testing.T) {
	m := New()
	m.ObserveSweep(120*time.Millisecond, 2, 1)
	m.ObserveSweep(80*time.Millisecond, 1, 0)

	body := scrape(t, m)
	for _, want := range []string{
		"moneta_budget_rollovers_total 3",
		"moneta_budget_rollover_failures_total 1",
		"moneta_sweep_duration_seconds_count 2",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestMiddlewareLabelsRoutes(t *testing.T) {
	m := New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /budgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	})
	limited := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	h := m.Middleware(limited(mux))

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"found", http.MethodGet, "/budgets/a1"},
		{"found again", http.MethodGet, "/budgets/b2"},
		{"not found", http.MethodGet, "/budgets/missing"},
		{"unrouted", http.MethodGet, "/nowhere"},
		{"rejected before routing", http.MethodPost, "/budgets/a1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))
		})
	}

	body := scrape(t, m)
	for _, want := range []string{
		`moneta_http_requests_total{method="GET",route="GET /budgets/{id}",status="200"} 2`,
		`moneta_http_requests_total{method="GET",route="GET /budgets/{id}",status="404"} 1`,
		`moneta_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		`moneta_http_requests_total{method="POST",route="rate_limited",status="429"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q\n%s", want, body)
		}
	}
}
