package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m
		}
	}
	return nil
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := chi.NewRouter()
	r.Use(Prometheus(WithRegistry(reg)))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	})

	for _, path := range []string{"/items/1", "/items/2", "/items/missing", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	tests := []struct {
		labels map[string]string
		want   float64
	}{
		{map[string]string{"route": "/items/{id}", "status": "2xx"}, 2},
		{map[string]string{"route": "/items/{id}", "status": "4xx"}, 1},
		{map[string]string{"route": "unmatched", "status": "4xx"}, 1},
	}
	for _, tt := range tests {
		m := findMetric(t, reg, "domkit_http_requests_total", tt.labels)
		if m == nil {
			t.Errorf("no series for %v", tt.labels)
			continue
		}
		if got := m.GetCounter().GetValue(); got != tt.want {
			t.Errorf("requests_total%v = %v, want %v", tt.labels, got, tt.want)
		}
	}

	h := findMetric(t, reg, "domkit_http_request_duration_seconds", map[string]string{"route": "/items/{id}"})
	if h == nil || h.GetHistogram().GetSampleCount() != 3 {
		t.Errorf("duration histogram = %v", h)
	}
	g := findMetric(t, reg, "domkit_http_requests_in_flight", nil)
	if g == nil || g.GetGauge().GetValue() != 0 {
		t.Errorf("in flight = %v", g)
	}
}

func TestPrometheusOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := chi.NewRouter()
	r.Use(Prometheus(
		WithRegistry(reg),
		WithNamespace("app"),
		WithSubsystem("web"),
		WithConstLabels(prometheus.Labels{"env": "test"}),
		WithBuckets([]float64{0.1, 1}),
	))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	m := findMetric(t, reg, "app_web_requests_total", map[string]string{"env": "test", "status": "2xx"})
	if m == nil || m.GetCounter().GetValue() != 1 {
		t.Errorf("requests_total = %v", m)
	}
	h := findMetric(t, reg, "app_web_request_duration_seconds", nil)
	if h == nil || len(h.GetHistogram().GetBucket()) != 2 {
		t.Errorf("histogram buckets = %v", h)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{0: "2xx", 200: "2xx", 204: "2xx", 301: "3xx", 404: "4xx", 503: "5xx"}
	for code, want := range tests {
		if got := statusClass(code); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestOpenTelemetryContinuesTrace(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	var got trace.SpanContext
	extracted := false
	r := chi.NewRouter()
	r.Use(OpenTelemetry(
		WithTracerName("test"),
		WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			extracted = true
			return nil
		}),
	))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		got = SpanFromContext(r.Context()).SpanContext()
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got.TraceID().String() != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("TraceID = %s, want the propagated trace", got.TraceID())
	}
	if !extracted {
		t.Error("attribute extractor was not called")
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	var got trace.SpanContext
	r := chi.NewRouter()
	r.Use(OpenTelemetry(WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/healthz"
	})))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		got = SpanFromContext(r.Context()).SpanContext()
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got.IsValid() {
		t.Error("filtered request should not carry a span")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
