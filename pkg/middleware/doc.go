// Package middleware provides HTTP middleware for metrics and tracing.
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - domkit_http_requests_total: requests by route, method and status class
//   - domkit_http_request_duration_seconds: request duration histogram
//   - domkit_http_requests_in_flight: requests being served
//
//	reg := prometheus.NewRegistry()
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//
// # OpenTelemetry
//
// The OpenTelemetry middleware starts a server span per request and
// continues any trace propagated in the request headers:
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// Handlers reach the span through SpanFromContext(r.Context()).
package middleware
