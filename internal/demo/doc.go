// Package demo serves a page built from an element description together
// with the toast and request APIs, so the library can be exercised from a
// browser or with curl.
//
// Routes:
//
//	GET    /                     page rendered from the description
//	GET    /ws                   toast event stream
//	GET    /api/toast            active toast ids
//	POST   /api/toast            show a toast
//	DELETE /api/toast/{id}       remove a toast early
//	GET    /api/problem/{status} failure responses in every supported shape
//	POST   /api/check            fetch a URL and toast its problem, if any
//	GET    /metrics              Prometheus metrics
//	GET    /healthz              liveness
package demo
