// Package metrics exposes Prometheus instrumentation for the dispatch cycle.
//
// A Metrics value owns its collectors and registers them on the registerer it
// is built with, so tests can use a private prometheus.Registry. The app
// records one observation per dispatched request, labelled with the outcome
// kind (ok, not_found, unauthorized, error) and the controller name.
package metrics
