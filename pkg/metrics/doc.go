// Package metrics collects counters and histograms and exposes them in the
// Prometheus text format (text/plain; version=0.0.4).
//
// All metrics are safe for concurrent use. Calls bundles the metrics the
// interceptor records for interface calls and pipeline runs:
//
//	calls := metrics.NewCalls(nil)
//	calls.ObserveCall("Shop.list", "MOCK_SUCCESS", metrics.OutcomeOK, time.Since(start))
//	http.Handle("/_metrics", calls.Registry.Handler())
package metrics
