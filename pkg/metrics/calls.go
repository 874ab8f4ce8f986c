package metrics

import "time"

// DefaultBuckets are the histogram buckets for call durations in seconds.
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Outcome label of a successful call or pipeline.
const OutcomeOK = "ok"

// Calls records interface calls and pipeline runs served by the proxy.
//
// Metrics:
//
//	modelproxy_interface_calls_total{interface,state,outcome}
//	modelproxy_interface_call_duration_seconds{interface,state}
//	modelproxy_pipeline_runs_total{mode,outcome}
//
// state is the dispatcher state (LIVE, MOCK_SUCCESS, MOCK_ERROR) and outcome
// is OutcomeOK or the error code reported to the client.
type Calls struct {
	Registry *Registry

	calls     *Counter
	duration  *Histogram
	pipelines *Counter
}

// NewCalls registers the call metrics in reg. A nil reg gets a fresh registry.
func NewCalls(reg *Registry) *Calls {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Calls{
		Registry:  reg,
		calls:     reg.NewCounter("modelproxy_interface_calls_total", "Interface calls by dispatcher state and outcome.", "interface", "state", "outcome"),
		duration:  reg.NewHistogram("modelproxy_interface_call_duration_seconds", "Interface call duration in seconds.", DefaultBuckets, "interface", "state"),
		pipelines: reg.NewCounter("modelproxy_pipeline_runs_total", "Pipeline runs by mode and outcome.", "mode", "outcome"),
	}
}

// ObserveCall records one interface call.
func (c *Calls) ObserveCall(interfaceID, state, outcome string, elapsed time.Duration) {
	if v, err := c.calls.WithLabels(interfaceID, state, outcome); err == nil {
		_ = v.Inc()
	}
	if v, err := c.duration.WithLabels(interfaceID, state); err == nil {
		v.Observe(elapsed.Seconds())
	}
}

// ObservePipeline records one pipeline run.
func (c *Calls) ObservePipeline(mode, outcome string) {
	if v, err := c.pipelines.WithLabels(mode, outcome); err == nil {
		_ = v.Inc()
	}
}
