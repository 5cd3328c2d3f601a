// Package metrics provides Prometheus-based metrics recording for LLM
// operations.
package metrics

import "time"

// Recorder records the outcome of LLM requests.
type Recorder interface {
	// ObserveRequest records metrics for a completed LLM request. Token
	// counts are estimates derived from text length (the completion
	// contract exposes no usage block).
	ObserveRequest(model string, promptTokens, completionTokens int, cost float64, success bool, errorType string, duration time.Duration)
}

// NoopRecorder discards all observations. Used in tests.
type NoopRecorder struct{}

// ObserveRequest implements Recorder.
func (NoopRecorder) ObserveRequest(string, int, int, float64, bool, string, time.Duration) {}
