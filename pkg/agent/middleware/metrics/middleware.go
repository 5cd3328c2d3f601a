package metrics

import (
	"context"
	"time"

	"copysmith/pkg/agent/llm"
	"copysmith/pkg/agent/llmerrors"
	"copysmith/pkg/config"
	"copysmith/pkg/utils"
)

// Middleware wraps an llm.Client and records per-request metrics.
type Middleware struct {
	inner    llm.Client
	recorder Recorder
	counter  *utils.TokenCounter
}

// Wrap decorates client with metrics recording.
func Wrap(client llm.Client, recorder Recorder) *Middleware {
	counter, err := utils.NewTokenCounter()
	if err != nil {
		counter = nil // CountTokens falls back to the character estimate
	}
	return &Middleware{
		inner:    client,
		recorder: recorder,
		counter:  counter,
	}
}

// Complete implements llm.Client.
func (m *Middleware) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	start := time.Now()
	resp, err := m.inner.Complete(ctx, in)
	duration := time.Since(start)

	model := m.inner.GetModelName()
	if err != nil {
		m.recorder.ObserveRequest(model, 0, 0, 0, false, llmerrors.TypeOf(err).String(), duration)
		return resp, err
	}

	promptTokens := 0
	for i := range in.Messages {
		promptTokens += m.counter.CountTokens(in.Messages[i].Content)
	}
	completionTokens := m.counter.CountTokens(resp.Content)

	m.recorder.ObserveRequest(model, promptTokens, completionTokens,
		estimateCost(model, promptTokens, completionTokens), true, "", duration)
	return resp, nil
}

// GetModelName implements llm.Client.
func (m *Middleware) GetModelName() string {
	return m.inner.GetModelName()
}

// estimateCost converts estimated token counts to USD using the known-model
// registry. Unknown models cost zero.
func estimateCost(model string, promptTokens, completionTokens int) float64 {
	info, ok := config.KnownModels[model]
	if !ok {
		return 0
	}
	return float64(promptTokens)/1e6*info.InputCPM + float64(completionTokens)/1e6*info.OutputCPM
}
