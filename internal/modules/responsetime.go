package modules

import (
	"context"
	"time"

	"github.com/subsort/subsort/pkg/types"
)

const latencySamples = 3

// ResponseTime samples request latency and buckets the target.
type ResponseTime struct{ base }

func (m *ResponseTime) Name() string        { return "responsetime" }
func (m *ResponseTime) Description() string { return "response latency profiling" }

func (m *ResponseTime) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	var samples []float64

	for i := 0; i < latencySamples; i++ {
		start := time.Now()
		_, _, _, ok := m.client.ResolveScheme(ctx, target)
		if ok {
			samples = append(samples, float64(time.Since(start).Milliseconds()))
		}
		if i < latencySamples-1 {
			select {
			case <-time.After(100 * time.Millisecond):
			case <-ctx.Done():
				i = latencySamples
			}
		}
	}

	if len(samples) == 0 {
		return types.Fields{"response_time": nil, "latency_category": nil}, nil
	}

	minMS, maxMS, sum := samples[0], samples[0], 0.0
	for _, s := range samples {
		if s < minMS {
			minMS = s
		}
		if s > maxMS {
			maxMS = s
		}
		sum += s
	}
	avg := sum / float64(len(samples))

	return types.Fields{
		"response_time":         samples[0],
		"response_times":        samples,
		"average_response_time": avg,
		"min_response_time":     minMS,
		"max_response_time":     maxMS,
		"latency_category":      latencyCategory(avg),
	}, nil
}

func latencyCategory(avgMS float64) string {
	switch {
	case avgMS < 100:
		return "excellent"
	case avgMS < 300:
		return "good"
	case avgMS < 1000:
		return "fair"
	case avgMS < 3000:
		return "slow"
	default:
		return "very_slow"
	}
}
