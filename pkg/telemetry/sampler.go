package telemetry

import (
	"strconv"

	"go.opentelemetry.io/otel/sdk/trace"
)

// createSampler maps OTEL_TRACES_SAMPLER to a sampler. Unknown or empty
// values sample everything.
func createSampler(cfg *Config) trace.Sampler {
	switch cfg.Sampler {
	case "always_off":
		return trace.NeverSample()
	case "traceidratio":
		return trace.TraceIDRatioBased(parseRatio(cfg.SamplerArg))
	case "parentbased_always_on":
		return trace.ParentBased(trace.AlwaysSample())
	case "parentbased_always_off":
		return trace.ParentBased(trace.NeverSample())
	case "parentbased_traceidratio":
		return trace.ParentBased(trace.TraceIDRatioBased(parseRatio(cfg.SamplerArg)))
	default:
		return trace.AlwaysSample()
	}
}

// parseRatio clamps the sampler argument to [0, 1], falling back to 1.
func parseRatio(s string) float64 {
	ratio, err := strconv.ParseFloat(s, 64)
	switch {
	case err != nil:
		return 1.0
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1.0
	default:
		return ratio
	}
}
