package cfg

import "errors"

type OtelConfig struct {
	OTLPEndpoint string
	ServiceName  string
	SamplerRatio float64
}

func (l *Loader) loadOtel() OtelConfig {
	ratio := l.getEnvFloat64OrDefault("OTEL_SAMPLER_RATIO", 1.0)
	if ratio < 0 || ratio > 1 {
		l.errs = append(l.errs, errors.New("OTEL_SAMPLER_RATIO must be between 0 and 1"))
	}

	return OtelConfig{
		OTLPEndpoint: l.getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  l.getEnvWithDefault("OTEL_SERVICE_NAME", "gscgateway"),
		SamplerRatio: ratio,
	}
}

// TracingEnabled reports whether spans should be exported.
func (o OtelConfig) TracingEnabled() bool {
	return o.OTLPEndpoint != ""
}
