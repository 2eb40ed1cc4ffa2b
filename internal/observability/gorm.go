package observability

import (
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// InstrumentDB registers the GORM tracing plugin so every statement becomes
// a child span of the request. A nil provider means the global one. Query
// parameters are left out of span attributes since they carry user content.
func InstrumentDB(db *gorm.DB, tp trace.TracerProvider) error {
	opts := []tracing.Option{
		tracing.WithoutMetrics(),
		tracing.WithoutQueryVariables(),
	}
	if tp != nil {
		opts = append(opts, tracing.WithTracerProvider(tp))
	}
	return db.Use(tracing.NewPlugin(opts...))
}
