package upload

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "filedrop/upload"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
