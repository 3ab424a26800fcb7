package http

import (
	"go.opentelemetry.io/otel/metric"
)

type serverMetrics struct {
	connections metric.Int64Counter
	active      metric.Int64UpDownCounter
	requests    metric.Int64Counter
	parseErrors metric.Int64Counter
	duration    metric.Float64Histogram
}

func newServerMetrics(meter metric.Meter) (*serverMetrics, error) {
	var (
		m   serverMetrics
		err error
	)

	m.connections, err = meter.Int64Counter("rawhttp.server.connections",
		metric.WithDescription("Number of accepted connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}

	m.active, err = meter.Int64UpDownCounter("rawhttp.server.active_connections",
		metric.WithDescription("Number of connections currently being served"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}

	m.requests, err = meter.Int64Counter("rawhttp.server.requests",
		metric.WithDescription("Number of responses written, by status code"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	m.parseErrors, err = meter.Int64Counter("rawhttp.server.parse_errors",
		metric.WithDescription("Number of requests that failed to parse, by kind"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	m.duration, err = meter.Float64Histogram("rawhttp.server.request.duration",
		metric.WithDescription("Time from accept to close of a connection"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &m, nil
}
