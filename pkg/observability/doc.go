/*
Package observability turns engine lifecycle hooks into Prometheus metrics and
structured log records.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := domain.ChainHooks(metrics.Hooks(), observability.LoggingHooks(logger))
*/
package observability
