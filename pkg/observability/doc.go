/*
Package observability turns engine lifecycle hooks into telemetry.

Metrics exports Prometheus collectors for node visits and run outcomes.
LoggingHooks writes an audit trail of every transition to a slog.Logger.
Both return domain.LifecycleHooks and can be combined with Merge.
*/
package observability
