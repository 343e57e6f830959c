// Package infra contains technical adapters: the roster feed, routing
// client, Postgres history store, audit sinks and metrics exporters.
// These packages depend only on interfaces defined in core.
package infra
