// Package services implements the presentation-facing layer of the Olist
// dashboard. It sits between the transports (HTTP, WebSocket, CLI) and the
// query pipeline.
//
// # Services
//
//	- DashboardService: question catalog, query execution, date bounds
//	- HealthService: liveness, readiness and version information
//
// DashboardService attaches the static caption and chart hint of a question
// to every result. A result with no rows is returned normally with
// EmptyResultWarning in its warnings and a WARN log line; the renderer draws
// an empty chart with the same caption.
//
// # Request conversion
//
// ParamsFromRequest turns a validated api.QueryRequest into analytics.Params.
// Dates are calendar days and a range given with one bound is open on the
// other side (score ranges are capped at 5).
//
// # Testing
//
// DashboardService depends on the QueryRunner interface, which
// *analytics.Pipeline satisfies; tests use testify mocks for it.
package services
