// Package http implements the HTTP handlers of the Olist dashboard.
//
// Handlers stay thin: they decode the query string into an
// api.QueryRequest, validate it, convert it to analytics parameters and hand
// it to the dashboard service. Every failure is rendered as RFC 7807 problem
// details by the shared errors.ErrorHandler.
//
// Routes mounted under /api/dashboard:
//
//	GET /questions               question selector entries
//	GET /questions/{question}    one question
//	GET /bounds                  default date range
//	GET /query/{question}        run a question
//	GET /export/{question}       run a question and download csv or xlsx
//
// Health routes are mounted under /api/health, with /api/version alongside.
package http
