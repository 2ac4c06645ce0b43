// Package app wires the Olist dashboard together and manages its lifecycle.
//
// Startup order:
//
//  1. Load configuration from defaults, the YAML file and OLIST_* variables
//  2. Initialize logging and OpenTelemetry
//  3. Load and clean the dataset (fatal on failure)
//  4. Build the query pipeline and the dashboard services
//  5. Set up the router, middleware and the HTTP server
//
// Run blocks until SIGINT or SIGTERM and then shuts down gracefully,
// closing open WebSocket sessions after the HTTP server has drained.
package app
