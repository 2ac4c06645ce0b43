// Package websocket serves dashboard queries over a WebSocket connection.
//
// Each connection is a Session. The client sends one JSON api.QueryRequest
// per message and receives one api.WSResponse per request, in order. A
// response carries either the query result or RFC 7807 problem details.
// The Hub tracks open sessions so they can be closed on shutdown.
package websocket
