// Package api handles incoming HTTP requests for the progression engine:
// request decoding, error mapping and response formatting. Handlers are thin
// adapters over the services in internal/service; routing and middleware
// order are assembled by the server in cmd/server.
//
// Every error response has the shape {"error": "...", "trace_id": "..."}.
// Internal errors are mapped to status codes by MapErrorToStatusCode and
// logged only after passing through internal/redact.
package api
