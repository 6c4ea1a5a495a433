// Package http provides the gin handlers of the panel API.
//
// Every response is JSON with a "success" flag; failures carry "error" and,
// for external tool failures, the process error "kind". Status codes:
//   - 400 invalid input
//   - 404 unknown repository or session
//   - 502 the package manager, container tool or terminal failed
//   - 503 no catalog could be built yet
//   - 504 an external tool timed out
//
// Endpoints:
//   - GET /catalog, POST /catalog/refresh
//   - GET /repositories, GET /repositories/:id/packages
//   - GET /containers/presets, GET /containers/:name/count,
//     GET /containers/:name/decision, POST /containers/:name/launch
//   - GET /sessions, GET|DELETE /sessions/:id, POST /sessions/:id/input,
//     POST /sessions/:id/resize, GET /sessions/:id/output
//   - GET /services, POST /services/discover, POST /services/execute
//   - POST /logs
package http
