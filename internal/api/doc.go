// Package api hosts the HTTP server, middleware, and handlers that trigger
// snapshot generation. Notable routes:
//   - OPTIONS, GET and POST /generate-static-pages run the generator inline
//     and return the run report.
//   - GET /v1/runs/latest returns the report of the last completed run.
//   - GET /healthz and /readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
package api
