// Package api hosts the read-only status HTTP server. Notable routes:
//   - GET /healthz and /readyz for liveness and readiness probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /api/summaries and /api/summaries/{slug} for run summaries.
//   - GET /api/records/{slug} for windowed access to a jurisdiction's
//     record log.
package api
