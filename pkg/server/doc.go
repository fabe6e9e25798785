// Package server provides an HTTP API server fronting the graph compiler.
// It enables programmatic access to compilation with support for:
//   - RESTful compile endpoint (POST /api/v1/compile)
//   - A registry of tool and pipeline definitions (/api/v1/tools, /api/v1/pipelines)
//   - Health check and readiness endpoints
//   - Prometheus metrics endpoint
//   - Request/response logging and tracing
//   - Graceful shutdown
package server
