// Package logging provides structured logging utilities shared by the
// vectorweight CLI and API server.
//
// It wraps the standard library slog package with project defaults:
// JSON output to stderr, LOG_LEVEL environment configuration, and
// module/version context on every record.
//
// Typical usage:
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("vectorweight", version)
//	    slog.Info("starting", "clusters", len(spec.Clusters))
//	}
package logging
