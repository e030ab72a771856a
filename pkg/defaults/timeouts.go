/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package defaults centralizes timeout and limit constants so related
// values stay consistent across the CLI, the server, and the pipeline.
package defaults

import "time"

// Generation timeouts for pipeline operations.
const (
	// SourceResolveTimeout bounds a single source resolution attempt,
	// including clone, fetch, and archive extraction.
	SourceResolveTimeout = 2 * time.Minute

	// GenerateRunTimeout is the default ceiling for a full multi-cluster
	// generation run.
	GenerateRunTimeout = 10 * time.Minute

	// GenerateHandlerTimeout is the timeout for generate requests served
	// over HTTP. Shorter than GenerateRunTimeout: API callers get dry-run
	// semantics by default and should not hold connections for minutes.
	GenerateHandlerTimeout = 60 * time.Second
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading a request.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 90 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

// Kubernetes timeouts.
const (
	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	ConfigMapWriteTimeout = 30 * time.Second

	// StatusQueryTimeout is the timeout for reading Application status
	// from a cluster.
	StatusQueryTimeout = 30 * time.Second
)
