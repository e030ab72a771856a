/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package api exposes the generation pipeline over HTTP.
package api

import (
	"context"
	"log/slog"
	"os"

	"github.com/vectorweight/vectorweight/pkg/logging"
	"github.com/vectorweight/vectorweight/pkg/server"
)

const (
	name           = "vectorweightd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags, e.g.
	// -X "github.com/vectorweight/vectorweight/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until shutdown. The output
// directory for non-dry-run generation comes from VECTORWEIGHT_OUTPUT_DIR;
// when unset the server only serves dry runs.
func Serve() error {
	ctx := context.Background()

	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	h := NewHandler(os.Getenv("VECTORWEIGHT_OUTPUT_DIR"), version, 0)

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandlers(h.Routes()),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}
