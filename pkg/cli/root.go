/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/vectorweight/vectorweight/pkg/logging"
)

const (
	name           = "vectorweight"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Shared flags used by several commands.
var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output destination: file path, cm://namespace/name, or stdout when empty",
	}
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   "yaml",
		Usage:   "Output format: yaml, json, or table",
	}
	kubeconfigFlag = &cli.StringFlag{
		Name:    "kubeconfig",
		Sources: cli.EnvVars("KUBECONFIG"),
		Usage:   "Path to kubeconfig for ConfigMap and cluster access",
	}
	fileFlag = &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f", "config", "c"},
		Required: true,
		Usage:    "Path or HTTP(S) URL of the deployment specification",
	}
)

// Root builds the top-level command.
func Root() *cli.Command {
	return &cli.Command{
		Name:    name,
		Version: version,
		Usage:   "Generate GitOps deployment artifacts for multi-cluster environments",
		Description: fmt.Sprintf(`vectorweight - GitOps deployment artifact generator

Version: %s
Commit:  %s
Built:   %s

Reads a declarative deployment specification describing clusters, sizing
tiers, and chart sources, then renders per-cluster Argo CD application
trees with deterministic, fingerprint-tracked output.`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars(logging.EnvLogLevel),
				Usage:   "Log level: debug, info, warn, error",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date)
			return ctx, nil
		},
		Commands: []*cli.Command{
			initCmd(),
			validateCmd(),
			generateCmd(),
			statusCmd(),
		},
	}
}

// Execute runs the CLI with signal-aware cancellation. Called by
// main.main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Root().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
