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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/header"
	"github.com/vectorweight/vectorweight/pkg/serializer"
	"github.com/vectorweight/vectorweight/pkg/validator"
)

// loadSpec reads and parses a deployment specification from a file path
// or HTTP(S) URL.
func loadSpec(ctx context.Context, path string) (*config.DeploymentSpecification, error) {
	var data []byte
	var err error

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		data, err = serializer.NewHTTPReader().ReadWithContext(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read specification from %q: %w", path, err)
	}

	return config.Parse(data)
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate a deployment specification",
		Description: `Validate a deployment specification without generating anything.

All schema, semantic, and cross-reference problems are collected and
reported together with field paths; the command never stops at the first
error. Warnings do not affect the exit code.

# Examples

Validate and print the summary:
  vectorweight validate --config vectorweight.yaml

Include every issue with its field path:
  vectorweight validate --config vectorweight.yaml --detailed

Write the result as JSON for CI:
  vectorweight validate -f vectorweight.yaml --detailed -o result.json -t json`,
		Flags: []cli.Flag{
			fileFlag,
			&cli.BoolFlag{
				Name:  "detailed",
				Usage: "Report every issue with field paths, not just the summary",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", outFormat)
			}

			spec, err := loadSpec(ctx, cmd.String("file"))
			if err != nil {
				return cli.Exit(err.Error(), exitCodeValidation)
			}

			result := validator.Validate(spec)

			// summary only by default; --detailed includes every issue
			var doc any = result
			if !cmd.Bool("detailed") {
				doc = struct {
					header.Header `yaml:",inline"`
					Summary       validator.Summary `json:"summary" yaml:"summary"`
				}{result.Header, result.Summary}
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer closeSerializer(ser)
			if err := ser.Serialize(ctx, doc); err != nil {
				return fmt.Errorf("failed to serialize validation result: %w", err)
			}

			slog.Info("validation completed",
				"valid", result.Summary.Valid,
				"errors", result.Summary.Errors,
				"warnings", result.Summary.Warnings)

			if !result.Valid() {
				return cli.Exit(
					fmt.Sprintf("specification invalid: %d error(s)", result.Summary.Errors),
					exitCodeValidation)
			}
			return nil
		},
	}
}

func closeSerializer(ser serializer.Serializer) {
	if closer, ok := ser.(serializer.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}
}
