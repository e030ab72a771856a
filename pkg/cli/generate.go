/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/vectorweight/vectorweight/pkg/defaults"
	"github.com/vectorweight/vectorweight/pkg/errors"
	"github.com/vectorweight/vectorweight/pkg/oci"
	"github.com/vectorweight/vectorweight/pkg/orchestrator"
	"github.com/vectorweight/vectorweight/pkg/serializer"
)

// Exit codes distinguish failure classes for scripting.
const (
	exitCodeValidation     = 1
	exitCodeSource         = 2
	exitCodeRender         = 3
	exitCodePartialFailure = 4
)

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "generate",
		EnableShellCompletion: true,
		Usage:                 "Generate per-cluster GitOps artifact trees",
		Description: `Generate the deployment artifact tree for every cluster in the
specification.

Clusters whose inputs are unchanged since the last run are skipped based
on a content fingerprint; use --force to regenerate everything. Under the
automated sync policy, one cluster failing does not stop the others.

# Exit Codes

  0  all clusters generated or up to date
  1  specification failed validation
  2  every cluster failed on source resolution
  3  every cluster failed on rendering
  4  some clusters failed, others succeeded

# Examples

Generate into ./deploy:
  vectorweight generate --file vectorweight.yaml

Preview without writing anything:
  vectorweight generate -f vectorweight.yaml --dry-run

Write the run report for CI:
  vectorweight generate -f vectorweight.yaml -o report.json -t json`,
		Flags: []cli.Flag{
			fileFlag,
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"d"},
				Value:   "deploy",
				Usage:   "Root directory for generated artifact trees",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Regenerate even when fingerprints are unchanged",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Render in memory without writing artifacts or state",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Maximum clusters generated concurrently",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaults.GenerateRunTimeout,
				Usage: "Overall run timeout",
			},
			&cli.StringFlag{
				Name:  "publish",
				Usage: "Push the generated tree as an OCI artifact (oci://registry/repo[:tag])",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP for the publish registry connection",
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

			runCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			report, err := orchestrator.GenerateAll(runCtx, spec, orchestrator.Options{
				OutputDir: cmd.String("output-dir"),
				Force:     cmd.Bool("force"),
				DryRun:    cmd.Bool("dry-run"),
				Workers:   int(cmd.Int("workers")),
				Version:   version,
			})

			if report != nil {
				ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
				defer closeSerializer(ser)
				if serErr := ser.Serialize(ctx, report); serErr != nil {
					slog.Warn("failed to serialize report", "error", serErr)
				}
			}

			if err != nil {
				if errors.CodeOf(err) == errors.ErrCodeValidation {
					return cli.Exit(err.Error(), exitCodeValidation)
				}
				return cli.Exit(err.Error(), exitCodeForReport(report))
			}
			if report.HasFailures() {
				return cli.Exit(
					fmt.Sprintf("%d of %d cluster(s) failed", report.Failed, len(report.Clusters)),
					exitCodeForReport(report))
			}

			if target := cmd.String("publish"); target != "" && !cmd.Bool("dry-run") {
				if err := publish(ctx, target, cmd.String("output-dir"), cmd.Bool("plain-http")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// publish pushes the generated tree to an OCI registry. The tag defaults to
// the build version when the reference does not carry one.
func publish(ctx context.Context, target, outputDir string, plainHTTP bool) error {
	ref, err := oci.ParseOutputTarget(target)
	if err != nil {
		return cli.Exit(err.Error(), exitCodeValidation)
	}
	if !ref.IsOCI {
		return cli.Exit(fmt.Sprintf("publish target %q must be an oci:// reference", target),
			exitCodeValidation)
	}

	tag := ref.Tag
	if tag == "" {
		tag = version
	}
	result, err := oci.Push(ctx, oci.PushOptions{
		SourceDir:  outputDir,
		Registry:   ref.Registry,
		Repository: ref.Repository,
		Tag:        tag,
		PlainHTTP:  plainHTTP,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", ref.ImageReference(), err)
	}

	slog.Info("artifact tree published",
		"reference", result.Reference, "digest", result.Digest)
	return nil
}

// exitCodeForReport classifies a failed run: a uniform failure class maps
// to its dedicated code, anything mixed or partial is a partial failure.
func exitCodeForReport(report *orchestrator.Report) int {
	if report == nil || !report.HasFailures() {
		return exitCodePartialFailure
	}
	if !report.AllFailed() {
		return exitCodePartialFailure
	}

	allSource, allRender := true, true
	for _, c := range report.Clusters {
		if c.Status != orchestrator.StatusFailed {
			continue
		}
		if !errors.IsSourceError(c.ErrorCode) {
			allSource = false
		}
		if !errors.IsRenderError(c.ErrorCode) {
			allRender = false
		}
	}
	switch {
	case allSource:
		return exitCodeSource
	case allRender:
		return exitCodeRender
	default:
		return exitCodePartialFailure
	}
}
