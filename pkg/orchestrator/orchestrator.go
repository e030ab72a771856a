/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package orchestrator drives a full generation run: shared source
// resolution, per-cluster merge, idempotence check, render, and atomic
// commit, concurrently across clusters with bounded workers.
package orchestrator

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/errors"
	"github.com/vectorweight/vectorweight/pkg/generator"
	"github.com/vectorweight/vectorweight/pkg/header"
	"github.com/vectorweight/vectorweight/pkg/source"
	"github.com/vectorweight/vectorweight/pkg/state"
	"github.com/vectorweight/vectorweight/pkg/validator"
)

const defaultWorkers = 4

// Options configures a generation run.
type Options struct {
	// OutputDir is the root of the generated artifact tree.
	OutputDir string
	// Force regenerates even when fingerprints match.
	Force bool
	// DryRun renders everything in memory and commits nothing.
	DryRun bool
	// Workers bounds cluster-level concurrency.
	Workers int
	// Version stamps state records and reports.
	Version string
	// Source tunes resolution behavior.
	Source source.Options
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// ClusterStatus is the per-cluster outcome of a run.
type ClusterStatus string

const (
	StatusGenerated ClusterStatus = "generated"
	StatusSkipped   ClusterStatus = "skipped"
	StatusFailed    ClusterStatus = "failed"
)

// ClusterResult records one cluster's outcome.
type ClusterResult struct {
	Cluster     string           `json:"cluster" yaml:"cluster"`
	Status      ClusterStatus    `json:"status" yaml:"status"`
	Fingerprint string           `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	OutputDir   string           `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Files       int              `json:"files,omitempty" yaml:"files,omitempty"`
	Error       string           `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorCode   errors.ErrorCode `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	Duration    time.Duration    `json:"duration_ns,omitempty" yaml:"duration_ns,omitempty"`
}

// Report is the serializable outcome of a run.
type Report struct {
	header.Header `yaml:",inline"`

	RunID        string          `json:"run_id" yaml:"run_id"`
	Project      string          `json:"project" yaml:"project"`
	Mode         string          `json:"mode" yaml:"mode"`
	DryRun       bool            `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	StartedAt    time.Time       `json:"started_at" yaml:"started_at"`
	Duration     time.Duration   `json:"duration_ns" yaml:"duration_ns"`
	Clusters     []ClusterResult `json:"clusters" yaml:"clusters"`
	Generated    int             `json:"generated" yaml:"generated"`
	Skipped      int             `json:"skipped" yaml:"skipped"`
	Failed       int             `json:"failed" yaml:"failed"`
	Repositories []string        `json:"repositories,omitempty" yaml:"repositories,omitempty"`
}

// HasFailures reports whether any cluster failed.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

// AllFailed reports whether no cluster succeeded.
func (r *Report) AllFailed() bool {
	return r.Failed > 0 && r.Generated == 0 && r.Skipped == 0
}

// GenerateAll runs the full pipeline for every cluster in the
// specification. Under the automated sync policy, cluster failures are
// isolated and the run continues; under manual, the first failure cancels
// the rest. State-integrity failures (corrupt or locked state files) cancel
// the run under either policy. The returned error is non-nil only for
// run-level failures (invalid specification, state integrity, canceled
// context); other per-cluster failures live in the report.
func GenerateAll(ctx context.Context, spec *config.DeploymentSpecification, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	start := time.Now()

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: start.UTC(),
		DryRun:    opts.DryRun,
	}
	report.Init(header.KindGenerationReport, opts.Version)
	if spec != nil {
		report.Project = spec.ProjectName
		report.Mode = string(spec.EffectiveMode())
	}

	// Validation always precedes resolution; a spec with duplicate cluster
	// names must fail before any clone or fetch happens.
	if result := validator.Validate(spec); !result.Valid() {
		return report, result.Err()
	}

	tracker := state.NewTracker(opts.Version)
	cache := source.NewCache(opts.Source)
	failFast := spec.SyncPolicy == config.SyncManual

	clusters := spec.EffectiveClusters()

	logger := opts.Logger.With("run_id", report.RunID, "project", spec.ProjectName)
	logger.Info("starting generation run",
		"clusters", len(clusters), "mode", report.Mode, "dry_run", opts.DryRun)

	results := make([]ClusterResult, len(clusters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := range clusters {
		cluster := &clusters[i]
		g.Go(func() error {
			results[i] = runCluster(gctx, spec, cluster, cache, tracker, opts, logger)
			if results[i].Status != StatusFailed {
				return nil
			}
			// state integrity is never guessed at: a corrupt or contested
			// state file aborts the run under either sync policy
			if failFast || errors.IsStateError(results[i].ErrorCode) {
				return errors.New(results[i].ErrorCode, results[i].Error)
			}
			return nil
		})
	}
	groupErr := g.Wait()

	for _, res := range results {
		report.Clusters = append(report.Clusters, res)
		switch res.Status {
		case StatusGenerated:
			report.Generated++
		case StatusSkipped:
			report.Skipped++
		case StatusFailed:
			report.Failed++
		}
	}

	if spec.AutoCreateRepositories {
		for _, c := range clusters {
			report.Repositories = append(report.Repositories,
				generator.GitOpsRepositoryName(spec, c.Name))
		}
	}

	// top-level artifacts accompany at least one successful cluster tree
	if report.Generated > 0 && !opts.DryRun {
		if err := writeTopLevel(spec, opts); err != nil {
			logger.Error("failed to write top-level artifacts", "error", err)
			if groupErr == nil {
				groupErr = err
			}
		}
	}

	report.Duration = time.Since(start)
	logger.Info("generation run complete",
		"generated", report.Generated, "skipped", report.Skipped,
		"failed", report.Failed, "duration", report.Duration)

	if groupErr != nil {
		return report, groupErr
	}
	if err := ctx.Err(); err != nil {
		return report, errors.Wrap(errors.ErrCodeTimeout, "generation run canceled", err)
	}
	return report, nil
}

func runCluster(
	ctx context.Context,
	spec *config.DeploymentSpecification,
	cluster *config.ClusterSpec,
	cache *source.Cache,
	tracker *state.Tracker,
	opts Options,
	logger *slog.Logger,
) ClusterResult {
	start := time.Now()
	res := ClusterResult{Cluster: cluster.Name}
	fail := func(err error) ClusterResult {
		res.Status = StatusFailed
		res.Error = err.Error()
		res.ErrorCode = errors.CodeOf(err)
		res.Duration = time.Since(start)
		logger.Error("cluster generation failed",
			"cluster", cluster.Name, "code", res.ErrorCode, "error", err)
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(errors.Wrap(errors.ErrCodeTimeout, "run canceled before generation", err))
	}

	tree, err := cache.Resolve(ctx, spec.Source)
	if err != nil {
		return fail(err)
	}

	effective := generator.EffectiveValues(spec, cluster)

	// the fingerprint is scoped to this cluster: shared spec fields plus the
	// cluster's own definition, never the sibling clusters, so editing one
	// cluster does not invalidate the rest
	shared := *spec
	shared.Clusters = nil
	fingerprint, err := state.Fingerprint(struct {
		Spec    *config.DeploymentSpecification `json:"spec"`
		Cluster *config.ClusterSpec             `json:"cluster"`
		Source  string                          `json:"source"`
		Values  map[string]map[string]any       `json:"values"`
	}{&shared, cluster, tree.Digest, effective})
	if err != nil {
		return fail(err)
	}
	res.Fingerprint = fingerprint

	outputDir := filepath.Join(opts.OutputDir, cluster.Name)
	res.OutputDir = outputDir

	regen, err := tracker.ShouldRegenerate(outputDir, fingerprint, opts.Force)
	if err != nil {
		return fail(err)
	}
	if !regen {
		res.Status = StatusSkipped
		res.Duration = time.Since(start)
		logger.Info("cluster unchanged, skipping", "cluster", cluster.Name)
		return res
	}

	artifact, err := generator.Render(&generator.Input{
		Spec:    spec,
		Cluster: cluster,
		Source:  tree,
		Version: opts.Version,
	})
	if err != nil {
		return fail(err)
	}
	res.Files = len(artifact.Files)

	if opts.DryRun {
		res.Status = StatusGenerated
		res.Duration = time.Since(start)
		logger.Info("cluster rendered (dry run)", "cluster", cluster.Name, "files", res.Files)
		return res
	}

	if err := artifact.WriteTo(outputDir); err != nil {
		return fail(err)
	}
	if err := tracker.Commit(outputDir, fingerprint); err != nil {
		return fail(err)
	}

	res.Status = StatusGenerated
	res.Duration = time.Since(start)
	logger.Info("cluster generated",
		"cluster", cluster.Name, "files", res.Files, "output", outputDir)
	return res
}

func writeTopLevel(spec *config.DeploymentSpecification, opts Options) error {
	art, err := generator.RenderTopLevel(spec)
	if err != nil {
		return err
	}
	// written file-by-file: the per-cluster trees under the same root must
	// not be replaced
	return art.WriteFilesInto(opts.OutputDir)
}
