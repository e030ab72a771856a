/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package source resolves chart content for a deployment run. Each
// deployment mode has one handler behind the Resolver interface; all
// handlers produce a ResolvedTree carrying a content-addressed identity so
// downstream fingerprinting never depends on where the bytes came from.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/errors"
)

// ResolvedTree is the outcome of a successful source resolution.
type ResolvedTree struct {
	// Mode records which handler produced the tree.
	Mode config.DeploymentMode `json:"mode"`
	// Root is the local directory holding the resolved content. Empty in
	// internet mode, where charts are referenced by repository URL only.
	Root string `json:"root,omitempty"`
	// Digest is the sha256 content identity of the tree (or of the
	// descriptor itself for symbolic resolutions).
	Digest string `json:"digest"`
	// Revision is the resolved commit hash, when the source is version
	// controlled.
	Revision string `json:"revision,omitempty"`
	// Symbolic marks a resolution that acquired no content.
	Symbolic bool `json:"symbolic,omitempty"`
}

// Options tunes resolution behavior shared by all handlers.
type Options struct {
	// ScratchDir is where clones, downloads, and extractions land.
	// Defaults to the OS temp dir.
	ScratchDir string
	// Timeout bounds a single resolution attempt.
	Timeout time.Duration
	// Attempts is the number of tries for retryable network fetches.
	Attempts int
	// Limiter optionally throttles outbound requests.
	Limiter *rate.Limiter
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

const (
	defaultTimeout  = 2 * time.Minute
	defaultAttempts = 3
)

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Attempts <= 0 {
		o.Attempts = defaultAttempts
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Resolver acquires (or symbolically identifies) chart content.
type Resolver interface {
	Resolve(ctx context.Context) (*ResolvedTree, error)
}

// New returns the handler for the descriptor's mode. A nil descriptor
// resolves symbolically as internet mode.
func New(desc *config.SourceDescriptor, opts Options) (Resolver, error) {
	opts = opts.withDefaults()
	if desc == nil {
		return &internetResolver{}, nil
	}
	switch desc.Mode {
	case config.ModeInternet, "":
		return &internetResolver{desc: desc}, nil
	case config.ModeAirgappedVC:
		return &gitResolver{desc: desc, opts: opts}, nil
	case config.ModeAirgappedLocal:
		return &localResolver{desc: desc}, nil
	case config.ModeAirgappedNetwork:
		return &networkResolver{desc: desc, opts: opts}, nil
	case config.ModeAirgappedArchive:
		return &archiveResolver{desc: desc, opts: opts}, nil
	default:
		return nil, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("no source handler for mode %q", desc.Mode))
	}
}
