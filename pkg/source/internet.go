/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package source

import (
	"context"

	"github.com/vectorweight/vectorweight/pkg/config"
)

// internetResolver performs no acquisition: generated manifests reference
// upstream chart repositories by URL, and the cluster pulls at sync time.
type internetResolver struct {
	desc *config.SourceDescriptor
}

func (r *internetResolver) Resolve(_ context.Context) (*ResolvedTree, error) {
	return &ResolvedTree{
		Mode:     config.ModeInternet,
		Digest:   descriptorDigest(r.desc),
		Symbolic: true,
	}, nil
}
