/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package source

import (
	"context"
	"fmt"
	"os"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/errors"
)

// localResolver validates a pre-populated directory on the local filesystem.
type localResolver struct {
	desc *config.SourceDescriptor
}

func (r *localResolver) Resolve(_ context.Context) (*ResolvedTree, error) {
	path := r.desc.Path

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeSourceMissingPath,
				fmt.Sprintf("source path %s does not exist", path))
		}
		return nil, errors.Wrap(errors.ErrCodeSourceUnreachable,
			fmt.Sprintf("source path %s is not accessible", path), err)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeSourceMissingPath,
			fmt.Sprintf("source path %s is not a directory", path))
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnreachable,
			fmt.Sprintf("source path %s is not readable", path), err)
	}
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeSourceMissingPath,
			fmt.Sprintf("source path %s is empty", path))
	}

	digest, err := TreeDigest(path)
	if err != nil {
		return nil, err
	}
	return &ResolvedTree{
		Mode:   config.ModeAirgappedLocal,
		Root:   path,
		Digest: digest,
	}, nil
}
