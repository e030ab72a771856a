/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package source

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/errors"
)

// TreeDigest computes the content identity of a resolved tree: sha256 over
// the sorted relative paths of all regular files, each followed by its own
// sha256. Directory layout changes and content changes both move the digest;
// VCS metadata under .git does not.
func TreeDigest(root string) (string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSourceMissingPath,
			fmt.Sprintf("failed to walk source tree %s", root), err)
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, rel := range paths {
		fileSum, err := fileDigest(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\x00%s\x00", rel, fileSum)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSourceMissingPath,
			fmt.Sprintf("failed to open %s for digest", path), err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to hash %s", path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// descriptorDigest identifies a symbolic resolution by the descriptor that
// produced it. Internet mode acquires nothing, so the descriptor is the
// content.
func descriptorDigest(desc *config.SourceDescriptor) string {
	data, _ := json.Marshal(desc)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
