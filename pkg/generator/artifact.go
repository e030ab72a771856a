/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vectorweight/vectorweight/pkg/errors"
)

// ChecksumFileName is the per-tree checksum manifest.
const ChecksumFileName = "checksums.txt"

// Artifact is a rendered file tree held in memory. Paths are relative,
// slash-separated.
type Artifact struct {
	Name  string
	Files map[string][]byte
}

func newArtifact(name string) *Artifact {
	return &Artifact{Name: name, Files: map[string][]byte{}}
}

func (a *Artifact) add(path string, content []byte) {
	a.Files[path] = content
}

func (a *Artifact) addString(path, content string) {
	a.add(path, []byte(content))
}

// Paths returns the artifact's file paths, sorted.
func (a *Artifact) Paths() []string {
	paths := make([]string, 0, len(a.Files))
	for p := range a.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// TotalSize returns the summed size of all files in bytes.
func (a *Artifact) TotalSize() int64 {
	var n int64
	for _, data := range a.Files {
		n += int64(len(data))
	}
	return n
}

// addChecksums appends the checksums.txt manifest covering every file
// rendered so far, sorted by path.
func (a *Artifact) addChecksums() {
	lines := make([]string, 0, len(a.Files))
	for _, p := range a.Paths() {
		sum := sha256.Sum256(a.Files[p])
		lines = append(lines, fmt.Sprintf("%s  %s", hex.EncodeToString(sum[:]), p))
	}
	a.addString(ChecksumFileName, strings.Join(lines, "\n")+"\n")
}

// WriteTo commits the artifact under dir atomically: files land in a
// temporary sibling directory which is renamed into place, so a crashed run
// never leaves a partially-written tree. An existing tree at dir is replaced.
func (a *Artifact) WriteTo(dir string) error {
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to create output parent %s", parent), err)
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create staging directory", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	for path, content := range a.Files {
		dest := filepath.Join(tmp, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("failed to create directory for %s", path), err)
		}
		mode := os.FileMode(0o644)
		if strings.HasSuffix(path, ".sh") {
			mode = 0o755
		}
		if err := os.WriteFile(dest, content, mode); err != nil {
			return errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("failed to write %s", path), err)
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to replace existing tree %s", dir), err)
	}
	if err := os.Rename(tmp, dir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to move artifact tree into %s", dir), err)
	}
	return nil
}

// Merge folds another artifact's files into this one, prefixing nothing;
// callers namespace paths themselves.
func (a *Artifact) Merge(other *Artifact) {
	for p, data := range other.Files {
		a.Files[p] = data
	}
}

// WriteFilesInto writes each file individually under dir via temp file and
// rename, leaving sibling content alone. Used for top-level files that share
// a directory with per-cluster trees.
func (a *Artifact) WriteFilesInto(dir string) error {
	for path, content := range a.Files {
		dest := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("failed to create directory for %s", path), err)
		}
		tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("failed to stage %s", path), err)
		}
		tmpName := tmp.Name()
		if _, err := tmp.Write(content); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
			return errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("failed to write %s", path), err)
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmpName)
			return errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("failed to close %s", path), err)
		}
		if strings.HasSuffix(path, ".sh") {
			if err := os.Chmod(tmpName, 0o755); err != nil {
				_ = os.Remove(tmpName)
				return errors.Wrap(errors.ErrCodeInternal,
					fmt.Sprintf("failed to mark %s executable", path), err)
			}
		}
		if err := os.Rename(tmpName, dest); err != nil {
			_ = os.Remove(tmpName)
			return errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("failed to move %s into place", path), err)
		}
	}
	return nil
}
