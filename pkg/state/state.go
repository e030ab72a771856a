/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package state tracks what has already been generated so unchanged runs are
// cheap no-ops. Each artifact directory carries a small JSON record holding a
// fingerprint of every input that influenced its content.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vectorweight/vectorweight/pkg/errors"
	"github.com/vectorweight/vectorweight/pkg/version"
)

// FileName is the state record co-located with each generated cluster tree.
const FileName = ".vectorweight-state.json"

const lockFileName = ".vectorweight-state.lock"

// Record is the persisted state for one artifact directory.
type Record struct {
	Fingerprint string    `json:"fingerprint"`
	GeneratedAt time.Time `json:"generated_at"`
	Generator   string    `json:"generator,omitempty"`
}

// Fingerprint hashes the given inputs into a stable identity. Inputs are
// serialized to canonical JSON (struct field order is fixed, map keys are
// sorted by encoding/json), so equal inputs always hash equal.
func Fingerprint(inputs any) (string, error) {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to serialize fingerprint inputs", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Tracker decides whether an artifact directory needs regeneration and
// commits new state after a successful write. Safe for concurrent use; the
// lock file additionally guards against a second process writing the same
// directory.
type Tracker struct {
	mu        sync.Mutex
	generator string
}

// NewTracker returns a Tracker stamping records with the given generator
// version string.
func NewTracker(generator string) *Tracker {
	return &Tracker{generator: generator}
}

// ShouldRegenerate reports whether the directory's recorded fingerprint
// differs from the given one. A missing record means regenerate; a record
// that cannot be parsed is a hard STATE_CORRUPT error, never a guess. force
// requests regeneration regardless of recorded state.
func (t *Tracker) ShouldRegenerate(dir, fingerprint string, force bool) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if force {
		return true, nil
	}

	rec, err := t.read(dir)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return true, nil
	}
	if generatorOutdated(rec.Generator, t.generator) {
		return true, nil
	}
	return rec.Fingerprint != fingerprint, nil
}

// generatorOutdated reports whether the recording generator is an older
// major release than the current one. Dev builds and other unparsable
// stamps on either side never force regeneration.
func generatorOutdated(recorded, current string) bool {
	rv, err := version.ParseVersion(recorded)
	if err != nil {
		return false
	}
	cv, err := version.ParseVersion(current)
	if err != nil {
		return false
	}
	return cv.Major > rv.Major
}

// Read returns the persisted record for dir, or nil when none exists.
func (t *Tracker) Read(dir string) (*Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.read(dir)
}

func (t *Tracker) read(dir string) (*Record, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStateCorrupt,
			fmt.Sprintf("failed to read state file %s", path), err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStateCorrupt,
			fmt.Sprintf("state file %s is not valid JSON", path), err)
	}
	if rec.Fingerprint == "" {
		return nil, errors.New(errors.ErrCodeStateCorrupt,
			fmt.Sprintf("state file %s has no fingerprint", path))
	}
	return &rec, nil
}

// Commit atomically records the fingerprint for dir. The record is written
// to a temp file and renamed into place, so readers never observe a partial
// record. A concurrent writer holding the lock file is a STATE_CONFLICT.
func (t *Tracker) Commit(dir, fingerprint string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	lockPath := filepath.Join(dir, lockFileName)
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return errors.New(errors.ErrCodeStateConflict,
				fmt.Sprintf("another writer holds the state lock for %s", dir))
		}
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to acquire state lock in %s", dir), err)
	}
	defer func() {
		_ = lock.Close()
		_ = os.Remove(lockPath)
	}()

	rec := Record{
		Fingerprint: fingerprint,
		GeneratedAt: time.Now().UTC(),
		Generator:   t.generator,
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to serialize state record", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, FileName+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to create temp state file in %s", dir), err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInternal, "failed to write state record", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInternal, "failed to close temp state file", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, FileName)); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInternal, "failed to move state record into place", err)
	}
	return nil
}
