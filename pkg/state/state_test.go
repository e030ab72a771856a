/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorweight/vectorweight/pkg/errors"
)

func TestFingerprintStable(t *testing.T) {
	type inputs struct {
		Spec   map[string]any `json:"spec"`
		Source string         `json:"source"`
	}
	a := inputs{Spec: map[string]any{"b": 2, "a": 1}, Source: "sha"}
	b := inputs{Spec: map[string]any{"a": 1, "b": 2}, Source: "sha"}

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)

	b.Source = "other"
	fc, err := Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)
}

func TestShouldRegenerateLifecycle(t *testing.T) {
	dir := t.TempDir()
	tr := NewTracker("test")

	// no record yet
	regen, err := tr.ShouldRegenerate(dir, "fp1", false)
	require.NoError(t, err)
	assert.True(t, regen)

	require.NoError(t, tr.Commit(dir, "fp1"))

	// same fingerprint skips
	regen, err = tr.ShouldRegenerate(dir, "fp1", false)
	require.NoError(t, err)
	assert.False(t, regen)

	// changed fingerprint regenerates
	regen, err = tr.ShouldRegenerate(dir, "fp2", false)
	require.NoError(t, err)
	assert.True(t, regen)

	// force always regenerates
	regen, err = tr.ShouldRegenerate(dir, "fp1", true)
	require.NoError(t, err)
	assert.True(t, regen)
}

func TestGeneratorMajorUpgradeRegenerates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewTracker("1.4.0").Commit(dir, "fp1"))

	// same major, newer minor: fingerprint decides
	regen, err := NewTracker("1.9.0").ShouldRegenerate(dir, "fp1", false)
	require.NoError(t, err)
	assert.False(t, regen)

	// newer major regenerates even with a matching fingerprint
	regen, err = NewTracker("2.0.0").ShouldRegenerate(dir, "fp1", false)
	require.NoError(t, err)
	assert.True(t, regen)

	// dev builds never force regeneration
	regen, err = NewTracker("dev").ShouldRegenerate(dir, "fp1", false)
	require.NoError(t, err)
	assert.False(t, regen)
}

func TestCommitRecordContents(t *testing.T) {
	dir := t.TempDir()
	tr := NewTracker("v1.2.3")
	require.NoError(t, tr.Commit(dir, "abc"))

	rec, err := tr.Read(dir)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "abc", rec.Fingerprint)
	assert.Equal(t, "v1.2.3", rec.Generator)
	assert.False(t, rec.GeneratedAt.IsZero())

	// lock file released after commit
	_, err = os.Stat(filepath.Join(dir, lockFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestCorruptStateIsTypedError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))

	tr := NewTracker("test")
	_, err := tr.ShouldRegenerate(dir, "fp", false)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStateCorrupt, errors.CodeOf(err))
}

func TestEmptyFingerprintIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"generated_at":"2026-01-01T00:00:00Z"}`), 0o644))

	tr := NewTracker("test")
	_, err := tr.Read(dir)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStateCorrupt, errors.CodeOf(err))
}

func TestCommitConflict(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lockFileName), nil, 0o644))

	tr := NewTracker("test")
	err := tr.Commit(dir, "fp")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStateConflict, errors.CodeOf(err))
}
