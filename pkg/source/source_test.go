/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package source

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/errors"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		ScratchDir: t.TempDir(),
		Timeout:    10 * time.Second,
		Attempts:   3,
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestInternetResolveIsSymbolic(t *testing.T) {
	r, err := New(nil, testOptions(t))
	require.NoError(t, err)

	tree, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, tree.Symbolic)
	assert.Empty(t, tree.Root)
	assert.NotEmpty(t, tree.Digest)
}

func TestLocalResolve(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"charts/cilium/values.yaml": "a: 1"})

	r, err := New(&config.SourceDescriptor{Mode: config.ModeAirgappedLocal, Path: dir}, testOptions(t))
	require.NoError(t, err)

	tree, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dir, tree.Root)
	assert.False(t, tree.Symbolic)
	assert.Len(t, tree.Digest, 64)
}

func TestLocalResolveMissing(t *testing.T) {
	r, err := New(&config.SourceDescriptor{
		Mode: config.ModeAirgappedLocal,
		Path: filepath.Join(t.TempDir(), "nope"),
	}, testOptions(t))
	require.NoError(t, err)

	_, err = r.Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSourceMissingPath, errors.CodeOf(err))
}

func TestLocalResolveEmpty(t *testing.T) {
	r, err := New(&config.SourceDescriptor{
		Mode: config.ModeAirgappedLocal,
		Path: t.TempDir(),
	}, testOptions(t))
	require.NoError(t, err)

	_, err = r.Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSourceMissingPath, errors.CodeOf(err))
}

func TestTreeDigestTracksContent(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.yaml": "x: 1", "sub/b.yaml": "y: 2"})

	first, err := TreeDigest(dir)
	require.NoError(t, err)
	again, err := TreeDigest(dir)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("x: 2"), 0o644))
	changed, err := TreeDigest(dir)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestTreeDigestIgnoresGitDir(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.yaml": "x: 1"})
	before, err := TreeDigest(dir)
	require.NoError(t, err)

	writeTree(t, dir, map[string]string{".git/HEAD": "ref: refs/heads/main"})
	after, err := TreeDigest(dir)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func makeTarGz(t *testing.T, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "charts.tar.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestArchiveResolve(t *testing.T) {
	archive := makeTarGz(t, map[string]string{
		"charts/weaviate/values.yaml": "replicas: 3",
		"charts/qdrant/values.yaml":   "replicas: 1",
	})
	digest, err := ArchiveDigest(archive)
	require.NoError(t, err)

	r, err := New(&config.SourceDescriptor{
		Mode:                config.ModeAirgappedArchive,
		Path:                archive,
		VerificationEnabled: true,
		ArchiveDigest:       "sha256:" + digest,
	}, testOptions(t))
	require.NoError(t, err)

	tree, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(tree.Root, "charts", "weaviate", "values.yaml"))
	assert.FileExists(t, filepath.Join(tree.Root, "charts", "qdrant", "values.yaml"))
}

func TestArchiveDigestMismatchIsHardFailure(t *testing.T) {
	archive := makeTarGz(t, map[string]string{"charts/values.yaml": "a: 1"})

	r, err := New(&config.SourceDescriptor{
		Mode:                config.ModeAirgappedArchive,
		Path:                archive,
		VerificationEnabled: true,
		ArchiveDigest:       "deadbeef",
	}, testOptions(t))
	require.NoError(t, err)

	_, err = r.Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSourceDigestMismatch, errors.CodeOf(err))
	assert.False(t, errors.IsTransient(errors.CodeOf(err)), "digest mismatch must never be retried")
}

func TestArchiveTraversalGuard(t *testing.T) {
	archive := makeTarGz(t, map[string]string{"../evil.yaml": "pwned: true"})

	r, err := New(&config.SourceDescriptor{
		Mode: config.ModeAirgappedArchive,
		Path: archive,
	}, testOptions(t))
	require.NoError(t, err)

	_, err = r.Resolve(context.Background())
	require.Error(t, err)
}

func TestArchiveMissing(t *testing.T) {
	r, err := New(&config.SourceDescriptor{
		Mode: config.ModeAirgappedArchive,
		Path: filepath.Join(t.TempDir(), "nope.tar.gz"),
	}, testOptions(t))
	require.NoError(t, err)

	_, err = r.Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSourceMissingPath, errors.CodeOf(err))
}

func TestNetworkResolveRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("chart: content"))
	}))
	defer srv.Close()

	r, err := New(&config.SourceDescriptor{
		Mode: config.ModeAirgappedNetwork,
		URL:  srv.URL + "/values.yaml",
	}, testOptions(t))
	require.NoError(t, err)

	tree, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.FileExists(t, filepath.Join(tree.Root, "values.yaml"))
}

func TestNetworkResolveAuthFailureDoesNotRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	r, err := New(&config.SourceDescriptor{
		Mode: config.ModeAirgappedNetwork,
		URL:  srv.URL + "/values.yaml",
	}, testOptions(t))
	require.NoError(t, err)

	_, err = r.Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSourceAuth, errors.CodeOf(err))
	assert.Equal(t, 1, calls)
}

func TestNetworkResolveExtractsArchives(t *testing.T) {
	archive := makeTarGz(t, map[string]string{"charts/cilium/values.yaml": "a: 1"})
	data, err := os.ReadFile(archive)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	r, err := New(&config.SourceDescriptor{
		Mode: config.ModeAirgappedNetwork,
		URL:  srv.URL + "/charts.tar.gz",
	}, testOptions(t))
	require.NoError(t, err)

	tree, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(tree.Root, "charts", "cilium", "values.yaml"))
	// the downloaded archive itself is not part of the tree
	assert.NoFileExists(t, filepath.Join(tree.Root, "charts.tar.gz"))
}

func TestCacheDedupesByDescriptorKey(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"values.yaml": "a: 1"})

	cache := NewCache(testOptions(t))
	desc := &config.SourceDescriptor{Mode: config.ModeAirgappedLocal, Path: dir}

	var wg sync.WaitGroup
	trees := make([]*ResolvedTree, 8)
	for i := range trees {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := cache.Resolve(context.Background(), desc)
			assert.NoError(t, err)
			trees[i] = tree
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Len())
	for _, tree := range trees[1:] {
		assert.Same(t, trees[0], tree)
	}
}

func TestCacheDistinctDescriptors(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"x.yaml": "1"})
	writeTree(t, b, map[string]string{"x.yaml": "2"})

	cache := NewCache(testOptions(t))
	ta, err := cache.Resolve(context.Background(), &config.SourceDescriptor{Mode: config.ModeAirgappedLocal, Path: a})
	require.NoError(t, err)
	tb, err := cache.Resolve(context.Background(), &config.SourceDescriptor{Mode: config.ModeAirgappedLocal, Path: b})
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	assert.NotEqual(t, ta.Digest, tb.Digest)
}
