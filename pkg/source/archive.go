/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package source

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/errors"
)

// archiveResolver reads or fetches a chart archive, verifies its declared
// digest, and extracts it to a scratch directory.
type archiveResolver struct {
	desc *config.SourceDescriptor
	opts Options
}

func (r *archiveResolver) Resolve(ctx context.Context) (*ResolvedTree, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	archivePath, cleanup, err := r.obtain(ctx)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if r.desc.VerificationEnabled {
		if err := verifyDigest(archivePath, r.desc.ArchiveDigest); err != nil {
			return nil, err
		}
	}

	format := archiveFormat(archivePath)
	if format == "" {
		return nil, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("unsupported archive format: %s (expected .tar.gz, .tgz, .tar, or .zip)", archivePath))
	}

	dir, err := os.MkdirTemp(r.opts.ScratchDir, "vw-archive-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create extraction directory", err)
	}
	if err := extract(archivePath, dir, format); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	digest, err := TreeDigest(dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	return &ResolvedTree{
		Mode:   config.ModeAirgappedArchive,
		Root:   dir,
		Digest: digest,
	}, nil
}

func (r *archiveResolver) obtain(ctx context.Context) (string, func(), error) {
	if r.desc.Path != "" {
		if _, err := os.Stat(r.desc.Path); err != nil {
			if os.IsNotExist(err) {
				return "", nil, errors.New(errors.ErrCodeSourceMissingPath,
					fmt.Sprintf("archive %s does not exist", r.desc.Path))
			}
			return "", nil, errors.Wrap(errors.ErrCodeSourceUnreachable,
				fmt.Sprintf("archive %s is not accessible", r.desc.Path), err)
		}
		return r.desc.Path, nil, nil
	}

	tmp, err := os.MkdirTemp(r.opts.ScratchDir, "vw-archive-dl-*")
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInternal, "failed to create download directory", err)
	}
	dest := filepath.Join(tmp, path.Base(r.desc.URL))
	if err := fetchFile(ctx, r.desc, r.opts, dest); err != nil {
		_ = os.RemoveAll(tmp)
		return "", nil, err
	}
	return dest, func() { _ = os.RemoveAll(tmp) }, nil
}

// verifyDigest compares the archive's sha256 against the declared value. A
// mismatch is a hard failure; a corrupted or substituted archive must never
// be extracted.
func verifyDigest(archivePath, declared string) error {
	declared = strings.TrimPrefix(strings.TrimSpace(declared), "sha256:")
	if declared == "" {
		return errors.New(errors.ErrCodeValidation,
			"digest verification enabled but no archive digest declared")
	}

	actual, err := fileDigest(archivePath)
	if err != nil {
		return err
	}
	if !strings.EqualFold(actual, declared) {
		return errors.NewWithContext(errors.ErrCodeSourceDigestMismatch,
			fmt.Sprintf("archive digest mismatch for %s", archivePath),
			map[string]any{"expected": declared, "actual": actual})
	}
	return nil
}

// archiveFormat maps a filename to its extraction format, or "" when the
// extension is not a supported archive.
func archiveFormat(name string) string {
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return "tar.gz"
	case strings.HasSuffix(name, ".tar"):
		return "tar"
	case strings.HasSuffix(name, ".zip"):
		return "zip"
	default:
		return ""
	}
}

func extract(archivePath, dest, format string) error {
	switch format {
	case "tar.gz", "tar":
		return extractTar(archivePath, dest, format == "tar.gz")
	case "zip":
		return extractZip(archivePath, dest)
	default:
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("unsupported archive format %q", format))
	}
}

func extractTar(archivePath, dest string, gzipped bool) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSourceMissingPath,
			fmt.Sprintf("failed to open archive %s", archivePath), err)
	}
	defer func() { _ = f.Close() }()

	var reader io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return errors.Wrap(errors.ErrCodeSourceDigestMismatch,
				fmt.Sprintf("archive %s is not valid gzip", archivePath), err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeSourceDigestMismatch,
				fmt.Sprintf("archive %s is corrupt", archivePath), err)
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, "failed to create directory", err)
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// symlinks and special files are dropped; a chart tree has no
			// legitimate use for them and they are the traversal vector
		}
	}
}

func extractZip(archivePath, dest string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSourceDigestMismatch,
			fmt.Sprintf("archive %s is not a valid zip", archivePath), err)
	}
	defer func() { _ = zr.Close() }()

	for _, entry := range zr.File {
		target, err := safeJoin(dest, entry.Name)
		if err != nil {
			return err
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, "failed to create directory", err)
			}
			continue
		}
		if !entry.FileInfo().Mode().IsRegular() {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return errors.Wrap(errors.ErrCodeSourceDigestMismatch,
				fmt.Sprintf("archive %s is corrupt", archivePath), err)
		}
		err = writeEntry(target, rc, entry.FileInfo().Mode())
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// safeJoin joins an archive entry name onto dest, rejecting absolute names
// and any path escaping the destination.
func safeJoin(dest, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("archive entry %q has an absolute path", name))
	}
	target := filepath.Join(dest, filepath.FromSlash(name))
	if target != filepath.Clean(dest) && !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("archive entry %q escapes the extraction directory", name))
	}
	return target, nil
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create directory", err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to create %s", target), err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to write %s", target), err)
	}
	return f.Close()
}

// ArchiveDigest computes the sha256 of an archive file, exposed for tooling
// that pins digests into specifications.
func ArchiveDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSourceMissingPath,
			fmt.Sprintf("failed to open %s", path), err)
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to hash %s", path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
