/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/errors"
)

var hexHashPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// gitResolver shallow-clones a version-control mirror of the charts.
type gitResolver struct {
	desc *config.SourceDescriptor
	opts Options
}

func (r *gitResolver) Resolve(ctx context.Context) (*ResolvedTree, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	auth, err := r.auth()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(r.opts.ScratchDir, "vw-git-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create clone directory", err)
	}

	expected := r.desc.ExpectedRevision
	cloneOpts := &git.CloneOptions{
		URL:          r.desc.URL,
		Auth:         auth,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	// A symbolic revision (branch or tag) steers the clone itself; a commit
	// hash is checked against HEAD after a default-branch clone.
	pinnedByRef := expected != "" && !hexHashPattern.MatchString(expected)
	if pinnedByRef {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(expected)
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, cloneOpts)
	if err != nil && pinnedByRef && stderrors.Is(err, plumbing.ErrReferenceNotFound) {
		_ = os.RemoveAll(dir)
		if dir, err = os.MkdirTemp(r.opts.ScratchDir, "vw-git-*"); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create clone directory", err)
		}
		cloneOpts.ReferenceName = plumbing.NewTagReferenceName(expected)
		cloneOpts.Tags = git.AllTags
		repo, err = git.PlainCloneContext(ctx, dir, false, cloneOpts)
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, r.classifyCloneError(err)
	}

	head, err := repo.Head()
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.Wrap(errors.ErrCodeSourceUnreachable,
			fmt.Sprintf("clone of %s has no HEAD", r.desc.URL), err)
	}
	revision := head.Hash().String()

	if expected != "" && hexHashPattern.MatchString(expected) && !strings.HasPrefix(revision, expected) {
		_ = os.RemoveAll(dir)
		return nil, errors.NewWithContext(errors.ErrCodeSourceDigestMismatch,
			fmt.Sprintf("cloned revision %s does not match expected %s", revision, expected),
			map[string]any{"url": r.desc.URL})
	}

	digest, err := TreeDigest(dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	r.opts.Logger.Debug("cloned chart mirror",
		"url", r.desc.URL, "revision", revision, "digest", digest)

	return &ResolvedTree{
		Mode:     config.ModeAirgappedVC,
		Root:     dir,
		Digest:   digest,
		Revision: revision,
	}, nil
}

func (r *gitResolver) auth() (*githttp.BasicAuth, error) {
	if r.desc.Username == "" && r.desc.Token == "" {
		return nil, nil
	}
	username, err := config.ExpandPlaceholders(r.desc.Username)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceAuth, "failed to resolve source username", err)
	}
	token, err := config.ExpandPlaceholders(r.desc.Token)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceAuth, "failed to resolve source token", err)
	}
	if username == "" {
		// token-only auth still needs a non-empty user for basic auth
		username = "git"
	}
	return &githttp.BasicAuth{Username: username, Password: token}, nil
}

func (r *gitResolver) classifyCloneError(err error) error {
	msg := fmt.Sprintf("failed to clone %s", r.desc.URL)
	switch {
	case stderrors.Is(err, transport.ErrAuthenticationRequired),
		stderrors.Is(err, transport.ErrAuthorizationFailed):
		return errors.Wrap(errors.ErrCodeSourceAuth, msg, err)
	case stderrors.Is(err, transport.ErrRepositoryNotFound):
		return errors.Wrap(errors.ErrCodeSourceMissingPath, msg, err)
	default:
		return errors.Wrap(errors.ErrCodeSourceUnreachable, msg, err)
	}
}
