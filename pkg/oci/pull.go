/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package oci

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/errcode"

	apperrors "github.com/vectorweight/vectorweight/pkg/errors"
)

// Pull fetches an OCI artifact into destDir. target is an oci:// URI; an
// untagged reference pulls "latest".
func Pull(ctx context.Context, target, destDir string) error {
	ref, err := ParseOutputTarget(target)
	if err != nil {
		return err
	}
	if !ref.IsOCI {
		return apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s is not an OCI reference", target))
	}
	tag := ref.Tag
	if tag == "" {
		tag = "latest"
	}

	fs, err := file.New(destDir)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", ref.Registry, ref.Repository))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid repository reference %s/%s", ref.Registry, ref.Repository), err)
	}
	repo.Client = createAuthClient(false, false)

	if _, err := oras.Copy(ctx, repo, tag, fs, tag, oras.DefaultCopyOptions); err != nil {
		return classifyPullError(ref, err)
	}
	return nil
}

func classifyPullError(ref *Reference, err error) error {
	msg := fmt.Sprintf("failed to pull %s", ref.String())

	var resp *errcode.ErrorResponse
	if stderrors.As(err, &resp) {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.Wrap(apperrors.ErrCodeSourceAuth, msg, err)
		case http.StatusNotFound:
			return apperrors.Wrap(apperrors.ErrCodeSourceMissingPath, msg, err)
		}
	}
	return apperrors.Wrap(apperrors.ErrCodeSourceUnreachable, msg, err)
}
