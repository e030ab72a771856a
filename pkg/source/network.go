/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package source

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/errors"
	"github.com/vectorweight/vectorweight/pkg/oci"
)

const retryBaseDelay = 500 * time.Millisecond

// networkResolver fetches chart content from an internal HTTP(S) endpoint or
// an OCI registry (oci:// URLs, pulled via ORAS).
type networkResolver struct {
	desc *config.SourceDescriptor
	opts Options
}

func (r *networkResolver) Resolve(ctx context.Context) (*ResolvedTree, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	dir, err := os.MkdirTemp(r.opts.ScratchDir, "vw-net-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create download directory", err)
	}

	if strings.HasPrefix(r.desc.URL, oci.URIScheme) {
		if err := oci.Pull(ctx, r.desc.URL, dir); err != nil {
			_ = os.RemoveAll(dir)
			return nil, err
		}
	} else {
		name := path.Base(r.desc.URL)
		if name == "" || name == "." || name == "/" {
			name = "source"
		}
		dest := filepath.Join(dir, name)
		if err := fetchFile(ctx, r.desc, r.opts, dest); err != nil {
			_ = os.RemoveAll(dir)
			return nil, err
		}
		// Archives fetched over the network unpack in place so the tree is
		// directly usable as a chart root.
		if format := archiveFormat(name); format != "" {
			if err := extract(dest, dir, format); err != nil {
				_ = os.RemoveAll(dir)
				return nil, err
			}
			_ = os.Remove(dest)
		}
	}

	digest, err := TreeDigest(dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	r.opts.Logger.Debug("fetched network source", "url", r.desc.URL, "digest", digest)

	return &ResolvedTree{
		Mode:   config.ModeAirgappedNetwork,
		Root:   dir,
		Digest: digest,
	}, nil
}

// fetchFile downloads url to dest with bounded retries and exponential
// backoff. Authentication and endpoint-not-found failures never retry.
func fetchFile(ctx context.Context, desc *config.SourceDescriptor, opts Options, dest string) error {
	client, err := httpClient(desc)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		if opts.Limiter != nil {
			if err := opts.Limiter.Wait(ctx); err != nil {
				return errors.Wrap(errors.ErrCodeTimeout, "rate limit wait canceled", err)
			}
		}

		var retryable bool
		lastErr, retryable = fetchOnce(ctx, client, desc, dest)
		if lastErr == nil {
			return nil
		}
		if !retryable || attempt == opts.Attempts {
			break
		}

		delay := retryBaseDelay << (attempt - 1)
		opts.Logger.Debug("retrying source fetch",
			"url", desc.URL, "attempt", attempt, "delay", delay, "error", lastErr)
		select {
		case <-ctx.Done():
			return errors.Wrap(errors.ErrCodeTimeout,
				fmt.Sprintf("fetch of %s canceled", desc.URL), ctx.Err())
		case <-time.After(delay):
		}
	}
	return lastErr
}

// fetchOnce performs a single download attempt. The bool reports whether the
// failure is worth retrying.
func fetchOnce(ctx context.Context, client *http.Client, desc *config.SourceDescriptor, dest string) (error, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, desc.URL, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeValidation,
			fmt.Sprintf("invalid source url %s", desc.URL), err), false
	}
	if desc.Username != "" || desc.Token != "" {
		username, err := config.ExpandPlaceholders(desc.Username)
		if err != nil {
			return errors.Wrap(errors.ErrCodeSourceAuth, "failed to resolve source username", err), false
		}
		token, err := config.ExpandPlaceholders(desc.Token)
		if err != nil {
			return errors.Wrap(errors.ErrCodeSourceAuth, "failed to resolve source token", err), false
		}
		req.SetBasicAuth(username, token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSourceUnreachable,
			fmt.Sprintf("failed to fetch %s", desc.URL), err), true
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.New(errors.ErrCodeSourceAuth,
			fmt.Sprintf("fetch of %s rejected with status %d", desc.URL, resp.StatusCode)), false
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeSourceMissingPath,
			fmt.Sprintf("%s not found (status 404)", desc.URL)), false
	case resp.StatusCode >= 500:
		return errors.New(errors.ErrCodeSourceUnreachable,
			fmt.Sprintf("fetch of %s failed with status %d", desc.URL, resp.StatusCode)), true
	default:
		return errors.New(errors.ErrCodeSourceUnreachable,
			fmt.Sprintf("fetch of %s failed with status %d", desc.URL, resp.StatusCode)), false
	}

	f, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to create %s", dest), err), false
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return errors.Wrap(errors.ErrCodeSourceUnreachable,
			fmt.Sprintf("download of %s interrupted", desc.URL), err), true
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to close %s", dest), err), false
	}
	return nil, false
}

// httpClient builds the transport, trusting an extra CA bundle when the
// descriptor points at one.
func httpClient(desc *config.SourceDescriptor) (*http.Client, error) {
	if desc.CACertificatePath == "" {
		return http.DefaultClient, nil
	}

	pem, err := os.ReadFile(desc.CACertificatePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation,
			fmt.Sprintf("failed to read CA bundle %s", desc.CACertificatePath), err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("CA bundle %s contains no usable certificates", desc.CACertificatePath))
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	return &http.Client{Transport: transport}, nil
}
