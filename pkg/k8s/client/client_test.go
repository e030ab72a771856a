/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
  - name: test
    cluster:
      server: https://127.0.0.1:6443
contexts:
  - name: test
    context:
      cluster: test
      user: test
current-context: test
users:
  - name: test
    user:
      token: ${KUBE_TOKEN}
`

func writeKubeconfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(testKubeconfig), 0o600))
	return path
}

func TestBuildKubeClientExplicitPath(t *testing.T) {
	client, config, err := BuildKubeClient(writeKubeconfig(t))
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, "https://127.0.0.1:6443", config.Host)
}

func TestBuildKubeClientMissingFile(t *testing.T) {
	_, _, err := BuildKubeClient(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestBuildKubeClientEnvDiscovery(t *testing.T) {
	t.Setenv("KUBECONFIG", writeKubeconfig(t))
	client, config, err := BuildKubeClient("")
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, "https://127.0.0.1:6443", config.Host)
}

func TestGetKubeClientWithConfigBypassesSingleton(t *testing.T) {
	first, _, err := GetKubeClientWithConfig(writeKubeconfig(t))
	require.NoError(t, err)
	second, _, err := GetKubeClientWithConfig(writeKubeconfig(t))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
