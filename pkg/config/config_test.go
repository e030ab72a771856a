/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	spec, err := Parse([]byte(`
project_name: demo
clusters:
  - name: dev
`))
	require.NoError(t, err)

	assert.Equal(t, "production", spec.Environment)
	assert.Equal(t, ModeInternet, spec.DeploymentMode)
	assert.Equal(t, TargetVMs, spec.DeploymentTarget)
	assert.Equal(t, SyncAutomated, spec.SyncPolicy)
	require.Len(t, spec.Clusters, 1)
	assert.Equal(t, SizeSmall, spec.Clusters[0].Size)
	assert.Equal(t, VectorStoreDisabled, spec.Clusters[0].VectorStore)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`
project_name: demo
clustrs:
  - name: dev
`))
	require.Error(t, err)
}

func TestParseEmptyDocument(t *testing.T) {
	_, err := Parse([]byte(""))
	require.Error(t, err)
}

func TestParseModeFromSource(t *testing.T) {
	spec, err := Parse([]byte(`
project_name: demo
source:
  mode: airgapped-local
  path: /srv/charts
clusters:
  - name: dev
`))
	require.NoError(t, err)
	assert.Equal(t, ModeAirgappedLocal, spec.DeploymentMode)
	assert.True(t, spec.DeploymentMode.IsAirgapped())
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deploy.yaml")
	doc, err := Template(TemplateFullProduction)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	spec, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vectorweight", spec.ProjectName)
	assert.Len(t, spec.Clusters, 3)
	assert.NotNil(t, spec.Cluster("security"))
	assert.Nil(t, spec.Cluster("nope"))
}

func TestTemplatesParse(t *testing.T) {
	for _, name := range TemplateNames() {
		doc, err := Template(name)
		require.NoError(t, err, name)
		_, err = Parse([]byte(doc))
		require.NoError(t, err, name)
	}
}

func TestTemplateUnknown(t *testing.T) {
	_, err := Template("huge-prod")
	require.Error(t, err)
}

func TestFQDN(t *testing.T) {
	c := ClusterSpec{Name: "ai"}
	assert.Equal(t, "ai.example.com", c.FQDN("example.com"))
	c.Domain = "ml.example.com"
	assert.Equal(t, "ml.example.com", c.FQDN("example.com"))
}

func TestEffectiveClustersSecurity(t *testing.T) {
	spec, err := Parse([]byte(`
project_name: demo
enable_security_cluster: true
clusters:
  - name: dev
`))
	require.NoError(t, err)

	clusters := spec.EffectiveClusters()
	require.Len(t, clusters, 2)
	security := clusters[1]
	assert.Equal(t, SecurityClusterName, security.Name)
	assert.Equal(t, SizeSmall, security.Size)
	assert.True(t, security.CerbosEnabled)

	// a declared security cluster takes precedence over the synthetic one
	spec.Clusters = append(spec.Clusters, ClusterSpec{Name: SecurityClusterName, Size: SizeMedium})
	clusters = spec.EffectiveClusters()
	require.Len(t, clusters, 2)
	assert.Equal(t, SizeMedium, clusters[1].Size)
}

func TestEffectiveClustersDisabled(t *testing.T) {
	spec, err := Parse([]byte(`
project_name: demo
clusters:
  - name: dev
`))
	require.NoError(t, err)
	assert.Len(t, spec.EffectiveClusters(), 1)
}

func TestSourceKeyDistinct(t *testing.T) {
	a := &SourceDescriptor{Mode: ModeAirgappedVC, URL: "https://a/repo.git"}
	b := &SourceDescriptor{Mode: ModeAirgappedVC, URL: "https://b/repo.git"}
	assert.NotEqual(t, a.Key(), b.Key())
	var nilDesc *SourceDescriptor
	assert.Equal(t, string(ModeInternet), nilDesc.Key())
}

func TestExpandPlaceholders(t *testing.T) {
	t.Setenv("VW_TEST_TOKEN", "s3cret")

	out, err := ExpandPlaceholders("${VW_TEST_TOKEN}")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", out)

	_, err = ExpandPlaceholders("${VW_TEST_MISSING_VAR}")
	require.Error(t, err)

	out, err = ExpandPlaceholders("plain-token")
	require.NoError(t, err)
	assert.Equal(t, "plain-token", out)
}

func TestPlaceholderVars(t *testing.T) {
	assert.Equal(t, []string{"USER", "TOKEN"}, PlaceholderVars("${USER}:${TOKEN}"))
	assert.Empty(t, PlaceholderVars("no placeholders"))
}
