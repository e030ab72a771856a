/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/errors"
	"github.com/vectorweight/vectorweight/pkg/source"
)

func internetSpec(t *testing.T) *config.DeploymentSpecification {
	t.Helper()
	spec, err := config.Parse([]byte(`
project_name: demo
base_domain: example.com
github_organization: vectorweight
clusters:
  - name: dev
    size: minimal
  - name: ai
    size: large
    gpu_enabled: true
    vector_store: weaviate
`))
	require.NoError(t, err)
	return spec
}

func symbolicTree() *source.ResolvedTree {
	return &source.ResolvedTree{Mode: config.ModeInternet, Digest: "d", Symbolic: true}
}

func TestRenderInternetMode(t *testing.T) {
	spec := internetSpec(t)
	art, err := Render(&Input{Spec: spec, Cluster: spec.Cluster("ai"), Source: symbolicTree()})
	require.NoError(t, err)

	paths := art.Paths()
	assert.Contains(t, paths, "bootstrap/00-namespace.yaml")
	assert.Contains(t, paths, "bootstrap/01-root-application.yaml")
	assert.Contains(t, paths, "components/cilium/application.yaml")
	assert.Contains(t, paths, "components/cilium/values.yaml")
	assert.Contains(t, paths, "components/weaviate/values.yaml")
	assert.Contains(t, paths, "components/gpu-operator/application.yaml")
	assert.Contains(t, paths, "applicationset.yaml")
	assert.Contains(t, paths, "README.md")
	assert.Contains(t, paths, "checksums.txt")

	app := string(art.Files["components/cilium/application.yaml"])
	assert.Contains(t, app, "repoURL: https://helm.cilium.io")
	assert.Contains(t, app, "chart: cilium")
	assert.Contains(t, app, "targetRevision: 1.17.4")
	assert.Contains(t, app, "repoURL: https://github.com/vectorweight/demo-deploy.git")
	assert.Contains(t, app, "ref: values")
	assert.Contains(t, app, "automated:")
}

func TestRenderApplicationReferencesValuesOverlay(t *testing.T) {
	spec := internetSpec(t)
	spec.Cluster("ai").CustomValues = map[string]any{
		"monitoring": map[string]any{
			"grafana": map[string]any{"adminUser": "ops-admin"},
		},
	}

	art, err := Render(&Input{Spec: spec, Cluster: spec.Cluster("ai"), Source: symbolicTree()})
	require.NoError(t, err)

	// the custom value lands in the rendered overlay
	overlay := string(art.Files["components/monitoring/values.yaml"])
	assert.Contains(t, overlay, "adminUser: ops-admin")

	// and the Application pulls that overlay through the $values source,
	// not a values.yaml inside the remote chart
	app := string(art.Files["components/monitoring/application.yaml"])
	assert.Contains(t, app, "- $values/ai/components/monitoring/values.yaml")
	assert.Contains(t, app, "ref: values")
	assert.NotContains(t, app, "- values.yaml")
}

func TestRenderMinimalTierOmitsOptionalStanzas(t *testing.T) {
	spec := internetSpec(t)
	art, err := Render(&Input{Spec: spec, Cluster: spec.Cluster("dev"), Source: symbolicTree()})
	require.NoError(t, err)

	for _, p := range art.Paths() {
		assert.NotContains(t, p, "gpu-operator")
		assert.NotContains(t, p, "weaviate")
		assert.NotContains(t, p, "qdrant")
	}
}

func TestRenderMissingSource(t *testing.T) {
	spec := internetSpec(t)
	_, err := Render(&Input{Spec: spec, Cluster: spec.Cluster("dev")})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRenderMissingInput, errors.CodeOf(err))
}

func TestRenderAirgappedNeedsRoot(t *testing.T) {
	spec := internetSpec(t)
	spec.DeploymentMode = config.ModeAirgappedLocal
	spec.Source = &config.SourceDescriptor{Mode: config.ModeAirgappedLocal, Path: "/srv/charts"}

	_, err := Render(&Input{
		Spec:    spec,
		Cluster: spec.Cluster("dev"),
		Source:  &source.ResolvedTree{Mode: config.ModeAirgappedLocal, Digest: "d"},
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRenderMissingInput, errors.CodeOf(err))
}

func TestRenderAirgappedVCReferencesMirror(t *testing.T) {
	spec := internetSpec(t)
	spec.DeploymentMode = config.ModeAirgappedVC
	spec.Source = &config.SourceDescriptor{
		Mode: config.ModeAirgappedVC,
		URL:  "https://git.internal/mirror.git",
	}

	art, err := Render(&Input{
		Spec:    spec,
		Cluster: spec.Cluster("dev"),
		Source: &source.ResolvedTree{
			Mode:     config.ModeAirgappedVC,
			Root:     t.TempDir(),
			Digest:   "d",
			Revision: "abc123def",
		},
	})
	require.NoError(t, err)

	app := string(art.Files["components/cilium/application.yaml"])
	assert.Contains(t, app, "repoURL: https://git.internal/mirror.git")
	assert.Contains(t, app, "path: charts/cilium")
	assert.Contains(t, app, "targetRevision: abc123def")
	assert.NotContains(t, app, "chart: cilium")
}

func TestRenderWebhookSecret(t *testing.T) {
	spec := internetSpec(t)
	spec.EnableWebhooks = true

	art, err := Render(&Input{Spec: spec, Cluster: spec.Cluster("dev"), Source: symbolicTree()})
	require.NoError(t, err)

	secret := string(art.Files["bootstrap/02-webhook-secret.yaml"])
	assert.Contains(t, secret, "kind: Secret")
	assert.Contains(t, secret, "name: argocd-webhook-secret")
	assert.Contains(t, secret, "${WEBHOOK_SECRET}")

	spec.EnableWebhooks = false
	art, err = Render(&Input{Spec: spec, Cluster: spec.Cluster("dev"), Source: symbolicTree()})
	require.NoError(t, err)
	assert.NotContains(t, art.Paths(), "bootstrap/02-webhook-secret.yaml")
}

func TestRenderMCPWorkloadScaffold(t *testing.T) {
	spec := internetSpec(t)
	spec.EnableMCP = true
	spec.Cluster("ai").SpecializedWorkloads = []string{"mcp", "training"}

	art, err := Render(&Input{Spec: spec, Cluster: spec.Cluster("dev"), Source: symbolicTree()})
	require.NoError(t, err)
	assert.Contains(t, art.Paths(), "workloads/mcp/README.md")

	// a cluster already declaring mcp keeps a single scaffold
	art, err = Render(&Input{Spec: spec, Cluster: spec.Cluster("ai"), Source: symbolicTree()})
	require.NoError(t, err)
	assert.Contains(t, art.Paths(), "workloads/mcp/README.md")
	assert.Contains(t, art.Paths(), "workloads/training/README.md")
}

func TestRenderManualSyncPolicy(t *testing.T) {
	spec := internetSpec(t)
	spec.SyncPolicy = config.SyncManual

	art, err := Render(&Input{Spec: spec, Cluster: spec.Cluster("dev"), Source: symbolicTree()})
	require.NoError(t, err)
	assert.NotContains(t, string(art.Files["components/cilium/application.yaml"]), "automated:")
	assert.NotContains(t, string(art.Files["applicationset.yaml"]), "automated:")
}

func TestRenderDeterministic(t *testing.T) {
	spec := internetSpec(t)
	in := &Input{Spec: spec, Cluster: spec.Cluster("ai"), Source: symbolicTree()}

	first, err := Render(in)
	require.NoError(t, err)
	second, err := Render(in)
	require.NoError(t, err)

	require.Equal(t, first.Paths(), second.Paths())
	for _, p := range first.Paths() {
		assert.Equal(t, first.Files[p], second.Files[p], p)
	}
}

func TestEffectiveValuesPrecedence(t *testing.T) {
	spec := internetSpec(t)
	spec.Overrides = config.OverrideLayers{
		Global:  map[string]any{"monitoring": map[string]any{"a": 1, "b": 1, "c": 1}},
		Release: map[string]any{"monitoring": map[string]any{"b": 2, "c": 2}},
		Service: map[string]any{"monitoring": map[string]any{"c": 3}},
	}

	eff := EffectiveValues(spec, spec.Cluster("dev"))
	monitoring := eff["monitoring"]
	assert.Equal(t, 1, monitoring["a"])
	assert.Equal(t, 2, monitoring["b"])
	assert.Equal(t, 3, monitoring["c"])
}

func TestEffectiveValuesCustomValuesWinOverAllLayers(t *testing.T) {
	spec := internetSpec(t)
	spec.Overrides = config.OverrideLayers{
		Service: map[string]any{"monitoring": map[string]any{"c": 3}},
	}
	spec.Cluster("dev").CustomValues = map[string]any{
		"monitoring": map[string]any{"c": 4},
	}

	eff := EffectiveValues(spec, spec.Cluster("dev"))
	assert.Equal(t, 4, eff["monitoring"]["c"])
}

func TestEffectiveValuesDottedKeys(t *testing.T) {
	spec := internetSpec(t)
	spec.Overrides = config.OverrideLayers{
		Global: map[string]any{"monitoring.grafana.enabled": false},
	}

	eff := EffectiveValues(spec, spec.Cluster("dev"))
	grafana := eff["monitoring"]["grafana"].(map[string]any)
	assert.Equal(t, false, grafana["enabled"])
}

func TestRenderedValuesAreValidYAML(t *testing.T) {
	spec := internetSpec(t)
	art, err := Render(&Input{Spec: spec, Cluster: spec.Cluster("ai"), Source: symbolicTree()})
	require.NoError(t, err)

	for _, p := range art.Paths() {
		if !strings.HasSuffix(p, "values.yaml") {
			continue
		}
		var out map[string]any
		require.NoError(t, yaml.Unmarshal(art.Files[p], &out), p)
	}
}

func TestChecksumsCoverAllFiles(t *testing.T) {
	spec := internetSpec(t)
	art, err := Render(&Input{Spec: spec, Cluster: spec.Cluster("dev"), Source: symbolicTree()})
	require.NoError(t, err)

	sums := strings.TrimSpace(string(art.Files[ChecksumFileName]))
	lines := strings.Split(sums, "\n")
	assert.Len(t, lines, len(art.Files)-1) // everything except checksums.txt itself
	for _, line := range lines {
		parts := strings.SplitN(line, "  ", 2)
		require.Len(t, parts, 2)
		assert.Len(t, parts[0], 64)
		assert.Contains(t, art.Files, parts[1])
	}
}

func TestWriteToCommitsAtomically(t *testing.T) {
	spec := internetSpec(t)
	art, err := Render(&Input{Spec: spec, Cluster: spec.Cluster("dev"), Source: symbolicTree()})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out", "dev")
	require.NoError(t, art.WriteTo(dir))
	assert.FileExists(t, filepath.Join(dir, "README.md"))
	assert.FileExists(t, filepath.Join(dir, "bootstrap", "00-namespace.yaml"))

	// replacing an existing tree drops stale files
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.yaml"), []byte("old"), 0o644))
	require.NoError(t, art.WriteTo(dir))
	assert.NoFileExists(t, filepath.Join(dir, "stale.yaml"))
}

func TestRenderTopLevel(t *testing.T) {
	spec := internetSpec(t)
	spec.AutoCreateRepositories = true

	art, err := RenderTopLevel(spec)
	require.NoError(t, err)

	script := string(art.Files["deploy.sh"])
	assert.Contains(t, script, `"dev"`)
	assert.Contains(t, script, `"ai"`)

	readme := string(art.Files["README.md"])
	assert.Contains(t, readme, "demo-dev-deploy")

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, art.WriteTo(dir))
	info, err := os.Stat(filepath.Join(dir, "deploy.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111, "deploy.sh must be executable")
}

func TestNamespaceManifest(t *testing.T) {
	data, err := namespaceManifest("argocd", "demo", "dev")
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "kind: Namespace")
	assert.Contains(t, out, "name: argocd")
	assert.Contains(t, out, "vectorweight.io/cluster: dev")
}
