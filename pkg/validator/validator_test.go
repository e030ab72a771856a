/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorweight/vectorweight/pkg/config"
)

func validSpec() *config.DeploymentSpecification {
	spec, err := config.Parse([]byte(`
project_name: demo
base_domain: example.com
metallb_ip_range: 10.0.0.10-10.0.0.20
clusters:
  - name: ai
    size: medium
    vector_store: weaviate
  - name: apps
    size: small
`))
	if err != nil {
		panic(err)
	}
	return spec
}

func TestValidateAccepts(t *testing.T) {
	r := Validate(validSpec())
	assert.True(t, r.Valid())
	assert.NoError(t, r.Err())
	assert.Zero(t, r.Summary.Errors)
}

func TestValidateCollectsAllIssues(t *testing.T) {
	spec := validSpec()
	spec.ProjectName = ""
	spec.MetalLBIPRange = "banana"
	spec.Clusters[1].Size = "gigantic"

	r := Validate(spec)
	assert.False(t, r.Valid())
	// all three problems reported in a single pass
	assert.GreaterOrEqual(t, len(r.Errors()), 3)
	require.Error(t, r.Err())
}

func TestValidateDuplicateClusterNames(t *testing.T) {
	spec := validSpec()
	spec.Clusters[1].Name = "ai"

	r := Validate(spec)
	assert.False(t, r.Valid())
	found := false
	for _, issue := range r.Errors() {
		if issue.Field == "clusters[1].name" {
			found = true
		}
	}
	assert.True(t, found, "duplicate name should be attributed to the second cluster")
}

func TestValidateEnumSuggestion(t *testing.T) {
	spec := validSpec()
	spec.Clusters[0].VectorStore = "weviate"

	r := Validate(spec)
	require.False(t, r.Valid())
	var got string
	for _, issue := range r.Errors() {
		if issue.Field == "clusters[0].vector_store" {
			got = issue.Suggestion
		}
	}
	assert.Equal(t, "weaviate", got)
}

func TestValidateAirgappedRequiresSource(t *testing.T) {
	spec := validSpec()
	spec.DeploymentMode = config.ModeAirgappedVC

	r := Validate(spec)
	assert.False(t, r.Valid())
}

func TestValidateArchiveDigestRequired(t *testing.T) {
	spec := validSpec()
	spec.DeploymentMode = config.ModeAirgappedArchive
	spec.Source = &config.SourceDescriptor{
		Mode:                config.ModeAirgappedArchive,
		Path:                "/srv/charts.tar.gz",
		VerificationEnabled: true,
	}

	r := Validate(spec)
	assert.False(t, r.Valid())
}

func TestValidateUnresolvedPlaceholder(t *testing.T) {
	spec := validSpec()
	spec.DeploymentMode = config.ModeAirgappedVC
	spec.Source = &config.SourceDescriptor{
		Mode:  config.ModeAirgappedVC,
		URL:   "https://git.internal/mirror.git",
		Token: "${VW_DEFINITELY_UNSET_TOKEN}",
	}

	r := Validate(spec)
	assert.False(t, r.Valid())
}

func TestValidateIPRange(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"ok", "10.0.0.1-10.0.0.9", true},
		{"reversed", "10.0.0.9-10.0.0.1", false},
		{"mixed families", "10.0.0.1-::9", false},
		{"not a range", "10.0.0.1", false},
		{"empty allowed", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := validSpec()
			spec.MetalLBIPRange = tc.value
			assert.Equal(t, tc.valid, Validate(spec).Valid())
		})
	}
}

func TestValidateUnknownOverrideComponentWarns(t *testing.T) {
	spec := validSpec()
	spec.Overrides.Global = map[string]any{
		"monitoring": map[string]any{"retention": "7d"},
		"ciliumm":    map[string]any{"debug": true},
	}
	spec.Clusters[1].CustomValues = map[string]any{
		"grafana.adminUser": "ops",
	}

	r := Validate(spec)
	assert.True(t, r.Valid(), "unknown component keys warn, never block")

	fields := map[string]Issue{}
	for _, issue := range r.Warnings() {
		fields[issue.Field] = issue
	}
	require.Contains(t, fields, "global_overrides.global.ciliumm")
	assert.Contains(t, fields["global_overrides.global.ciliumm"].Message, `"cilium"`)
	assert.Contains(t, fields, "clusters[1].custom_values.grafana.adminUser")
	assert.NotContains(t, fields, "global_overrides.global.monitoring")
}

func TestValidateWarningsDoNotBlock(t *testing.T) {
	spec := validSpec()
	spec.Clusters[0].GPUEnabled = true
	spec.Clusters[0].VectorStore = config.VectorStoreChromaMemory

	r := Validate(spec)
	assert.True(t, r.Valid())
	assert.NotEmpty(t, r.Warnings())
	assert.True(t, r.Summary.Valid)
}
