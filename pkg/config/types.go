/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"fmt"
	"strings"
)

// DeploymentMode selects how chart sources are acquired.
type DeploymentMode string

const (
	// ModeInternet references upstream chart repositories directly; nothing
	// is fetched at generation time.
	ModeInternet DeploymentMode = "internet"
	// ModeAirgappedVC clones a version-control mirror of the charts.
	ModeAirgappedVC DeploymentMode = "airgapped-vc"
	// ModeAirgappedLocal uses a pre-populated directory on the local filesystem.
	ModeAirgappedLocal DeploymentMode = "airgapped-local"
	// ModeAirgappedNetwork fetches from an internal HTTP(S) or OCI endpoint.
	ModeAirgappedNetwork DeploymentMode = "airgapped-network"
	// ModeAirgappedArchive extracts a chart archive (tar.gz or zip).
	ModeAirgappedArchive DeploymentMode = "airgapped-archive"
)

// DeploymentModes lists all valid deployment modes.
func DeploymentModes() []DeploymentMode {
	return []DeploymentMode{
		ModeInternet,
		ModeAirgappedVC,
		ModeAirgappedLocal,
		ModeAirgappedNetwork,
		ModeAirgappedArchive,
	}
}

// IsAirgapped reports whether the mode requires a source descriptor.
func (m DeploymentMode) IsAirgapped() bool {
	return strings.HasPrefix(string(m), "airgapped-")
}

// DeploymentTarget selects where the generated clusters are expected to run.
type DeploymentTarget string

const (
	// TargetDirect deploys onto existing machines.
	TargetDirect DeploymentTarget = "direct"
	// TargetVMs deploys onto provisioned virtual machines.
	TargetVMs DeploymentTarget = "vms"
)

// ClusterSize is a named capacity tier. The tier table in pkg/generator maps
// each size to concrete CPU, memory, storage, and replica defaults.
type ClusterSize string

const (
	SizeMinimal ClusterSize = "minimal"
	SizeSmall   ClusterSize = "small"
	SizeMedium  ClusterSize = "medium"
	SizeLarge   ClusterSize = "large"
)

// ClusterSizes lists all valid cluster size tiers.
func ClusterSizes() []ClusterSize {
	return []ClusterSize{SizeMinimal, SizeSmall, SizeMedium, SizeLarge}
}

// VectorStore selects the vector database deployed to a cluster.
type VectorStore string

const (
	VectorStoreDisabled     VectorStore = "disabled"
	VectorStoreWeaviate     VectorStore = "weaviate"
	VectorStoreQdrant       VectorStore = "qdrant"
	VectorStoreChroma       VectorStore = "chroma"
	VectorStoreChromaMemory VectorStore = "chroma-memory"
)

// VectorStores lists all valid vector store selections.
func VectorStores() []VectorStore {
	return []VectorStore{
		VectorStoreDisabled,
		VectorStoreWeaviate,
		VectorStoreQdrant,
		VectorStoreChroma,
		VectorStoreChromaMemory,
	}
}

// Enabled reports whether a vector store component should be emitted.
func (v VectorStore) Enabled() bool {
	return v != "" && v != VectorStoreDisabled
}

// SyncPolicy controls both the generated ArgoCD sync behavior and how the
// orchestrator treats per-cluster failures.
type SyncPolicy string

const (
	// SyncAutomated syncs continuously; generation failures are isolated
	// per cluster.
	SyncAutomated SyncPolicy = "automated"
	// SyncManual requires operator-triggered syncs; generation fails fast.
	SyncManual SyncPolicy = "manual"
)

// SourceDescriptor describes where chart content comes from for airgapped
// modes. Credential fields hold ${VAR} placeholders resolved from the
// environment at use time, never literal secrets.
type SourceDescriptor struct {
	Mode DeploymentMode `yaml:"mode" json:"mode"`

	// URL is the clone URL, fetch URL, or oci:// reference, depending on mode.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// Path is the local directory or archive path for local and archive modes.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Token    string `yaml:"token,omitempty" json:"token,omitempty"`

	// CACertificatePath points at a PEM bundle for private endpoints.
	CACertificatePath string `yaml:"ca_certificate_path,omitempty" json:"ca_certificate_path,omitempty"`

	// ExpectedRevision pins the clone to a commit or tag in vc mode.
	ExpectedRevision string `yaml:"expected_revision,omitempty" json:"expected_revision,omitempty"`

	// VerificationEnabled turns on digest verification for archive mode.
	VerificationEnabled bool `yaml:"verification_enabled,omitempty" json:"verification_enabled,omitempty"`
	// ArchiveDigest is the declared sha256 of the archive (hex, with or
	// without a "sha256:" prefix).
	ArchiveDigest string `yaml:"archive_digest,omitempty" json:"archive_digest,omitempty"`
}

// Key returns a stable identity for resolution caching. Two descriptors with
// the same key resolve to the same tree within a run.
func (s *SourceDescriptor) Key() string {
	if s == nil {
		return string(ModeInternet)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s", s.Mode, s.URL, s.Path, s.ExpectedRevision, s.ArchiveDigest)
}

// OverrideLayers holds the three named override tiers applied to every
// cluster. Precedence is service over release over global.
type OverrideLayers struct {
	Global  map[string]any `yaml:"global,omitempty" json:"global,omitempty"`
	Release map[string]any `yaml:"release,omitempty" json:"release,omitempty"`
	Service map[string]any `yaml:"service,omitempty" json:"service,omitempty"`
}

// ClusterSpec describes one cluster to generate artifacts for.
type ClusterSpec struct {
	Name   string      `yaml:"name" json:"name"`
	Domain string      `yaml:"domain,omitempty" json:"domain,omitempty"`
	Size   ClusterSize `yaml:"size,omitempty" json:"size,omitempty"`

	GPUEnabled    bool        `yaml:"gpu_enabled,omitempty" json:"gpu_enabled,omitempty"`
	VectorStore   VectorStore `yaml:"vector_store,omitempty" json:"vector_store,omitempty"`
	CerbosEnabled bool        `yaml:"cerbos_enabled,omitempty" json:"cerbos_enabled,omitempty"`

	// SpecializedWorkloads names extra component directories to scaffold.
	SpecializedWorkloads []string `yaml:"specialized_workloads,omitempty" json:"specialized_workloads,omitempty"`

	// CustomValues is merged above all override layers for this cluster.
	CustomValues map[string]any `yaml:"custom_values,omitempty" json:"custom_values,omitempty"`
}

// FQDN returns the cluster's fully qualified domain, falling back to the
// deployment base domain when the cluster does not declare its own.
func (c *ClusterSpec) FQDN(baseDomain string) string {
	if c.Domain != "" {
		return c.Domain
	}
	return fmt.Sprintf("%s.%s", c.Name, baseDomain)
}

// DeploymentSpecification is the root document driving a generation run.
type DeploymentSpecification struct {
	ProjectName string `yaml:"project_name" json:"project_name"`
	Environment string `yaml:"environment,omitempty" json:"environment,omitempty"`

	DeploymentMode   DeploymentMode   `yaml:"deployment_mode,omitempty" json:"deployment_mode,omitempty"`
	DeploymentTarget DeploymentTarget `yaml:"deployment_target,omitempty" json:"deployment_target,omitempty"`

	Source *SourceDescriptor `yaml:"source,omitempty" json:"source,omitempty"`

	Clusters []ClusterSpec `yaml:"clusters" json:"clusters"`

	EnableSecurityCluster bool `yaml:"enable_security_cluster,omitempty" json:"enable_security_cluster,omitempty"`
	EnableCerbos          bool `yaml:"enable_cerbos,omitempty" json:"enable_cerbos,omitempty"`
	EnableMCP             bool `yaml:"enable_mcp,omitempty" json:"enable_mcp,omitempty"`
	EnableGPUOperator     bool `yaml:"enable_gpu_operator,omitempty" json:"enable_gpu_operator,omitempty"`

	GitHubOrganization     string `yaml:"github_organization,omitempty" json:"github_organization,omitempty"`
	AutoCreateRepositories bool   `yaml:"auto_create_repositories,omitempty" json:"auto_create_repositories,omitempty"`

	BaseDomain     string `yaml:"base_domain,omitempty" json:"base_domain,omitempty"`
	MetalLBIPRange string `yaml:"metallb_ip_range,omitempty" json:"metallb_ip_range,omitempty"`

	SyncPolicy     SyncPolicy `yaml:"sync_policy,omitempty" json:"sync_policy,omitempty"`
	EnableWebhooks bool       `yaml:"enable_webhooks,omitempty" json:"enable_webhooks,omitempty"`

	Overrides OverrideLayers `yaml:"global_overrides,omitempty" json:"global_overrides,omitempty"`
}

// Cluster returns the cluster spec with the given name, or nil.
func (s *DeploymentSpecification) Cluster(name string) *ClusterSpec {
	for i := range s.Clusters {
		if s.Clusters[i].Name == name {
			return &s.Clusters[i]
		}
	}
	return nil
}

// SecurityClusterName is the synthetic cluster added by
// enable_security_cluster.
const SecurityClusterName = "security"

// EffectiveClusters returns the clusters a run generates artifacts for: the
// declared clusters, plus a small Cerbos-enabled security cluster when
// enable_security_cluster is set and no cluster of that name is declared.
func (s *DeploymentSpecification) EffectiveClusters() []ClusterSpec {
	if !s.EnableSecurityCluster || s.Cluster(SecurityClusterName) != nil {
		return s.Clusters
	}
	out := make([]ClusterSpec, 0, len(s.Clusters)+1)
	out = append(out, s.Clusters...)
	out = append(out, ClusterSpec{
		Name:          SecurityClusterName,
		Size:          SizeSmall,
		CerbosEnabled: true,
	})
	return out
}

// EffectiveMode returns the deployment mode, honoring a source descriptor
// whose mode is set when the top-level field is not.
func (s *DeploymentSpecification) EffectiveMode() DeploymentMode {
	if s.DeploymentMode != "" {
		return s.DeploymentMode
	}
	if s.Source != nil && s.Source.Mode != "" {
		return s.Source.Mode
	}
	return ModeInternet
}
