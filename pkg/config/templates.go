/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"fmt"
	"sort"

	"github.com/vectorweight/vectorweight/pkg/errors"
)

// Template names accepted by the init command.
const (
	TemplateMinimalDev          = "minimal-dev"
	TemplateFullProduction      = "full-production"
	TemplateAirgappedEnterprise = "airgapped-enterprise"
)

var templates = map[string]string{
	TemplateMinimalDev: `# Minimal development deployment: one small cluster, no GPU,
# in-memory vector store. Suitable for laptops and CI.
project_name: vectorweight-dev
environment: development
deployment_mode: internet
deployment_target: direct
base_domain: dev.vectorweight.local
sync_policy: automated

clusters:
  - name: dev
    size: minimal
    vector_store: chroma-memory
`,

	TemplateFullProduction: `# Full production deployment: dedicated AI and security clusters,
# GPU support, persistent vector stores.
project_name: vectorweight
environment: production
deployment_mode: internet
deployment_target: vms
base_domain: vectorweight.ai
metallb_ip_range: 10.30.110.50-10.30.110.70
sync_policy: automated
enable_security_cluster: true
enable_gpu_operator: true
github_organization: vectorweight

clusters:
  - name: ai
    size: large
    gpu_enabled: true
    vector_store: weaviate
  - name: security
    size: medium
    vector_store: qdrant
    cerbos_enabled: true
  - name: apps
    size: medium
    vector_store: disabled

global_overrides:
  global:
    monitoring:
      retention: 30d
`,

	TemplateAirgappedEnterprise: `# Airgapped enterprise deployment: charts cloned from an internal
# mirror, credentials resolved from the environment at run time.
project_name: vectorweight-enterprise
environment: production
deployment_mode: airgapped-vc
deployment_target: vms
base_domain: enterprise.internal
metallb_ip_range: 192.168.40.10-192.168.40.40
sync_policy: manual
enable_security_cluster: true

source:
  mode: airgapped-vc
  url: https://git.enterprise.internal/platform/chart-mirror.git
  username: ${GIT_MIRROR_USER}
  token: ${GIT_MIRROR_TOKEN}
  expected_revision: stable

clusters:
  - name: ai
    size: large
    gpu_enabled: true
    vector_store: weaviate
  - name: security
    size: small
    vector_store: qdrant
    cerbos_enabled: true
`,
}

// TemplateNames returns the available init template names, sorted.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns the YAML document for a named init template.
func Template(name string) (string, error) {
	doc, ok := templates[name]
	if !ok {
		return "", errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("unknown template %q (available: %v)", name, TemplateNames()))
	}
	return doc, nil
}
