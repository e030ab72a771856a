/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	_ "embed"

	"github.com/vectorweight/vectorweight/pkg/config"
)

//go:embed templates/deploy.sh.tmpl
var deployScriptTemplate string

//go:embed templates/toplevel-readme.md.tmpl
var topLevelReadmeTemplate string

// RenderTopLevel produces the files that sit above the per-cluster trees:
// the deploy.sh entry point and the top-level README.
func RenderTopLevel(spec *config.DeploymentSpecification) (*Artifact, error) {
	effective := spec.EffectiveClusters()
	clusters := make([]string, 0, len(effective))
	for _, c := range effective {
		clusters = append(clusters, c.Name)
	}

	var repositories []string
	if spec.AutoCreateRepositories {
		for _, c := range clusters {
			repositories = append(repositories, GitOpsRepositoryName(spec, c))
		}
	}

	art := newArtifact(spec.ProjectName)

	script, err := renderTemplate(deployScriptTemplate, struct {
		Project  string
		Clusters []string
	}{spec.ProjectName, clusters})
	if err != nil {
		return nil, err
	}
	art.addString("deploy.sh", script)

	readme, err := renderTemplate(topLevelReadmeTemplate, struct {
		Project      string
		Environment  string
		Mode         config.DeploymentMode
		Clusters     []string
		Repositories []string
	}{spec.ProjectName, spec.Environment, spec.EffectiveMode(), clusters, repositories})
	if err != nil {
		return nil, err
	}
	art.addString("README.md", readme)

	return art, nil
}
