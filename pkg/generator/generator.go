/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	_ "embed"
	"fmt"
	"path"
	"slices"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vectorweight/vectorweight/pkg/component"
	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/errors"
	"github.com/vectorweight/vectorweight/pkg/source"
	"github.com/vectorweight/vectorweight/pkg/values"
)

//go:embed templates/application.yaml.tmpl
var applicationTemplate string

//go:embed templates/applicationset.yaml.tmpl
var applicationSetTemplate string

//go:embed templates/root-application.yaml.tmpl
var rootApplicationTemplate string

//go:embed templates/readme.md.tmpl
var readmeTemplate string

const valuesHeader = "# Generated by vectorweight. Do not edit; regenerate instead.\n---\n"

// Input carries everything one cluster render needs.
type Input struct {
	Spec    *config.DeploymentSpecification
	Cluster *config.ClusterSpec
	// Source is the resolved chart source shared by the run.
	Source *source.ResolvedTree
	// RepoURL is the GitOps repository the artifact tree will be pushed to.
	// Empty falls back to a conventional URL derived from the spec.
	RepoURL string
	// Version stamps generated READMEs.
	Version string
}

// applicationData feeds the Application template. The chart source and the
// GitOps repository holding the values overlay are separate Application
// sources; the overlay is referenced through the $values ref.
type applicationData struct {
	Name           string
	Namespace      string
	RepoURL        string
	Chart          string
	Version        string
	Path           string
	TargetRevision string
	GitOpsRepoURL  string
	GitOpsRevision string
	ValuesPath     string
	SyncWave       int
	Automated      bool
}

type appSetData struct {
	Cluster        string
	RepoURL        string
	TargetRevision string
	Automated      bool
}

type readmeData struct {
	Title      string
	Cluster    string
	Size       string
	FQDN       string
	Automated  bool
	Components []readmeComponent
}

type readmeComponent struct {
	Name      string
	Namespace string
	Chart     string
	Version   string
}

// EffectiveValues merges each component's tier-sized base values with the
// override layers: global, then release, then service, then the cluster's
// custom_values on top. Layers are keyed by component name; dotted keys
// expand before merging.
func EffectiveValues(spec *config.DeploymentSpecification, cluster *config.ClusterSpec) map[string]map[string]any {
	comps := component.ForCluster(spec, cluster)

	global := values.ExpandDotted(spec.Overrides.Global)
	release := values.ExpandDotted(spec.Overrides.Release)
	service := values.ExpandDotted(spec.Overrides.Service)
	custom := values.ExpandDotted(cluster.CustomValues)

	out := make(map[string]map[string]any, len(comps))
	for _, comp := range comps {
		out[comp.Name] = values.Merge(
			comp.Values,
			layerFor(global, comp.Name),
			layerFor(release, comp.Name),
			layerFor(service, comp.Name),
			layerFor(custom, comp.Name),
		)
	}
	return out
}

func layerFor(layer map[string]any, name string) map[string]any {
	if layer == nil {
		return nil
	}
	if m, ok := layer[name].(map[string]any); ok {
		return m
	}
	return nil
}

// Render produces the complete artifact tree for one cluster. It touches no
// filesystem state; commit the returned Artifact with WriteTo.
func Render(input *Input) (*Artifact, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	spec, cluster := input.Spec, input.Cluster
	automated := spec.SyncPolicy == config.SyncAutomated
	repoURL := gitOpsRepoURL(input)

	comps := component.ForCluster(spec, cluster)
	effective := EffectiveValues(spec, cluster)

	art := newArtifact(cluster.Name)

	// bootstrap manifests
	nsYAML, err := namespaceManifest("argocd", spec.ProjectName, cluster.Name)
	if err != nil {
		return nil, err
	}
	art.add("bootstrap/00-namespace.yaml", nsYAML)

	rootApp, err := renderTemplate(rootApplicationTemplate, appSetData{
		Cluster:        cluster.Name,
		RepoURL:        repoURL,
		TargetRevision: "main",
		Automated:      automated,
	})
	if err != nil {
		return nil, err
	}
	art.addString("bootstrap/01-root-application.yaml", rootApp)

	if spec.EnableWebhooks {
		secret, err := webhookSecretManifest(spec.ProjectName, cluster.Name)
		if err != nil {
			return nil, err
		}
		art.add("bootstrap/02-webhook-secret.yaml", secret)
	}

	// per-component application + values
	readme := readmeData{
		Title:     cases.Title(language.English).String(cluster.Name),
		Cluster:   cluster.Name,
		Size:      string(cluster.Size),
		FQDN:      cluster.FQDN(spec.BaseDomain),
		Automated: automated,
	}
	for _, comp := range comps {
		appData, err := applicationFor(input, comp, repoURL, automated)
		if err != nil {
			return nil, err
		}
		appYAML, err := renderTemplate(applicationTemplate, appData)
		if err != nil {
			return nil, err
		}
		art.addString(path.Join("components", comp.Name, "application.yaml"), appYAML)

		valYAML, err := values.MarshalCanonical(effective[comp.Name])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderTemplate,
				fmt.Sprintf("failed to serialize values for %s", comp.Name), err)
		}
		art.add(path.Join("components", comp.Name, "values.yaml"),
			append([]byte(valuesHeader), valYAML...))

		readme.Components = append(readme.Components, readmeComponent{
			Name:      comp.Name,
			Namespace: comp.Namespace,
			Chart:     comp.Chart.Name,
			Version:   comp.Chart.Version,
		})
	}

	// applicationset over the component directories
	appSet, err := renderTemplate(applicationSetTemplate, appSetData{
		Cluster:        cluster.Name,
		RepoURL:        repoURL,
		TargetRevision: "main",
		Automated:      automated,
	})
	if err != nil {
		return nil, err
	}
	art.addString("applicationset.yaml", appSet)

	// scaffolding for declared specialized workloads; the MCP gateway joins
	// them when enabled globally
	workloads := cluster.SpecializedWorkloads
	if spec.EnableMCP && !slices.Contains(workloads, "mcp") {
		workloads = append(append([]string{}, workloads...), "mcp")
	}
	for _, workload := range workloads {
		art.addString(path.Join("workloads", workload, "README.md"),
			fmt.Sprintf("# %s\n\nPlace %s manifests for the %s cluster here.\n",
				workload, workload, cluster.Name))
	}

	readmeOut, err := renderTemplate(readmeTemplate, readme)
	if err != nil {
		return nil, err
	}
	art.addString("README.md", readmeOut)

	art.addChecksums()
	return art, nil
}

// checkInput verifies every required render input is present, naming the
// missing key.
func checkInput(input *Input) error {
	missing := func(key string) error {
		return errors.New(errors.ErrCodeRenderMissingInput,
			fmt.Sprintf("render input missing required key %q", key))
	}
	switch {
	case input == nil:
		return missing("input")
	case input.Spec == nil:
		return missing("spec")
	case input.Cluster == nil:
		return missing("cluster")
	case input.Spec.ProjectName == "":
		return missing("spec.project_name")
	case input.Cluster.Name == "":
		return missing("cluster.name")
	case input.Source == nil:
		return missing("source")
	}
	if input.Spec.EffectiveMode().IsAirgapped() && input.Source.Root == "" {
		return missing("source.root")
	}
	return nil
}

// applicationFor maps a component onto its ArgoCD chart source. Internet
// mode references the upstream chart repository; airgapped modes reference
// the resolved mirror or tree. The values overlay rendered next to the
// Application is wired in as a second source on the GitOps repository.
func applicationFor(input *Input, comp component.Component, gitOpsRepoURL string, automated bool) (applicationData, error) {
	data := applicationData{
		Name:           comp.Name,
		Namespace:      comp.Namespace,
		GitOpsRepoURL:  gitOpsRepoURL,
		GitOpsRevision: "main",
		ValuesPath:     path.Join(input.Cluster.Name, "components", comp.Name, "values.yaml"),
		SyncWave:       comp.SyncWave,
		Automated:      automated,
	}

	mode := input.Spec.EffectiveMode()
	switch {
	case !mode.IsAirgapped():
		if comp.Chart.Repository == "" {
			return data, errors.New(errors.ErrCodeRenderMissingInput,
				fmt.Sprintf("render input missing required key %q", "chart.repository:"+comp.Name))
		}
		data.RepoURL = comp.Chart.Repository
		data.Chart = comp.Chart.Name
		data.Version = comp.Chart.Version
	case mode == config.ModeAirgappedVC:
		data.RepoURL = input.Spec.Source.URL
		data.Path = path.Join("charts", comp.Chart.Name)
		data.TargetRevision = input.Source.Revision
		if data.TargetRevision == "" {
			data.TargetRevision = "HEAD"
		}
	default:
		data.RepoURL = "file://" + input.Source.Root
		data.Path = path.Join("charts", comp.Chart.Name)
		data.TargetRevision = "HEAD"
	}
	return data, nil
}

// gitOpsRepoURL picks the repository the artifact tree is expected to live
// in. GitOpsRepositoryName documents the same convention for reports.
func gitOpsRepoURL(input *Input) string {
	if input.RepoURL != "" {
		return input.RepoURL
	}
	spec := input.Spec
	if spec.GitHubOrganization != "" {
		return fmt.Sprintf("https://github.com/%s/%s-deploy.git", spec.GitHubOrganization, spec.ProjectName)
	}
	return fmt.Sprintf("https://git.example.com/%s-deploy.git", spec.ProjectName)
}

// GitOpsRepositoryName returns the repository name the artifact tree for a
// cluster is expected to be pushed to.
func GitOpsRepositoryName(spec *config.DeploymentSpecification, cluster string) string {
	return fmt.Sprintf("%s-%s-deploy", spec.ProjectName, cluster)
}

func renderTemplate(tmplContent string, data any) (string, error) {
	tmpl, err := template.New("manifest").Parse(tmplContent)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRenderTemplate, "failed to parse template", err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(errors.ErrCodeRenderTemplate, "failed to execute template", err)
	}
	return buf.String(), nil
}
