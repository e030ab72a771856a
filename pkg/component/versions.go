/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package component

import "sort"

// Chart is one entry in the pinned chart catalog.
type Chart struct {
	// Name is the chart name within its repository.
	Name string
	// Repository is the upstream Helm repository URL.
	Repository string
	// Version is the pinned chart version.
	Version string
}

// Pinned chart catalog. Versions move together through release qualification,
// never individually.
var catalog = map[string]Chart{
	"cilium":       {Name: "cilium", Repository: "https://helm.cilium.io", Version: "1.17.4"},
	"metallb":      {Name: "metallb", Repository: "https://charts.bitnami.com/bitnami", Version: "6.4.18"},
	"cert-manager": {Name: "cert-manager", Repository: "https://charts.jetstack.io", Version: "v1.15.3"},
	"ingress":      {Name: "gateway", Repository: "https://istio-release.storage.googleapis.com/charts", Version: "1.22.3"},
	"monitoring":   {Name: "kube-prometheus-stack", Repository: "https://prometheus-community.github.io/helm-charts", Version: "61.3.2"},
	"weaviate":     {Name: "weaviate", Repository: "https://weaviate.github.io/weaviate-helm", Version: "25.2.3"},
	"qdrant":       {Name: "qdrant", Repository: "https://qdrant.github.io/qdrant-helm", Version: "0.7.0"},
	"chroma":       {Name: "chromadb", Repository: "https://amikos-tech.github.io/chromadb-chart", Version: "0.1.23"},
	"gpu-operator": {Name: "gpu-operator", Repository: "https://helm.ngc.nvidia.com/nvidia", Version: "v23.6.1"},
	"cerbos":       {Name: "cerbos", Repository: "https://download.cerbos.dev/helm-charts", Version: "0.30.0"},
	"argo-cd":      {Name: "argo-cd", Repository: "https://argoproj.github.io/argo-helm", Version: "8.1.1"},
}

// Catalog returns the chart entry for a component name.
func Catalog(name string) (Chart, bool) {
	c, ok := catalog[name]
	return c, ok
}

// Known reports whether name is a catalog component.
func Known(name string) bool {
	_, ok := catalog[name]
	return ok
}

// Names returns every catalog component name, sorted.
func Names() []string {
	out := make([]string, 0, len(catalog))
	for name := range catalog {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ArgoCD returns the pinned chart for the GitOps controller itself, used by
// the bootstrap manifests.
func ArgoCD() Chart {
	return catalog["argo-cd"]
}
