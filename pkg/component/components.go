/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"fmt"

	"github.com/vectorweight/vectorweight/pkg/config"
)

// Component is one deployable unit in a cluster's artifact tree.
type Component struct {
	// Name is the component directory and ArgoCD application name.
	Name string
	// Namespace is the target namespace in the cluster.
	Namespace string
	// Chart identifies the pinned chart backing the component.
	Chart Chart
	// Values is the tier-sized base values overlay for the chart. Override
	// layers merge on top of this.
	Values map[string]any
	// SyncWave orders deployment; lower waves sync first.
	SyncWave int
}

// ForCluster returns the enabled components for a cluster, in deployment
// order. Components whose feature is off do not appear at all.
func ForCluster(spec *config.DeploymentSpecification, cluster *config.ClusterSpec) []Component {
	sizing := SizingFor(cluster.Size)
	fqdn := cluster.FQDN(spec.BaseDomain)

	var out []Component
	add := func(name, namespace string, values map[string]any) {
		out = append(out, Component{
			Name:      name,
			Namespace: namespace,
			Chart:     catalog[name],
			Values:    values,
			SyncWave:  len(out),
		})
	}

	add("cilium", "kube-system", ciliumValues(sizing))
	if spec.MetalLBIPRange != "" {
		add("metallb", "metallb-system", metallbValues(spec.MetalLBIPRange))
	}
	add("cert-manager", "cert-manager", certManagerValues(sizing))
	add("ingress", "istio-system", ingressValues(sizing, fqdn))
	add("monitoring", "monitoring", monitoringValues(sizing, spec.Environment, fqdn))

	if cluster.VectorStore.Enabled() {
		add(vectorStoreComponent(cluster.VectorStore), "vector-store",
			vectorStoreValues(cluster.VectorStore, sizing))
	}

	if cluster.GPUEnabled || spec.EnableGPUOperator {
		add("gpu-operator", "gpu-operator", gpuOperatorValues())
	}
	if cluster.CerbosEnabled || spec.EnableCerbos {
		add("cerbos", "cerbos", cerbosValues(sizing))
	}

	return out
}

// vectorStoreComponent maps a vector store selection to its chart catalog
// name; both chroma variants deploy the chromadb chart.
func vectorStoreComponent(vs config.VectorStore) string {
	if vs == config.VectorStoreChromaMemory {
		return "chroma"
	}
	return string(vs)
}

func ciliumValues(sizing Sizing) map[string]any {
	operatorReplicas := 2
	hubble := true
	if sizing.Replicas < 2 {
		operatorReplicas = 1
		hubble = false
	}
	return map[string]any{
		"kubeProxyReplacement": true,
		"operator": map[string]any{
			"replicas": operatorReplicas,
		},
		"hubble": map[string]any{
			"relay": map[string]any{"enabled": hubble},
			"ui":    map[string]any{"enabled": hubble},
		},
	}
}

func metallbValues(ipRange string) map[string]any {
	return map[string]any{
		"ipAddressPools": []any{
			map[string]any{
				"name":       "default",
				"addresses":  []any{ipRange},
				"autoAssign": true,
			},
		},
		"l2Advertisements": []any{
			map[string]any{"name": "default"},
		},
	}
}

func certManagerValues(sizing Sizing) map[string]any {
	replicas := 1
	if sizing.Replicas >= 3 {
		replicas = 2
	}
	return map[string]any{
		"installCRDs":  true,
		"replicaCount": replicas,
	}
}

func ingressValues(sizing Sizing, fqdn string) map[string]any {
	return map[string]any{
		"service": map[string]any{
			"type": "LoadBalancer",
		},
		"autoscaling": map[string]any{
			"enabled":     sizing.Replicas > 1,
			"minReplicas": min(sizing.Replicas, 2),
			"maxReplicas": sizing.Replicas,
		},
		"labels": map[string]any{
			"cluster-domain": fqdn,
		},
	}
}

func monitoringValues(sizing Sizing, environment, fqdn string) map[string]any {
	retention := "15d"
	if environment == "production" {
		retention = "30d"
	}
	return map[string]any{
		"prometheus": map[string]any{
			"prometheusSpec": map[string]any{
				"retention": retention,
				"resources": sizing.resources(),
			},
		},
		"grafana": map[string]any{
			"enabled": true,
			"ingress": map[string]any{
				"enabled": true,
				"hosts":   []any{fmt.Sprintf("grafana.%s", fqdn)},
			},
		},
	}
}

func vectorStoreValues(vs config.VectorStore, sizing Sizing) map[string]any {
	switch vs {
	case config.VectorStoreWeaviate:
		return map[string]any{
			"replicas":  sizing.Replicas,
			"resources": sizing.resources(),
			"storage": map[string]any{
				"size": sizing.Storage.String(),
			},
		}
	case config.VectorStoreQdrant:
		return map[string]any{
			"replicaCount": sizing.Replicas,
			"resources":    sizing.resources(),
			"persistence": map[string]any{
				"size": sizing.Storage.String(),
			},
		}
	case config.VectorStoreChroma:
		return map[string]any{
			"replicaCount": 1,
			"resources":    sizing.resources(),
			"persistence": map[string]any{
				"enabled": true,
				"size":    sizing.Storage.String(),
			},
		}
	case config.VectorStoreChromaMemory:
		// ephemeral dev store: single replica, no volume
		return map[string]any{
			"replicaCount": 1,
			"persistence": map[string]any{
				"enabled": false,
			},
		}
	default:
		return map[string]any{}
	}
}

func gpuOperatorValues() map[string]any {
	return map[string]any{
		"driver": map[string]any{
			"enabled": true,
		},
		"toolkit": map[string]any{
			"enabled": true,
		},
		"dcgmExporter": map[string]any{
			"enabled": true,
		},
	}
}

func cerbosValues(sizing Sizing) map[string]any {
	return map[string]any{
		"replicaCount": min(sizing.Replicas, 3),
		"resources":    sizing.resources(),
	}
}
