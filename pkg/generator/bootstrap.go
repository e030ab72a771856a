/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/vectorweight/vectorweight/pkg/errors"
)

// namespaceManifest renders the bootstrap Namespace as typed Kubernetes
// YAML so field names track the upstream API.
func namespaceManifest(name, project, cluster string) ([]byte, error) {
	ns := corev1.Namespace{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Namespace",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
			Labels: map[string]string{
				"app.kubernetes.io/managed-by": "vectorweight",
				"vectorweight.io/project":      project,
				"vectorweight.io/cluster":      cluster,
			},
		},
	}
	data, err := yaml.Marshal(ns)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderTemplate, "failed to serialize namespace manifest", err)
	}
	return data, nil
}

// webhookSecretManifest renders the Argo CD webhook shared-secret Secret.
// The value stays a ${WEBHOOK_SECRET} placeholder for the operator to
// substitute at apply time; the literal secret never enters the tree.
func webhookSecretManifest(project, cluster string) ([]byte, error) {
	secret := corev1.Secret{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Secret",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      "argocd-webhook-secret",
			Namespace: "argocd",
			Labels: map[string]string{
				"app.kubernetes.io/managed-by": "vectorweight",
				"vectorweight.io/project":      project,
				"vectorweight.io/cluster":      cluster,
			},
		},
		StringData: map[string]string{
			"webhook.github.secret": "${WEBHOOK_SECRET}",
		},
	}
	data, err := yaml.Marshal(secret)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderTemplate, "failed to serialize webhook secret manifest", err)
	}
	return data, nil
}
