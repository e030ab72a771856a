/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/urfave/cli/v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"

	"github.com/vectorweight/vectorweight/pkg/defaults"
	"github.com/vectorweight/vectorweight/pkg/header"
	"github.com/vectorweight/vectorweight/pkg/k8s/client"
	"github.com/vectorweight/vectorweight/pkg/serializer"
	"github.com/vectorweight/vectorweight/pkg/state"
)

// applicationsResource addresses Argo CD Application objects.
var applicationsResource = schema.GroupVersionResource{
	Group:    "argoproj.io",
	Version:  "v1alpha1",
	Resource: "applications",
}

// ClusterStatus summarizes one generated cluster tree.
type ClusterStatus struct {
	Cluster     string    `json:"cluster" yaml:"cluster"`
	Fingerprint string    `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty" yaml:"generated_at,omitempty"`
	Generator   string    `json:"generator,omitempty" yaml:"generator,omitempty"`
}

// ApplicationStatus summarizes one Argo CD Application read from a
// cluster.
type ApplicationStatus struct {
	Name   string `json:"name" yaml:"name"`
	Sync   string `json:"sync,omitempty" yaml:"sync,omitempty"`
	Health string `json:"health,omitempty" yaml:"health,omitempty"`
}

// StatusReport is the output of the status command.
type StatusReport struct {
	header.Header `yaml:",inline"`

	OutputDir    string              `json:"output_dir" yaml:"output_dir"`
	Clusters     []ClusterStatus     `json:"clusters" yaml:"clusters"`
	Applications []ApplicationStatus `json:"applications,omitempty" yaml:"applications,omitempty"`
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:                  "status",
		EnableShellCompletion: true,
		Usage:                 "Show generation state and, optionally, Argo CD sync status",
		Description: `Show the recorded generation state of every cluster tree under the
output directory.

With --kubeconfig, additionally reads Argo CD Application objects from
the cluster and reports their sync and health status. The command only
reads; it never mutates cluster state.

# Examples

Local generation state:
  vectorweight status --output-dir deploy

Include live Application status:
  vectorweight status -d deploy --kubeconfig ~/.kube/config`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"d"},
				Value:   "deploy",
				Usage:   "Root directory of generated artifact trees",
			},
			&cli.StringFlag{
				Name:  "namespace",
				Value: "argocd",
				Usage: "Namespace to read Argo CD Applications from",
			},
			kubeconfigFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", outFormat)
			}

			outputDir := cmd.String("output-dir")
			report, err := collectStatus(outputDir)
			if err != nil {
				return err
			}

			if kubeconfig := cmd.String("kubeconfig"); kubeconfig != "" {
				apps, err := readApplications(ctx, kubeconfig, cmd.String("namespace"))
				if err != nil {
					return fmt.Errorf("failed to read Applications: %w", err)
				}
				report.Applications = apps
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer closeSerializer(ser)
			return ser.Serialize(ctx, report)
		},
	}
}

// collectStatus reads the state record of each cluster directory under
// outputDir. Directories without a record are listed without fingerprint.
func collectStatus(outputDir string) (*StatusReport, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory %s: %w", outputDir, err)
	}

	tracker := state.NewTracker(version)
	report := &StatusReport{OutputDir: outputDir}
	report.Init(header.KindStatusReport, version)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		status := ClusterStatus{Cluster: entry.Name()}
		record, err := tracker.Read(filepath.Join(outputDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if record != nil {
			status.Fingerprint = record.Fingerprint
			status.GeneratedAt = record.GeneratedAt
			status.Generator = record.Generator
		}
		report.Clusters = append(report.Clusters, status)
	}

	sort.Slice(report.Clusters, func(i, j int) bool {
		return report.Clusters[i].Cluster < report.Clusters[j].Cluster
	})
	return report, nil
}

// readApplications lists Argo CD Applications via the dynamic client and
// extracts their sync and health fields.
func readApplications(ctx context.Context, kubeconfig, namespace string) ([]ApplicationStatus, error) {
	_, config, err := client.GetKubeClientWithConfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	dyn, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, defaults.StatusQueryTimeout)
	defer cancel()

	list, err := dyn.Resource(applicationsResource).Namespace(namespace).
		List(queryCtx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	apps := make([]ApplicationStatus, 0, len(list.Items))
	for _, item := range list.Items {
		apps = append(apps, ApplicationStatus{
			Name:   item.GetName(),
			Sync:   nestedString(&item, "status", "sync", "status"),
			Health: nestedString(&item, "status", "health", "status"),
		})
	}
	return apps, nil
}

func nestedString(obj *unstructured.Unstructured, fields ...string) string {
	value, found, err := unstructured.NestedString(obj.Object, fields...)
	if !found || err != nil {
		return ""
	}
	return value
}
