/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/vectorweight/vectorweight/pkg/errors"
	"github.com/vectorweight/vectorweight/pkg/orchestrator"
)

const testSpec = `
project_name: demo
base_domain: example.com
clusters:
  - name: alpha
    size: minimal
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectorweight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the CLI with the default exit handler disabled so exit
// errors are returned instead of terminating the test process.
func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := Root()
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	return cmd.Run(context.Background(), append([]string{"vectorweight"}, args...))
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if coder, ok := err.(cli.ExitCoder); ok {
		return coder.ExitCode()
	}
	return -1
}

func TestInitWritesTemplate(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, run(t, "init", "--template", "minimal-dev", "--output", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "project_name")
}

func TestInitRefusesOverwrite(t *testing.T) {
	dest := writeSpec(t, "existing: content\n")
	err := run(t, "init", "--output", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, run(t, "init", "--output", dest, "--force"))
}

func TestInitUnknownTemplate(t *testing.T) {
	err := run(t, "init", "--template", "nope",
		"--output", filepath.Join(t.TempDir(), "spec.yaml"))
	assert.Error(t, err)
}

func TestValidateValidSpec(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.json")
	err := run(t, "validate", "--file", writeSpec(t, testSpec), "-o", out, "-t", "json")
	assert.NoError(t, err)
	assert.FileExists(t, out)
}

func TestValidateConfigAlias(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.json")
	err := run(t, "validate", "--config", writeSpec(t, testSpec), "-o", out, "-t", "json")
	assert.NoError(t, err)
	assert.FileExists(t, out)
}

func TestValidateDetailedFlag(t *testing.T) {
	bad := `
project_name: demo
clusters:
  - name: alpha
    size: enormous
`
	path := writeSpec(t, bad)

	summary := filepath.Join(t.TempDir(), "summary.json")
	err := run(t, "validate", "--config", path, "-o", summary, "-t", "json")
	assert.Equal(t, exitCodeValidation, exitCodeOf(err))
	data, readErr := os.ReadFile(summary)
	require.NoError(t, readErr)
	assert.NotContains(t, string(data), "issues", "default output carries the summary only")

	detailed := filepath.Join(t.TempDir(), "detailed.json")
	err = run(t, "validate", "--config", path, "--detailed", "-o", detailed, "-t", "json")
	assert.Equal(t, exitCodeValidation, exitCodeOf(err))
	data, readErr = os.ReadFile(detailed)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "issues")
	assert.Contains(t, string(data), "clusters[0].size")
}

func TestValidateInvalidSpecExitCode(t *testing.T) {
	bad := `
project_name: demo
clusters:
  - name: alpha
    size: enormous
`
	out := filepath.Join(t.TempDir(), "result.json")
	err := run(t, "validate", "--file", writeSpec(t, bad), "-o", out, "-t", "json")
	assert.Equal(t, exitCodeValidation, exitCodeOf(err))
}

func TestValidateMissingFile(t *testing.T) {
	err := run(t, "validate", "--file", filepath.Join(t.TempDir(), "nope.yaml"),
		"-o", filepath.Join(t.TempDir(), "out.json"))
	assert.Equal(t, exitCodeValidation, exitCodeOf(err))
}

func TestGenerateProducesTree(t *testing.T) {
	outputDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	err := run(t, "generate",
		"--file", writeSpec(t, testSpec),
		"--output-dir", outputDir,
		"-o", reportPath, "-t", "json")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outputDir, "alpha", "README.md"))
	assert.FileExists(t, reportPath)
}

func TestGenerateDryRunWritesNothing(t *testing.T) {
	outputDir := t.TempDir()
	err := run(t, "generate",
		"--file", writeSpec(t, testSpec),
		"--output-dir", outputDir,
		"--dry-run",
		"-o", filepath.Join(t.TempDir(), "report.yaml"))
	require.NoError(t, err)

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateInvalidSpecExitCode(t *testing.T) {
	bad := `
project_name: demo
clusters:
  - name: alpha
  - name: alpha
`
	err := run(t, "generate",
		"--file", writeSpec(t, bad),
		"--output-dir", t.TempDir(),
		"-o", filepath.Join(t.TempDir(), "report.yaml"))
	assert.Equal(t, exitCodeValidation, exitCodeOf(err))
}

func TestExitCodeForReport(t *testing.T) {
	failed := func(code errors.ErrorCode) orchestrator.ClusterResult {
		return orchestrator.ClusterResult{Status: orchestrator.StatusFailed, ErrorCode: code}
	}

	tests := []struct {
		name   string
		report *orchestrator.Report
		want   int
	}{
		{
			name: "all source failures",
			report: &orchestrator.Report{
				Failed: 2,
				Clusters: []orchestrator.ClusterResult{
					failed(errors.ErrCodeSourceUnreachable),
					failed(errors.ErrCodeSourceAuth),
				},
			},
			want: exitCodeSource,
		},
		{
			name: "all render failures",
			report: &orchestrator.Report{
				Failed: 1,
				Clusters: []orchestrator.ClusterResult{
					failed(errors.ErrCodeRenderTemplate),
				},
			},
			want: exitCodeRender,
		},
		{
			name: "partial failure",
			report: &orchestrator.Report{
				Failed:    1,
				Generated: 1,
				Clusters: []orchestrator.ClusterResult{
					failed(errors.ErrCodeSourceUnreachable),
					{Status: orchestrator.StatusGenerated},
				},
			},
			want: exitCodePartialFailure,
		},
		{
			name: "mixed failure classes",
			report: &orchestrator.Report{
				Failed: 2,
				Clusters: []orchestrator.ClusterResult{
					failed(errors.ErrCodeSourceUnreachable),
					failed(errors.ErrCodeStateCorrupt),
				},
			},
			want: exitCodePartialFailure,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCodeForReport(tc.report))
		})
	}
}

func TestGeneratePublishRejectsLocalTarget(t *testing.T) {
	err := run(t, "generate",
		"--file", writeSpec(t, testSpec),
		"--output-dir", t.TempDir(),
		"--publish", "/not/a/registry",
		"-o", filepath.Join(t.TempDir(), "report.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitCodeValidation, exitCodeOf(err))
	assert.Contains(t, err.Error(), "oci://")
}

func TestStatusReadsState(t *testing.T) {
	outputDir := t.TempDir()
	require.NoError(t, run(t, "generate",
		"--file", writeSpec(t, testSpec),
		"--output-dir", outputDir,
		"-o", filepath.Join(t.TempDir(), "report.yaml")))

	statusPath := filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, run(t, "status", "--output-dir", outputDir, "-o", statusPath, "-t", "json"))

	report, err := collectStatus(outputDir)
	require.NoError(t, err)
	require.Len(t, report.Clusters, 1)
	assert.Equal(t, "alpha", report.Clusters[0].Cluster)
	assert.Len(t, report.Clusters[0].Fingerprint, 64)
}

func TestStatusMissingDir(t *testing.T) {
	err := run(t, "status", "--output-dir", filepath.Join(t.TempDir(), "nope"),
		"-o", filepath.Join(t.TempDir(), "status.yaml"))
	assert.Error(t, err)
}
