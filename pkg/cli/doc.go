// Package cli implements the vectorweight command-line interface.
//
// # Commands
//
// init - write a starter deployment specification:
//
//	vectorweight init --template full-production --output vectorweight.yaml
//
// validate - validate a specification without generating:
//
//	vectorweight validate --file vectorweight.yaml
//
// generate - render per-cluster GitOps artifact trees:
//
//	vectorweight generate --file vectorweight.yaml --output-dir deploy
//
// status - show generation state, optionally with live Argo CD
// Application status:
//
//	vectorweight status --output-dir deploy [--kubeconfig ~/.kube/config]
//
// # Exit Codes
//
//	0  success
//	1  specification failed validation
//	2  every cluster failed on source resolution
//	3  every cluster failed on rendering
//	4  some clusters failed, others succeeded
//
// # Global Flags
//
//	--log-level    Log verbosity: debug, info, warn, error (LOG_LEVEL)
//	--output, -o   Output destination (default: stdout)
//	--format, -t   Output format: yaml, json, table (default: yaml)
//
// The CLI uses the urfave/cli/v3 framework and delegates to the pipeline
// packages: pkg/config, pkg/validator, pkg/orchestrator, pkg/serializer.
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/vectorweight/vectorweight/pkg/cli.version=1.0.0'"
package cli
