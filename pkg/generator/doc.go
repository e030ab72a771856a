/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package generator renders the per-cluster GitOps artifact tree: ArgoCD
// Applications, Helm values overlays, bootstrap manifests, READMEs, and
// checksums. Rendering is pure: output is an in-memory Artifact, and
// committing it to disk is a separate, atomic step owned by the caller.
package generator
