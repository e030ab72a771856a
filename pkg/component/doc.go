/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package component builds the per-component Helm values overlays for a
// cluster. Each enabled component maps to one chart from the catalog, sized
// by the cluster's capacity tier. Disabled components are simply absent:
// generated values never carry disabled-but-present stanzas.
package component
