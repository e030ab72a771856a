/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package config defines the deployment specification document model and its
// loader. A specification is parsed from a single YAML document and treated as
// immutable for the duration of a run; validation lives in pkg/validator.
package config
