/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package oci moves artifact trees to and from OCI-compliant registries
// using ORAS. Generated deployment bundles can be pushed for distribution,
// and airgapped network sources can pull chart content from an internal
// registry via oci:// URLs.
//
// Authentication uses the standard Docker credential helpers
// (~/.docker/config.json) through the ORAS credentials package.
package oci
