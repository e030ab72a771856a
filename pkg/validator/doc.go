/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package validator checks deployment specifications before generation.
// Validation never fails fast: every issue is collected with a field path so
// an operator can fix a document in one pass. Issues carry a severity; only
// error-severity issues block generation.
package validator
