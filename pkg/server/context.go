/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package server

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const contextKeyRequestID contextKey = "requestID"
