/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package header provides the Kubernetes-style envelope stamped onto every
// document the generator emits: kind, apiVersion, and free-form metadata.
// Consumers use the envelope to route serialized reports without sniffing
// their payload.
package header

import (
	"time"
)

// APIVersion is the schema version of all emitted documents.
const APIVersion = "vectorweight.dev/v1"

// Kind identifies a document type.
type Kind string

const (
	KindGenerationReport Kind = "GenerationReport"
	KindValidationResult Kind = "ValidationResult"
	KindStatusReport     Kind = "StatusReport"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether the Kind is one of the recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindGenerationReport, KindValidationResult, KindStatusReport:
		return true
	default:
		return false
	}
}

// Header is embedded into emitted documents. Fields are omitted when unset
// so internal uses of the same structs stay unchanged.
type Header struct {
	Kind       Kind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Option configures a Header.
type Option func(*Header)

// WithKind sets the document kind.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithMetadata adds one metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// New returns a Header with the current APIVersion and the given options
// applied.
func New(opts ...Option) *Header {
	h := &Header{
		APIVersion: APIVersion,
		Metadata:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init stamps the header in place with the kind, a UTC timestamp, and the
// generator version when known.
func (h *Header) Init(kind Kind, generator string) {
	h.Kind = kind
	h.APIVersion = APIVersion
	h.Metadata = map[string]string{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if generator != "" {
		h.Metadata["generator"] = generator
	}
}
