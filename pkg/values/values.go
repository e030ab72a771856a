/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package values implements the override merge engine. Layers are plain
// map[string]any trees as decoded by yaml.v3; merging is pure and the inputs
// are never mutated.
package values

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Merge deep-merges the given layers, later layers taking precedence.
// Nested maps merge recursively; scalars and sequences are replaced
// wholesale, never concatenated. The result shares no structure with the
// inputs.
func Merge(layers ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, layer := range layers {
		mergeInto(out, layer)
	}
	return out
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := asMap(v)
		if srcIsMap {
			if dstMap, ok := asMap(dst[k]); ok {
				merged := DeepCopy(dstMap)
				mergeInto(merged, srcMap)
				dst[k] = merged
				continue
			}
			dst[k] = DeepCopy(srcMap)
			continue
		}
		dst[k] = copyValue(v)
	}
}

// DeepCopy returns a structural copy of a values tree.
func DeepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return DeepCopy(t)
	case map[any]any:
		m, _ := asMap(t)
		return DeepCopy(m)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}

// asMap normalizes the two map shapes yaml decoders produce.
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// ExpandDotted rewrites dotted keys into nested maps, so an override layer
// may spell either form:
//
//	monitoring.retention: 30d  ->  monitoring: {retention: 30d}
//
// Keys without dots pass through; nested values are expanded recursively.
func ExpandDotted(m map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range m {
		if nested, ok := asMap(v); ok {
			v = ExpandDotted(nested)
		}
		parts := strings.Split(k, ".")
		leaf := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := asMap(leaf[p])
			if !ok {
				next = map[string]any{}
			} else {
				next = DeepCopy(next)
			}
			leaf[p] = next
			leaf = next
		}
		existing, existingIsMap := asMap(leaf[parts[len(parts)-1]])
		if incoming, ok := asMap(v); ok && existingIsMap {
			merged := DeepCopy(existing)
			mergeInto(merged, incoming)
			leaf[parts[len(parts)-1]] = merged
			continue
		}
		leaf[parts[len(parts)-1]] = copyValue(v)
	}
	return out
}

// MarshalCanonical serializes a values tree to YAML. yaml.v3 emits map keys
// in sorted order, so identical trees always produce identical bytes.
func MarshalCanonical(m map[string]any) ([]byte, error) {
	return yaml.Marshal(m)
}
