/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer reads and writes structured documents, such as
// deployment specifications and generation reports, in JSON, YAML, and
// table form.
//
// Output destinations include stdout, files, and Kubernetes ConfigMaps
// addressed as cm://namespace/name. Input sources include files, HTTP
// URLs, and the same ConfigMap URIs.
package serializer

import "context"

// Serializer writes a document to its destination. The context bounds
// implementations that perform I/O, such as ConfigMap writes.
type Serializer interface {
	Serialize(ctx context.Context, doc any) error
}

// Closer is implemented by Serializers that hold resources, such as open
// file handles.
type Closer interface {
	Close() error
}
