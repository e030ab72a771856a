/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"github.com/vectorweight/vectorweight/pkg/cli"
)

func main() {
	cli.Execute()
}
