/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"log"

	"github.com/vectorweight/vectorweight/pkg/api"
)

func main() {
	if err := api.Serve(); err != nil {
		log.Fatal(err)
	}
}
