/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/vectorweight/vectorweight/pkg/errors"
)

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// PlaceholderVars returns the environment variable names referenced by ${VAR}
// placeholders in s, in order of appearance.
func PlaceholderVars(s string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		names = append(names, m[1])
	}
	return names
}

// ExpandPlaceholders substitutes ${VAR} placeholders from the environment.
// An unset or empty variable is an error: credentials must never silently
// degrade to an empty string.
func ExpandPlaceholders(s string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		val, ok := os.LookupEnv(name)
		if !ok || val == "" {
			missing = append(missing, name)
			return match
		}
		return val
	})
	if len(missing) > 0 {
		return "", errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("unresolved environment placeholder(s): %v", missing))
	}
	return out, nil
}
