/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"fmt"
	"strings"

	"github.com/vectorweight/vectorweight/pkg/errors"
	"github.com/vectorweight/vectorweight/pkg/header"
)

// Severity classifies a validation issue.
type Severity string

const (
	// SeverityError blocks generation.
	SeverityError Severity = "error"
	// SeverityWarning is reported but does not block generation.
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding tied to a field path.
type Issue struct {
	Severity   Severity `json:"severity" yaml:"severity"`
	Field      string   `json:"field" yaml:"field"`
	Message    string   `json:"message" yaml:"message"`
	Suggestion string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

func (i Issue) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", i.Severity, i.Field, i.Message)
	if i.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", i.Suggestion)
	}
	return b.String()
}

// Summary aggregates issue counts for serialized results.
type Summary struct {
	Errors   int  `json:"errors" yaml:"errors"`
	Warnings int  `json:"warnings" yaml:"warnings"`
	Valid    bool `json:"valid" yaml:"valid"`
}

// Result holds all issues found in one validation pass.
type Result struct {
	header.Header `yaml:",inline"`

	Issues  []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
	Summary Summary `json:"summary" yaml:"summary"`
}

func (r *Result) errorf(field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: SeverityError,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Result) warnf(field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Result) suggest(field, message, suggestion string) {
	r.Issues = append(r.Issues, Issue{
		Severity:   SeverityError,
		Field:      field,
		Message:    message,
		Suggestion: suggestion,
	})
}

// Errors returns only the error-severity issues.
func (r *Result) Errors() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns only the warning-severity issues.
func (r *Result) Warnings() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// Valid reports whether the specification may proceed to generation.
func (r *Result) Valid() bool {
	return len(r.Errors()) == 0
}

// Err converts an invalid result into a single structured error carrying
// every error-severity issue, or nil when the result is valid.
func (r *Result) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, issue := range errs {
		lines[i] = issue.String()
	}
	return errors.NewWithContext(errors.ErrCodeValidation,
		fmt.Sprintf("specification has %d validation error(s)", len(errs)),
		map[string]any{"issues": lines})
}

func (r *Result) finalize() {
	r.Init(header.KindValidationResult, "")
	r.Summary = Summary{
		Errors:   len(r.Errors()),
		Warnings: len(r.Warnings()),
		Valid:    r.Valid(),
	}
}
