/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"context"
	"io"
	"net/http"

	"github.com/vectorweight/vectorweight/pkg/config"
	"github.com/vectorweight/vectorweight/pkg/defaults"
	"github.com/vectorweight/vectorweight/pkg/errors"
	"github.com/vectorweight/vectorweight/pkg/orchestrator"
	"github.com/vectorweight/vectorweight/pkg/serializer"
	"github.com/vectorweight/vectorweight/pkg/server"
	"github.com/vectorweight/vectorweight/pkg/validator"
)

// maxSpecBytes bounds the request body; deployment specifications are
// small YAML documents.
const maxSpecBytes = 1 << 20

// Handler serves the generation API over the pipeline.
type Handler struct {
	// OutputDir is where non-dry-run generations are committed. Empty
	// means the server only serves dry runs.
	OutputDir string
	// Version stamps reports and state records.
	Version string
	// Workers bounds per-run cluster concurrency.
	Workers int
}

// NewHandler creates a Handler. An empty outputDir restricts the server
// to dry-run generation.
func NewHandler(outputDir, version string, workers int) *Handler {
	return &Handler{
		OutputDir: outputDir,
		Version:   version,
		Workers:   workers,
	}
}

// Routes returns the handler map to mount on the server.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/generate":  h.HandleGenerate,
		"/v1/validate":  h.HandleValidate,
		"/v1/templates": h.HandleTemplates,
	}
}

// HandleGenerate handles POST /v1/generate. The body is a deployment
// specification in YAML (JSON is a YAML subset and works too); the
// response is the run report. Generation is a dry run unless the request
// sets dry_run=false and the server has an output directory.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		server.WriteError(w, r, http.StatusMethodNotAllowed, server.ErrCodeMethodNotAllowed,
			"Only POST is supported", false, nil)
		return
	}

	spec, ok := h.readSpec(w, r)
	if !ok {
		return
	}

	dryRun := true
	if r.URL.Query().Get("dry_run") == "false" {
		if h.OutputDir == "" {
			server.WriteError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidRequest),
				"Server has no output directory; only dry_run generation is available", false, nil)
			return
		}
		dryRun = false
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.GenerateHandlerTimeout)
	defer cancel()

	report, err := orchestrator.GenerateAll(ctx, spec, orchestrator.Options{
		OutputDir: h.OutputDir,
		DryRun:    dryRun,
		Force:     r.URL.Query().Get("force") == "true",
		Workers:   h.Workers,
		Version:   h.Version,
	})
	if err != nil {
		code := errors.CodeOf(err)
		server.WriteError(w, r, statusFor(code), string(code),
			err.Error(), errors.IsTransient(code), nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, report)
}

// HandleValidate handles POST /v1/validate: full validation of the posted
// specification, returning every issue with field paths.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		server.WriteError(w, r, http.StatusMethodNotAllowed, server.ErrCodeMethodNotAllowed,
			"Only POST is supported", false, nil)
		return
	}

	spec, ok := h.readSpec(w, r)
	if !ok {
		return
	}

	serializer.RespondJSON(w, http.StatusOK, validator.Validate(spec))
}

// HandleTemplates handles GET /v1/templates, listing the starter
// specification templates.
func (h *Handler) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		server.WriteError(w, r, http.StatusMethodNotAllowed, server.ErrCodeMethodNotAllowed,
			"Only GET is supported", false, nil)
		return
	}

	type template struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	var templates []template
	for _, name := range config.TemplateNames() {
		content, err := config.Template(name)
		if err != nil {
			continue
		}
		templates = append(templates, template{Name: name, Content: content})
	}

	serializer.RespondJSON(w, http.StatusOK, templates)
}

func (h *Handler) readSpec(w http.ResponseWriter, r *http.Request) (*config.DeploymentSpecification, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSpecBytes))
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidRequest),
			"Failed to read request body", false, nil)
		return nil, false
	}
	if len(body) == 0 {
		server.WriteError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidRequest),
			"Request body is empty; expected a deployment specification", false, nil)
		return nil, false
	}

	spec, err := config.Parse(body)
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidRequest),
			err.Error(), false, nil)
		return nil, false
	}
	return spec, true
}

// statusFor maps pipeline error codes onto HTTP status codes.
func statusFor(code errors.ErrorCode) int {
	switch {
	case code == errors.ErrCodeValidation, code == errors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.IsSourceError(code):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
