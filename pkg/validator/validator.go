/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"fmt"
	"net/netip"
	"os"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/vectorweight/vectorweight/pkg/component"
	"github.com/vectorweight/vectorweight/pkg/config"
)

// maxSuggestionDistance bounds how far an unknown enum value may be from a
// known one before "did you mean" stays silent.
const maxSuggestionDistance = 3

var (
	dnsLabelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	domainPattern   = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$|^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)
	orgPattern      = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
)

// Validate runs every schema, semantic, and reference check against the
// specification and returns the full set of findings. It never stops at the
// first problem.
func Validate(spec *config.DeploymentSpecification) *Result {
	r := &Result{}
	defer r.finalize()

	if spec == nil {
		r.errorf("", "specification is nil")
		return r
	}

	validateProject(r, spec)
	validateEnums(r, spec)
	validateClusters(r, spec)
	validateSource(r, spec)
	validateNetworking(r, spec)
	validateOverrideKeys(r, spec)

	return r
}

// validateOverrideKeys warns on override tier and custom_values keys that
// match no catalog component. Warning only: shared override files may span
// specifications with different component sets.
func validateOverrideKeys(r *Result, spec *config.DeploymentSpecification) {
	tiers := []struct {
		field string
		layer map[string]any
	}{
		{"global_overrides.global", spec.Overrides.Global},
		{"global_overrides.release", spec.Overrides.Release},
		{"global_overrides.service", spec.Overrides.Service},
	}
	for _, tier := range tiers {
		warnUnknownComponents(r, tier.field, tier.layer)
	}
	for i, c := range spec.Clusters {
		warnUnknownComponents(r, fmt.Sprintf("clusters[%d].custom_values", i), c.CustomValues)
	}
}

func warnUnknownComponents(r *Result, field string, layer map[string]any) {
	for key := range layer {
		// dotted keys expand during merge; the component is the first segment
		name, _, _ := strings.Cut(key, ".")
		if component.Known(name) {
			continue
		}
		msg := fmt.Sprintf("unknown component %q matches nothing in the chart catalog", name)
		if s := closest(name, component.Names()); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		r.warnf(field+"."+key, "%s", msg)
	}
}

func validateProject(r *Result, spec *config.DeploymentSpecification) {
	switch {
	case spec.ProjectName == "":
		r.errorf("project_name", "project_name is required")
	case !dnsLabelPattern.MatchString(spec.ProjectName):
		r.errorf("project_name", "%q is not a valid name (lowercase alphanumerics and hyphens)", spec.ProjectName)
	}

	if spec.GitHubOrganization != "" && !orgPattern.MatchString(spec.GitHubOrganization) {
		r.errorf("github_organization", "%q is not a valid organization name", spec.GitHubOrganization)
	}
	if spec.AutoCreateRepositories && spec.GitHubOrganization == "" {
		r.errorf("auto_create_repositories", "requires github_organization to be set")
	}
}

func validateEnums(r *Result, spec *config.DeploymentSpecification) {
	if !enumContains(config.DeploymentModes(), spec.DeploymentMode) {
		issueUnknownEnum(r, "deployment_mode", string(spec.DeploymentMode), enumStrings(config.DeploymentModes()))
	}

	switch spec.DeploymentTarget {
	case config.TargetDirect, config.TargetVMs:
	default:
		issueUnknownEnum(r, "deployment_target", string(spec.DeploymentTarget),
			[]string{string(config.TargetDirect), string(config.TargetVMs)})
	}

	switch spec.SyncPolicy {
	case config.SyncAutomated, config.SyncManual:
	default:
		issueUnknownEnum(r, "sync_policy", string(spec.SyncPolicy),
			[]string{string(config.SyncAutomated), string(config.SyncManual)})
	}
}

func validateClusters(r *Result, spec *config.DeploymentSpecification) {
	if len(spec.Clusters) == 0 {
		r.errorf("clusters", "at least one cluster is required")
		return
	}

	seenNames := map[string]bool{}
	seenEndpoints := map[string]bool{}

	for i, c := range spec.Clusters {
		field := func(sub string) string { return fmt.Sprintf("clusters[%d].%s", i, sub) }

		switch {
		case c.Name == "":
			r.errorf(field("name"), "cluster name is required")
		case !dnsLabelPattern.MatchString(c.Name):
			r.errorf(field("name"), "%q is not a valid DNS label", c.Name)
		case seenNames[c.Name]:
			r.errorf(field("name"), "duplicate cluster name %q", c.Name)
		default:
			seenNames[c.Name] = true
		}

		if c.Domain != "" && !domainPattern.MatchString(c.Domain) {
			r.errorf(field("domain"), "%q is not a valid domain", c.Domain)
		}
		endpoint := c.Name + "/" + c.FQDN(spec.BaseDomain)
		if c.Name != "" {
			if seenEndpoints[endpoint] {
				r.errorf(field("domain"), "duplicate cluster endpoint %q", endpoint)
			}
			seenEndpoints[endpoint] = true
		}

		if !enumContains(config.ClusterSizes(), c.Size) {
			issueUnknownEnum(r, field("size"), string(c.Size), enumStrings(config.ClusterSizes()))
		}
		if !enumContains(config.VectorStores(), c.VectorStore) {
			issueUnknownEnum(r, field("vector_store"), string(c.VectorStore), enumStrings(config.VectorStores()))
		}

		if c.VectorStore == config.VectorStoreChromaMemory && c.GPUEnabled {
			r.warnf(field("vector_store"),
				"chroma-memory is ephemeral and loses embeddings on restart; a GPU cluster usually wants a persistent store")
		}
		if c.GPUEnabled && c.Size == config.SizeMinimal {
			r.warnf(field("gpu_enabled"), "minimal tier leaves little headroom for GPU workloads")
		}
	}
}

func validateSource(r *Result, spec *config.DeploymentSpecification) {
	mode := spec.DeploymentMode
	src := spec.Source

	if mode.IsAirgapped() && src == nil {
		r.errorf("source", "deployment_mode %s requires a source descriptor", mode)
		return
	}
	if src == nil {
		return
	}
	if mode == config.ModeInternet {
		r.warnf("source", "source descriptor is ignored in internet mode")
		return
	}
	if src.Mode != "" && src.Mode != mode {
		r.errorf("source.mode", "source mode %s conflicts with deployment_mode %s", src.Mode, mode)
	}

	switch mode {
	case config.ModeAirgappedVC:
		if src.URL == "" {
			r.errorf("source.url", "vc mode requires a clone url")
		}
	case config.ModeAirgappedLocal:
		if src.Path == "" {
			r.errorf("source.path", "local mode requires a directory path")
		}
	case config.ModeAirgappedNetwork:
		if src.URL == "" {
			r.errorf("source.url", "network mode requires a fetch url")
		} else if !hasPrefixAny(src.URL, "http://", "https://", "oci://") {
			r.errorf("source.url", "network mode url must be http(s):// or oci://, got %q", src.URL)
		}
	case config.ModeAirgappedArchive:
		if src.Path == "" && src.URL == "" {
			r.errorf("source", "archive mode requires a path or url")
		}
		if src.VerificationEnabled && src.ArchiveDigest == "" {
			r.errorf("source.archive_digest", "verification_enabled requires a declared archive digest")
		}
	}

	if src.CACertificatePath != "" {
		if _, err := os.Stat(src.CACertificatePath); err != nil {
			r.errorf("source.ca_certificate_path", "certificate bundle not readable: %v", err)
		}
	}

	validatePlaceholders(r, "source.username", src.Username)
	validatePlaceholders(r, "source.token", src.Token)
}

// validatePlaceholders checks that ${VAR} references can be resolved now, so
// credential failures surface at validation time rather than mid-resolution.
func validatePlaceholders(r *Result, field, value string) {
	for _, name := range config.PlaceholderVars(value) {
		if v, ok := os.LookupEnv(name); !ok || v == "" {
			r.errorf(field, "environment variable %s referenced by placeholder is not set", name)
		}
	}
}

func validateNetworking(r *Result, spec *config.DeploymentSpecification) {
	if spec.BaseDomain != "" && !domainPattern.MatchString(spec.BaseDomain) {
		r.errorf("base_domain", "%q is not a valid domain", spec.BaseDomain)
	}

	if spec.MetalLBIPRange == "" {
		return
	}
	start, end, ok := strings.Cut(spec.MetalLBIPRange, "-")
	if !ok {
		r.errorf("metallb_ip_range", "expected START-END format, got %q", spec.MetalLBIPRange)
		return
	}
	startAddr, err := netip.ParseAddr(strings.TrimSpace(start))
	if err != nil {
		r.errorf("metallb_ip_range", "invalid start address %q: %v", start, err)
		return
	}
	endAddr, err := netip.ParseAddr(strings.TrimSpace(end))
	if err != nil {
		r.errorf("metallb_ip_range", "invalid end address %q: %v", end, err)
		return
	}
	if startAddr.Is4() != endAddr.Is4() {
		r.errorf("metallb_ip_range", "start and end addresses are different families")
		return
	}
	if endAddr.Less(startAddr) {
		r.errorf("metallb_ip_range", "start address %s is after end address %s", startAddr, endAddr)
	}
}

// issueUnknownEnum records an unknown enum value, attaching the closest known
// value when it is near enough to be a plausible typo.
func issueUnknownEnum(r *Result, field, got string, known []string) {
	msg := fmt.Sprintf("unknown value %q (valid: %s)", got, strings.Join(known, ", "))
	if s := closest(got, known); s != "" {
		r.suggest(field, msg, s)
		return
	}
	r.errorf(field, "%s", msg)
}

func closest(got string, known []string) string {
	best, bestDist := "", maxSuggestionDistance+1
	for _, k := range known {
		if d := levenshtein.ComputeDistance(got, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func enumContains[T ~string](valid []T, v T) bool {
	for _, x := range valid {
		if x == v {
			return true
		}
	}
	return false
}

func enumStrings[T ~string](valid []T) []string {
	out := make([]string, len(valid))
	for i, v := range valid {
		out[i] = string(v)
	}
	return out
}

func hasPrefixAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
