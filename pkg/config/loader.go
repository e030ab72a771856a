/*
Copyright © 2025 VectorWeight Authors
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vectorweight/vectorweight/pkg/errors"
)

// Load reads and parses a deployment specification from a YAML file.
func Load(path string) (*DeploymentSpecification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation,
			fmt.Sprintf("failed to read specification file %s", path), err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// Parse decodes a deployment specification from YAML bytes. Unknown fields
// are rejected so typos surface as errors instead of silently dropped keys.
func Parse(data []byte) (*DeploymentSpecification, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var spec DeploymentSpecification
	if err := dec.Decode(&spec); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeValidation, "specification document is empty")
		}
		return nil, errors.Wrap(errors.ErrCodeValidation, "failed to parse specification YAML", err)
	}

	spec.applyDefaults()
	return &spec, nil
}

// applyDefaults fills optional fields so downstream stages never branch on
// empty enums.
func (s *DeploymentSpecification) applyDefaults() {
	if s.Environment == "" {
		s.Environment = "production"
	}
	if s.DeploymentMode == "" {
		if s.Source != nil && s.Source.Mode != "" {
			s.DeploymentMode = s.Source.Mode
		} else {
			s.DeploymentMode = ModeInternet
		}
	}
	if s.Source != nil && s.Source.Mode == "" {
		s.Source.Mode = s.DeploymentMode
	}
	if s.DeploymentTarget == "" {
		s.DeploymentTarget = TargetVMs
	}
	if s.BaseDomain == "" {
		s.BaseDomain = "vectorweight.local"
	}
	if s.SyncPolicy == "" {
		s.SyncPolicy = SyncAutomated
	}
	for i := range s.Clusters {
		c := &s.Clusters[i]
		if c.Size == "" {
			c.Size = SizeSmall
		}
		if c.VectorStore == "" {
			c.VectorStore = VectorStoreDisabled
		}
	}
}
