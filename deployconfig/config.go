// Copyright 2024 The statichost authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

/*
Package deployconfig loads the per-deployment configuration consumed by the
resolver: the explicit output directory override, the build command and
framework selection (carried for the build collaborators, never interpreted
here), and the ordered rewrite rule list.

Configuration files are YAML; since YAML is a superset of JSON, the usual
JSON-style deployment configs decode through the very same path.
*/
package deployconfig

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Rewrite maps a source pattern onto a destination path. Rewrites apply in
// declaration order, first match wins, so the order of the configured list
// must be preserved exactly.
type Rewrite struct {
	Source      string `yaml:"source" validate:"required"`
	Destination string `yaml:"destination" validate:"required"`
}

// Config is a deployment's configuration. The pointer fields distinguish a
// value that was set from one that was left out; to this resolver an explicit
// null reads the same as absence, in both cases selecting the platform
// default behavior.
type Config struct {
	// OutputDirectory overrides serving-root discovery when set non-empty.
	// It is taken verbatim, without any check that it exists in the tree.
	OutputDirectory *string `yaml:"outputDirectory"`
	// BuildCommand is carried for the build collaborator; null/absent means
	// the uploaded tree is used unmodified.
	BuildCommand *string `yaml:"buildCommand"`
	// Framework is carried for framework-specific build conventions;
	// null/absent forces the plain static path.
	Framework *string `yaml:"framework"`
	// Rewrites is the ordered rewrite rule list.
	Rewrites []Rewrite `yaml:"rewrites" validate:"dive"`
}

// Load decodes a deployment configuration from r.
func Load(r io.Reader) (*Config, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration: %w", err)
	}
	config := &Config{}
	if err := yaml.Unmarshal(contents, config); err != nil {
		return nil, fmt.Errorf("unable to parse configuration: %w", err)
	}
	return config, nil
}

// LoadFile decodes the deployment configuration file at the given path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// OutputDir returns the explicit output directory override, or "" when none
// was configured (or it was configured empty, which reads the same).
func (c *Config) OutputDir() string {
	if c == nil || c.OutputDirectory == nil {
		return ""
	}
	return *c.OutputDirectory
}

// Validate checks the configuration's structure: every rewrite needs both a
// source and a destination. Validate is strict-mode tooling only; the default
// serving path never calls it, as a misconfigured deployment must keep
// resolving (to NotFound) rather than fail.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid deployment configuration: %w", err)
	}
	return nil
}
