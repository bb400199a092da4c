// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/buildexec/internal/executor"
	"github.com/matt-FFFFFF/buildexec/internal/platform"
)

var (
	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrMarshalConfig is returned when the configuration cannot be rendered as YAML.
	ErrMarshalConfig = errors.New("failed to marshal configuration")
)

// Config is the file representation of executor.Options.
type Config struct {
	// Platform is one of auto, unix or windows. Empty means auto.
	Platform string `yaml:"platform,omitempty" hcl:"platform,optional"`
	// Shell replaces the interpreter of the platform, /bin/sh or cmd.exe.
	Shell string `yaml:"shell,omitempty" hcl:"shell,optional"`
	// Root is the search root for binaries. Relative paths are taken from the current directory.
	Root string `yaml:"root,omitempty" hcl:"root,optional"`
	// WorkingDir is changed into before every command.
	WorkingDir string `yaml:"working_dir,omitempty" hcl:"working_dir,optional"`
	// SearchDirs replaces the default vendor/bin sub directory list.
	SearchDirs []string `yaml:"search_dirs,omitempty" hcl:"search_dirs,optional"`
	// Extensions replaces the executable extensions of the platform.
	Extensions []string `yaml:"extensions,omitempty" hcl:"extensions,optional"`
	// MaxOutputBytes caps each captured stream.
	MaxOutputBytes int64             `yaml:"max_output_bytes,omitempty" hcl:"max_output_bytes,optional"`
	Verbose        bool              `yaml:"verbose,omitempty" hcl:"verbose,optional"`
	Quiet          bool              `yaml:"quiet,omitempty" hcl:"quiet,optional"`
	Env            map[string]string `yaml:"env,omitempty" hcl:"env,optional"`
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var result error

	if _, err := platform.ByName(c.Platform); err != nil {
		result = multierror.Append(result, err)
	}

	if c.MaxOutputBytes < 0 {
		result = multierror.Append(result, fmt.Errorf("max_output_bytes must not be negative, got %d", c.MaxOutputBytes))
	}

	for i, d := range c.SearchDirs {
		if strings.TrimSpace(d) == "" {
			result = multierror.Append(result, fmt.Errorf("search_dirs[%d] is empty", i))
		}
	}

	for i, ext := range c.Extensions {
		if strings.TrimPrefix(strings.TrimSpace(ext), ".") == "" || strings.ContainsAny(ext, `/\`) {
			result = multierror.Append(result, fmt.Errorf("extensions[%d] %q is not a file extension", i, ext))
		}
	}

	for k := range c.Env {
		if k == "" || strings.ContainsAny(k, "=\x00") {
			result = multierror.Append(result, fmt.Errorf("env name %q is not valid", k))
		}
	}

	if result != nil {
		return errors.Join(ErrInvalidConfig, result)
	}

	return nil
}

// ExecutorOptions converts the configuration into executor options that report to sink.
func (c *Config) ExecutorOptions(sink executor.Sink) (executor.Options, error) {
	p, err := platform.ByName(c.Platform)
	if err != nil {
		return executor.Options{}, errors.Join(ErrInvalidConfig, err)
	}

	if len(c.Extensions) > 0 {
		p = p.WithExtensions(c.Extensions...)
	}

	if c.Shell != "" {
		p = p.WithShell(c.Shell)
	}

	return executor.Options{
		Platform:       p,
		Root:           c.Root,
		WorkingDir:     c.WorkingDir,
		SearchDirs:     c.SearchDirs,
		Sink:           sink,
		Verbose:        c.Verbose,
		Quiet:          c.Quiet,
		MaxOutputBytes: c.MaxOutputBytes,
		Env:            maps.Clone(c.Env),
	}, nil
}

// YAML renders the configuration.
func (c *Config) YAML() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Join(ErrMarshalConfig, err)
	}

	return b, nil
}
