// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdflags holds the flags shared by the sub-commands that build an executor.
// Flag values override values from the configuration file.
package cmdflags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/buildexec/internal/config"
	"github.com/matt-FFFFFF/buildexec/internal/executor"
	"github.com/urfave/cli/v3"
)

const (
	ConfigFlag         = "config"
	RootFlag           = "root"
	CwdFlag            = "cwd"
	PlatformFlag       = "platform"
	QuietFlag          = "quiet"
	VerboseFlag        = "verbose"
	EnvFlag            = "env"
	MaxOutputBytesFlag = "max-output-bytes"

	envPrefix = "BUILDEXEC_"
)

// ErrInvalidEnv is returned for an --env value without an equals sign.
var ErrInvalidEnv = errors.New("invalid --env value, want NAME=VALUE")

func envVar(flag string) cli.ValueSourceChain {
	return cli.EnvVars(envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_")))
}

// ConfigFlags are the flags needed to load and override a configuration.
func ConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ConfigFlag,
			Aliases: []string{"c"},
			Usage: "Configuration file (.yaml, .yml, .hcl or .json). " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources.",
			TakesFile: true,
			Sources:   envVar(ConfigFlag),
		},
		&cli.StringFlag{
			Name:      RootFlag,
			Usage:     "Search root for binaries",
			TakesFile: true,
			Sources:   envVar(RootFlag),
		},
		&cli.StringFlag{
			Name:    PlatformFlag,
			Usage:   "Shell and lookup conventions: auto, unix or windows",
			Sources: envVar(PlatformFlag),
		},
	}
}

// ExecutorFlags are ConfigFlags plus the flags that only affect running commands.
func ExecutorFlags() []cli.Flag {
	return append(ConfigFlags(),
		&cli.StringFlag{
			Name:      CwdFlag,
			Usage:     "Change into this directory before running the command. Relative to the root.",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:        VerboseFlag,
			Aliases:     []string{"v"},
			Usage:       "Log the command line before running it",
			DefaultText: "false",
		},
		&cli.BoolFlag{
			Name:        QuietFlag,
			Aliases:     []string{"q"},
			Usage:       "Do not print or log the captured output",
			DefaultText: "false",
		},
		&cli.StringSliceFlag{
			Name:    EnvFlag,
			Aliases: []string{"e"},
			Usage:   "Add NAME=VALUE to the environment of the command. Can be repeated.",
		},
		&cli.IntFlag{
			Name:  MaxOutputBytesFlag,
			Usage: "Capture limit for each output stream in bytes",
		},
	)
}

// LoadConfig loads the --config file, when given, and applies the flags that were set.
func LoadConfig(ctx context.Context, cmd *cli.Command) (*config.Config, error) {
	cfg := new(config.Config)

	if src := cmd.String(ConfigFlag); src != "" {
		loaded, err := config.Load(ctx, src)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if cmd.IsSet(RootFlag) {
		cfg.Root = cmd.String(RootFlag)
	}

	if cmd.IsSet(PlatformFlag) {
		cfg.Platform = cmd.String(PlatformFlag)
	}

	if cmd.IsSet(CwdFlag) {
		cfg.WorkingDir = cmd.String(CwdFlag)
	}

	if cmd.IsSet(VerboseFlag) {
		cfg.Verbose = cmd.Bool(VerboseFlag)
	}

	if cmd.IsSet(QuietFlag) {
		cfg.Quiet = cmd.Bool(QuietFlag)
	}

	if cmd.IsSet(MaxOutputBytesFlag) {
		cfg.MaxOutputBytes = int64(cmd.Int(MaxOutputBytesFlag))
	}

	for _, kv := range cmd.StringSlice(EnvFlag) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEnv, kv)
		}

		if cfg.Env == nil {
			cfg.Env = make(map[string]string)
		}

		cfg.Env[k] = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewExecutor builds an executor from LoadConfig.
func NewExecutor(ctx context.Context, cmd *cli.Command, sink executor.Sink) (*executor.Executor, error) {
	cfg, err := LoadConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.ExecutorOptions(sink)
	if err != nil {
		return nil, err
	}

	return executor.New(opts)
}
