// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package configcmd implements the config sub-command.
package configcmd

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/buildexec/cmd/buildexec/cmdflags"
	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const cliExitStr = ""

// New returns the config command.
func New() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration as YAML",
		Description: `Config loads the --config file, applies the flags and prints the result.
Use it to check what run and which will use.`,
		Flags:  cmdflags.ConfigFlags(),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg, err := cmdflags.LoadConfig(ctx, cmd)
	if err != nil {
		ctxlog.Error(ctx, fmt.Sprintf("Failed to load configuration: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	b, err := cfg.YAML()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	_, _ = cmd.Root().Writer.Write(b)

	return nil
}
