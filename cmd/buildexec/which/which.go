// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package which implements the which sub-command.
package which

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/buildexec/cmd/buildexec/cmdflags"
	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
	"github.com/matt-FFFFFF/buildexec/internal/executor"
	"github.com/urfave/cli/v3"
)

const (
	firstFlag  = "first"
	quietFlag  = "quiet"
	cliExitStr = ""
)

// New returns the which command.
func New() *cli.Command {
	return &cli.Command{
		Name:      "which",
		Usage:     "Locate binaries below the search root and on PATH",
		ArgsUsage: "NAME...",
		Description: `Which prints the path of each NAME. It looks in the search root first,
then each search directory below it (vendor/bin by default), then PATH.

With --first only the path of the first NAME that can be found is printed.
With --quiet a missing binary is not an error.`,
		Flags: append(cmdflags.ConfigFlags(),
			&cli.BoolFlag{
				Name:        firstFlag,
				Usage:       "Print only the first of the names that can be found",
				DefaultText: "false",
			},
			&cli.BoolFlag{
				Name:        quietFlag,
				Aliases:     []string{"q"},
				Usage:       "Do not fail when a binary cannot be found",
				DefaultText: "false",
			},
		),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	names := cmd.Args().Slice()
	if len(names) == 0 {
		logger.Error("Please specify at least one binary name.")
		return cli.Exit(cliExitStr, 1)
	}

	e, err := cmdflags.NewExecutor(ctx, cmd, executor.Discard)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to create executor: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	quiet := cmd.Bool(quietFlag)

	if cmd.Bool(firstFlag) {
		p, err := e.FindFirstBinary(ctx, names, quiet)
		if err != nil {
			logger.Error(err.Error())
			return cli.Exit(cliExitStr, 1)
		}

		printPath(cmd, p)

		return nil
	}

	var result error

	for _, name := range names {
		p, err := e.FindBinary(ctx, name, quiet)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}

		printPath(cmd, p)
	}

	if result != nil {
		logger.Error(result.Error())
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

func printPath(cmd *cli.Command, p string) {
	if p == "" {
		return
	}

	_, _ = fmt.Fprintln(cmd.Root().Writer, p)
}
