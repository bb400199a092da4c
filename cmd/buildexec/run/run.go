// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run sub-command.
package run

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/buildexec/cmd/buildexec/cmdflags"
	"github.com/matt-FFFFFF/buildexec/internal/command"
	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
	"github.com/matt-FFFFFF/buildexec/internal/executor"
	"github.com/urfave/cli/v3"
)

const (
	rawFlag    = "raw"
	cliExitStr = ""
)

// New returns the run command.
func New() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a command template through the platform shell",
		ArgsUsage: "-- TEMPLATE [ARG...]",
		Description: `Run renders TEMPLATE, replacing each %s with the next ARG quoted for the shell,
and runs the result with /bin/sh -c (or cmd.exe /C on Windows).
Use %% for a literal percent sign.

Captured standard output and standard error are printed once the command has finished.
The exit code of the command is passed on.

Example:

  buildexec run --cwd src -- 'phpunit --filter %s' 'MyTest'`,
		Flags: append(cmdflags.ExecutorFlags(),
			&cli.BoolFlag{
				Name:        rawFlag,
				Usage:       "Join the arguments into one line and run it without placeholder substitution",
				DefaultText: "false",
			},
		),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	args := cmd.Args().Slice()
	if len(args) == 0 {
		logger.Error("Please specify a command template after --.")
		return cli.Exit(cliExitStr, 1)
	}

	e, err := cmdflags.NewExecutor(ctx, cmd, executor.SlogSink{})
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to create executor: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	var ok bool

	switch cmd.Bool(rawFlag) {
	case true:
		ok = e.ExecuteLine(ctx, strings.Join(args, " "))
	default:
		ok = e.Execute(ctx, command.New(args[0], args[1:]...))
	}

	if !e.Quiet() {
		writeOutput(cmd.Root().Writer, e.LastOutput())
		writeOutput(cmd.Root().ErrWriter, e.LastError())
	}

	if ok {
		return nil
	}

	code := e.LastExitCode()
	logger.Error("Command failed.", "exitCode", code)

	if code <= 0 {
		code = 1
	}

	return cli.Exit(cliExitStr, code)
}

func writeOutput(w io.Writer, s string) {
	if s == "" || w == nil {
		return
	}

	_, _ = fmt.Fprintln(w, s)
}
