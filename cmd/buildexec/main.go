// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the buildexec command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/matt-FFFFFF/buildexec"
	"github.com/matt-FFFFFF/buildexec/cmd/buildexec/configcmd"
	"github.com/matt-FFFFFF/buildexec/cmd/buildexec/run"
	"github.com/matt-FFFFFF/buildexec/cmd/buildexec/which"
	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
	"github.com/matt-FFFFFF/buildexec/internal/executor"
	"github.com/matt-FFFFFF/buildexec/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

func newRootCmd(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			configcmd.New(),
			run.New(),
			which.New(),
		},
		Writer:    stdout,
		ErrWriter: stderr,
		Name:      "buildexec",
		Description: `buildexec runs build step commands through the platform shell and
locates the binaries they need. Output of both streams is captured without the risk
of a full pipe stalling the command.

Set BUILDEXEC_LOG_LEVEL to debug, info, warn or error to control logging.`,
		Usage:     "buildexec run -- 'echo %s' 'hello world'",
		Version:   fmt.Sprintf("%s (commit: %s)", buildexec.Version, buildexec.Commit),
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}

// stderrSink writes one line per message to w, where the output of the command is
// also printed, and keeps the record in the log.
func stderrSink(w io.Writer) executor.Sink {
	return executor.SinkFunc(func(ctx context.Context, msg string, attrs ...any) {
		line := "buildexec: " + msg

		for i := 0; i+1 < len(attrs); i += 2 {
			line += fmt.Sprintf(" %v=%v", attrs[i], attrs[i+1])
		}

		_, _ = fmt.Fprintln(w, line)

		ctxlog.Debug(ctx, msg, attrs...)
	})
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel, stderrSink(os.Stderr))

	err := newRootCmd(os.Stdout, os.Stderr).Run(ctx, os.Args) // Err is handled by cli framework

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1) //nolint:gocritic
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
}
