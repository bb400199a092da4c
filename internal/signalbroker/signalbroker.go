// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for the OS signals that should end a build.
// By default these are os.Interrupt, SIGINT, SIGTERM and SIGQUIT.
//
// The first signal of a kind is only reported so that a running command can finish.
// Watch cancels the context on the second signal of the same kind, which kills the
// running child process.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New returns a channel that receives sigs, or the termination signals when none are given.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "watching signals for the running command", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}
