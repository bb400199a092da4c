// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"os/signal"

	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
)

// Notifier receives what the watchdog decided for each signal. executor.Sink
// satisfies it, so interrupts show up next to the output of the running command.
type Notifier interface {
	Log(ctx context.Context, msg string, attrs ...any)
}

type logNotifier struct{}

func (logNotifier) Log(ctx context.Context, msg string, attrs ...any) {
	ctxlog.Warn(ctx, msg, attrs...)
}

// Watch reads sigCh until it is closed. The first signal of a kind lets the running
// command finish. On the second it stops delivery, closes sigCh and calls cancel,
// which kills the command. A nil n logs through ctxlog.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc, n Notifier) {
	if n == nil {
		n = logNotifier{}
	}

	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			n.Log(ctx, "signal received again, killing the running command", "signal", sig.String())
			signal.Stop(sigCh)
			close(sigCh)
			cancel()

			return
		}

		n.Log(ctx, "signal received, waiting for the running command to finish; repeat to kill it", "signal", sig.String())

		seen[sig] = struct{}{}
	}
}
