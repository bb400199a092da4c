// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package executor

import (
	"context"

	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
)

// Sink receives the command line and captured output of every executed command.
// Attributes are slog style key/value pairs.
type Sink interface {
	Log(ctx context.Context, msg string, attrs ...any)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg string, attrs ...any)

// Log implements Sink.
func (f SinkFunc) Log(ctx context.Context, msg string, attrs ...any) {
	f(ctx, msg, attrs...)
}

// SlogSink forwards to the logger stored in the context at info level.
type SlogSink struct{}

// Log implements Sink.
func (SlogSink) Log(ctx context.Context, msg string, attrs ...any) {
	ctxlog.Info(ctx, msg, attrs...)
}

// Discard drops everything.
var Discard Sink = SinkFunc(func(context.Context, string, ...any) {})
