// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		ctx := New(context.Background(), logger)
		assert.Same(t, logger, Logger(ctx))
	})

	t.Run("with nil logger should use default", func(t *testing.T) {
		ctx := New(context.Background(), nil)
		assert.Same(t, DefaultLogger, Logger(ctx))
	})
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		setupContext  func() context.Context
		expectDefault bool
	}{
		{
			name: "context with logger",
			setupContext: func() context.Context {
				return New(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			},
			expectDefault: false,
		},
		{
			name:          "context without logger",
			setupContext:  context.Background,
			expectDefault: true,
		},
		{
			name: "context with nil logger value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, nil)
			},
			expectDefault: true,
		},
		{
			name: "context with wrong type value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, "not a logger")
			},
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Logger(tt.setupContext())
			require.NotNil(t, logger)

			if tt.expectDefault {
				assert.Same(t, DefaultLogger, logger)
			} else {
				assert.NotSame(t, DefaultLogger, logger)
			}
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := New(context.Background(), logger)

	tests := []struct {
		name     string
		logFunc  func(context.Context, string, ...any)
		message  string
		expected string
	}{
		{name: "debug", logFunc: Debug, message: "debug message", expected: "level=DEBUG"},
		{name: "info", logFunc: Info, message: "info message", expected: "level=INFO"},
		{name: "warn", logFunc: Warn, message: "warn message", expected: "level=WARN"},
		{name: "error", logFunc: Error, message: "error message", expected: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(ctx, tt.message, "key", "value")

			out := buf.String()
			assert.Contains(t, out, tt.expected)
			assert.Contains(t, out, tt.message)
			assert.Contains(t, out, "key=value")
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{in: "DEBUG", want: slog.LevelDebug, wantOK: true},
		{in: "info", want: slog.LevelInfo, wantOK: true},
		{in: " Warn ", want: slog.LevelWarn, wantOK: true},
		{in: "ERROR", want: slog.LevelError, wantOK: true},
		{in: "INVALID", want: slog.LevelWarn, wantOK: false},
		{in: "", want: slog.LevelWarn, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestLogLevelFromEnv(t *testing.T) {
	envVar := logLevelEnvVar()

	t.Setenv(envVar, "DEBUG")
	assert.Equal(t, slog.LevelDebug, logLevelFromEnv())

	t.Setenv(envVar, "ERROR")
	assert.Equal(t, slog.LevelError, logLevelFromEnv())

	t.Setenv(envVar, "")
	assert.Equal(t, slog.LevelWarn, logLevelFromEnv())
}

func TestLogLevelEnvVar(t *testing.T) {
	v := logLevelEnvVar()
	assert.Regexp(t, `^[A-Z0-9_.]+_LOG_LEVEL$`, v)
}
