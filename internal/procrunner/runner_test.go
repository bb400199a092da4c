// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package procrunner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const sh = "/bin/sh"

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	return ctxlog.New(ctx, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

// runWithDeadline fails the test instead of hanging when Run does not return.
func runWithDeadline(t *testing.T, ctx context.Context, r *Runner, path string, args ...string) *Result {
	t.Helper()

	ch := make(chan *Result, 1)

	go func() {
		ch <- r.Run(ctx, path, args...)
	}()

	select {
	case res := <-ch:
		return res
	case <-time.After(20 * time.Second):
		t.Fatal("Run did not return, output streams are not drained concurrently")
		return nil
	}
}

func TestRun_Success(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	res := New().Run(testContext(t), sh, "-c", "echo hello")

	require.NoError(t, res.Error)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "hello\n", string(res.StdOut))
	assert.Empty(t, res.StdErr)
	assert.False(t, res.Truncated)
}

func TestRun_SeparatesStreams(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	res := New().Run(testContext(t), sh, "-c", "echo out; echo err >&2")

	require.True(t, res.Succeeded())
	assert.Equal(t, "out\n", string(res.StdOut))
	assert.Equal(t, "err\n", string(res.StdErr))
}

func TestRun_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	res := New().Run(testContext(t), sh, "-c", "echo failing >&2; exit 3")

	require.NoError(t, res.Error, "a non-zero exit code is not a runner error")
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Succeeded())
	assert.Equal(t, "failing\n", string(res.StdErr))
}

func TestRun_ShellCommandNotFound(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	res := New().Run(testContext(t), sh, "-c", `eerfdcvcho "Hello World"`)

	assert.Equal(t, 127, res.ExitCode)
	assert.False(t, res.Succeeded())
	assert.NotEmpty(t, res.StdErr)
}

func TestRun_ExecutableNotFound(t *testing.T) {
	defer goleak.VerifyNone(t)

	res := New().Run(testContext(t), "/not/a/real/command")

	var pathErr *os.PathError

	require.ErrorAs(t, res.Error, &pathErr)
	require.ErrorIs(t, res.Error, ErrCouldNotStartProcess)
	assert.Equal(t, -1, res.ExitCode)
	assert.False(t, res.Succeeded())
}

func TestRun_EmptyPath(t *testing.T) {
	res := New().Run(testContext(t), "")

	require.ErrorIs(t, res.Error, ErrEmptyPath)
	require.ErrorIs(t, res.Error, ErrCouldNotStartProcess)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRun_PermissionDenied(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	script := t.TempDir() + "/script.sh"
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho hi\n"), 0o644))

	res := New().Run(testContext(t), script)

	require.ErrorIs(t, res.Error, ErrCouldNotStartProcess)
	assert.Equal(t, -1, res.ExitCode)
}

// The child fills the stderr pipe before it writes anything to stdout. A parent that
// reads stdout to completion first would block forever.
func TestRun_LargeStderrThenStdout(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	for _, length := range []int{80000, 1 << 20} {
		t.Run(fmt.Sprintf("%d bytes", length), func(t *testing.T) {
			script := fmt.Sprintf(`data="$(printf %%%ds | tr " " "-")"; >&2 echo "$data"; >&1 echo "$data"`, length)
			want := strings.Repeat("-", length) + "\n"

			res := runWithDeadline(t, testContext(t), New(), sh, "-c", script)

			require.NoError(t, res.Error)
			assert.Equal(t, 0, res.ExitCode)
			assert.Equal(t, len(want), len(res.StdOut))
			assert.Equal(t, len(want), len(res.StdErr))
			assert.Equal(t, want, string(res.StdOut))
			assert.Equal(t, want, string(res.StdErr))
		})
	}
}

func TestRun_InterleavedLargeOutput(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	script := `i=0; while [ $i -lt 2000 ]; do echo "out line $i"; echo "err line $i" >&2; i=$((i+1)); done`

	res := runWithDeadline(t, testContext(t), New(), sh, "-c", script)

	require.True(t, res.Succeeded())
	assert.Equal(t, 2000, strings.Count(string(res.StdOut), "\n"))
	assert.Equal(t, 2000, strings.Count(string(res.StdErr), "\n"))
	assert.True(t, strings.HasSuffix(string(res.StdOut), "out line 1999\n"))
	assert.True(t, strings.HasSuffix(string(res.StdErr), "err line 1999\n"))
}

func TestRun_OutputLimitKeepsDraining(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	script := `printf %200000s | tr " " "x"; echo; echo tail >&2`

	res := runWithDeadline(t, testContext(t), New(WithMaxOutputBytes(1024)), sh, "-c", script)

	require.NoError(t, res.Error)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Truncated)
	assert.Len(t, res.StdOut, 1024)
	assert.Equal(t, "tail\n", string(res.StdErr))
}

func TestRun_StdinIsEmpty(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	res := runWithDeadline(t, testContext(t), New(), sh, "-c", "cat; echo done")

	require.True(t, res.Succeeded())
	assert.Equal(t, "done\n", string(res.StdOut))
}

func TestRun_EnvAndCwd(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	dir := t.TempDir()

	r := New(WithEnv(map[string]string{"BUILD_ID": "42"}), WithCwd(dir))
	res := r.Run(testContext(t), sh, "-c", `echo "$BUILD_ID"; pwd -P`)

	require.True(t, res.Succeeded())

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(res.StdOut)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "42", lines[0])
	assert.Equal(t, resolved, lines[1])
}

func TestRun_ContextCancelled(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res := runWithDeadline(t, ctx, New(), "/bin/sleep", "10")

	assert.Equal(t, -1, res.ExitCode)
	require.ErrorIs(t, res.Error, ErrProcessKilled)
	require.ErrorIs(t, res.Error, context.DeadlineExceeded)
	assert.Contains(t, string(res.StdErr), "killing")
}

func TestRun_ContextCancelledWithOrphanHoldingPipes(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := runWithDeadline(t, ctx, New(), sh, "-c", "sleep 5 & wait")

	assert.Less(t, time.Since(start), 4*time.Second, "readers must not wait for the orphaned sleep")
	require.ErrorIs(t, res.Error, ErrProcessKilled)
	assert.Equal(t, -1, res.ExitCode)
}

// The shell exits straight away, but the background sleep keeps both pipes open.
// Cancelling must still end the run.
func TestRun_ContextCancelledAfterChildExited(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := runWithDeadline(t, ctx, New(), sh, "-c", "sleep 5 &")

	assert.Less(t, time.Since(start), 4*time.Second, "cancellation must not wait for the background sleep")
	require.ErrorIs(t, res.Error, ErrProcessKilled)
	require.ErrorIs(t, res.Error, context.DeadlineExceeded)
	assert.Equal(t, -1, res.ExitCode)
	assert.False(t, res.Succeeded())
}

func TestRun_ProgressLogging(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	var logs bytes.Buffer

	ctx := ctxlog.New(context.Background(), slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo})))

	res := New(WithProgressInterval(20*time.Millisecond)).Run(ctx, sh, "-c", "echo started; sleep 0.3")

	require.True(t, res.Succeeded())
	assert.Contains(t, logs.String(), "process still running")
	assert.Contains(t, logs.String(), "stdout=started")
}

func TestResult_Succeeded(t *testing.T) {
	var nilResult *Result

	assert.False(t, nilResult.Succeeded())
	assert.True(t, (&Result{}).Succeeded())
	assert.False(t, (&Result{ExitCode: 1}).Succeeded())
	assert.False(t, (&Result{Error: ErrProcessKilled}).Succeeded())
}
