// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package procrunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
	"github.com/matt-FFFFFF/buildexec/internal/linebuffer"
)

const (
	// DefaultMaxOutputBytes is the per-stream capture limit.
	DefaultMaxOutputBytes = 8 * 1024 * 1024 // 8MB
	// DefaultProgressInterval is how often a running process is reported.
	DefaultProgressInterval = 10 * time.Second

	lastLineDisplayLength = 120
)

var (
	// ErrEmptyPath is returned when Run is called without an executable.
	ErrEmptyPath = errors.New("empty executable path")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrFailedToReadBuffer is returned when a pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrProcessKilled is returned when the process was killed because the context was done.
	ErrProcessKilled = errors.New("context done, process killed")
)

// Runner starts processes and drains their output. A Runner has no per-run state
// and may be shared.
type Runner struct {
	maxOutputBytes   int64
	progressInterval time.Duration
	env              map[string]string
	cwd              string
	verbatimArgs     bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxOutputBytes sets the per-stream capture limit. Values <= 0 disable the limit.
func WithMaxOutputBytes(n int64) Option {
	return func(r *Runner) {
		r.maxOutputBytes = n
	}
}

// WithProgressInterval sets how often a still running process is logged.
// Zero disables progress logging.
func WithProgressInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.progressInterval = d
	}
}

// WithEnv adds variables to the inherited environment.
func WithEnv(env map[string]string) Option {
	return func(r *Runner) {
		r.env = maps.Clone(env)
	}
}

// WithCwd sets the working directory of the child.
func WithCwd(dir string) Option {
	return func(r *Runner) {
		r.cwd = dir
	}
}

// WithVerbatimArgs passes arguments to the child without re-quoting them. It only
// changes behaviour on Windows, where it is needed to hand a line to cmd.exe.
func WithVerbatimArgs() Option {
	return func(r *Runner) {
		r.verbatimArgs = true
	}
}

// New returns a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		maxOutputBytes:   DefaultMaxOutputBytes,
		progressInterval: DefaultProgressInterval,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run starts path with args and blocks until the process has exited and both of its
// output streams have reached end of file. Failures are reported in the Result,
// never by panicking. Cancelling ctx kills the process and stops waiting for output,
// even when the process has already exited and only a background child it left
// behind still holds the pipes.
func (r *Runner) Run(ctx context.Context, path string, args ...string) *Result {
	logger := ctxlog.Logger(ctx).With("runner", "procrunner", "path", path)
	logger.Debug("command info", "cwd", r.cwd, "args", args)

	start := time.Now()
	res := &Result{}

	if path == "" {
		return failed(res, ErrCouldNotStartProcess, ErrEmptyPath)
	}

	stdin, err := os.Open(os.DevNull)
	if err != nil {
		return failed(res, ErrCouldNotStartProcess, err)
	}

	defer stdin.Close() //nolint:errcheck

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return failed(res, ErrFailedToCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		return failed(res, ErrFailedToCreatePipe, err)
	}

	ps, err := os.StartProcess(path, slices.Concat([]string{filepath.Base(path)}, args), &os.ProcAttr{
		Dir:   r.cwd,
		Env:   r.environ(),
		Files: []*os.File{stdin, wOut, wErr},
		Sys:   sysProcAttr(r.verbatimArgs, path, args),
	})

	// The child holds its own copies. Closing ours lets the readers see EOF once the
	// child and anything it spawned have closed theirs.
	closeAll(wOut, wErr)

	if err != nil {
		closeAll(rOut, rErr)
		logger.Debug("process could not be started", "error", err)

		return failed(res, ErrCouldNotStartProcess, err)
	}

	logger = logger.With("pid", ps.Pid)
	logger.Debug("process started")

	stdout := linebuffer.New(r.maxOutputBytes)
	stderr := linebuffer.New(r.maxOutputBytes)

	var readers multierror.Group

	readers.Go(func() error { return drain("stdout", rOut, stdout) })
	readers.Go(func() error { return drain("stderr", rErr, stderr) })

	done := make(chan struct{})
	killed := make(chan error, 1)

	var watchdog sync.WaitGroup

	watchdog.Add(1)

	go func() {
		defer watchdog.Done()
		r.watch(ctx, logger, ps, done, killed, stdout, stderr, func() { closeAll(rOut, rErr) })
	}()

	state, waitErr := ps.Wait()

	// Anything the child started in the background may still hold the pipes, so the
	// watchdog keeps watching ctx until both readers are done.
	drainErr := readers.Wait().ErrorOrNil()

	close(done)
	watchdog.Wait()

	closeAll(rOut, rErr)

	res.ExitCode = state.ExitCode()
	res.StdOut = stdout.Bytes()
	res.StdErr = stderr.Bytes()
	res.Truncated = stdout.Truncated() || stderr.Truncated()
	res.Duration = time.Since(start)

	if waitErr != nil {
		res.Error = errors.Join(res.Error, waitErr)
	}

	select {
	case e := <-killed:
		res.Error = errors.Join(res.Error, e)
		res.ExitCode = -1
	default:
	}

	if drainErr != nil {
		res.Error = errors.Join(res.Error, drainErr)
		res.ExitCode = -1
	}

	if res.Error != nil && res.ExitCode == 0 {
		res.ExitCode = -1
	}

	if res.Truncated {
		logger.Warn("output exceeded capture limit and was truncated",
			"maxBytes", r.maxOutputBytes,
			"stdoutBytes", stdout.Written(),
			"stderrBytes", stderr.Written(),
		)
	}

	logger.Debug("process finished",
		"exitCode", res.ExitCode,
		"duration", res.Duration.Round(time.Millisecond).String(),
		"stdoutBytes", len(res.StdOut),
		"stderrBytes", len(res.StdErr),
	)

	return res
}

// watch reports progress and kills the process when ctx is done. It returns when
// done is closed, which happens once the process has exited and both pipes are
// drained, or after a kill. A kill also closes the read ends.
func (r *Runner) watch(
	ctx context.Context,
	logger *slog.Logger,
	ps *os.Process,
	done <-chan struct{},
	killed chan<- error,
	stdout, stderr *linebuffer.Buffer,
	closeReaders func(),
) {
	var tick <-chan time.Time

	if r.progressInterval > 0 {
		ticker := time.NewTicker(r.progressInterval)
		defer ticker.Stop()

		tick = ticker.C
	}

	start := time.Now()

	for {
		select {
		case <-tick:
			logger.Info("process still running",
				"elapsed", time.Since(start).Round(time.Second).String(),
				"stdout", stdout.LastLine(lastLineDisplayLength),
				"stderr", stderr.LastLine(lastLineDisplayLength),
			)

		case <-ctx.Done():
			select {
			case <-done:
				return
			default:
			}

			logger.Info("context done, killing process")
			_, _ = fmt.Fprintln(stderr, "context done, killing process")

			killPs(logger, ps)

			killed <- errors.Join(ErrProcessKilled, context.Cause(ctx))

			// Orphaned grandchildren may still hold the pipes open.
			closeReaders()

			return

		case <-done:
			return
		}
	}
}

func (r *Runner) environ() []string {
	env := os.Environ()

	for _, k := range slices.Sorted(maps.Keys(r.env)) {
		env = append(env, k+"="+r.env[k])
	}

	return env
}

// drain copies src into dst until EOF. A read end closed by the watchdog is not an error.
func drain(name string, src io.Reader, dst io.Writer) error {
	if _, err := io.Copy(dst, src); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("%w: %s: %w", ErrFailedToReadBuffer, name, err)
	}

	return nil
}

func killPs(logger *slog.Logger, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			logger.Debug("process already done")
			return
		}

		logger.Error("process kill error", "error", err)

		return
	}

	logger.Info("process killed")
}

func failed(res *Result, sentinel, err error) *Result {
	res.Error = errors.Join(sentinel, err)
	res.ExitCode = -1

	return res
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
