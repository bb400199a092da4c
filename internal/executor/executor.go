// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/matt-FFFFFF/buildexec/internal/command"
	"github.com/matt-FFFFFF/buildexec/internal/pathresolver"
	"github.com/matt-FFFFFF/buildexec/internal/platform"
	"github.com/matt-FFFFFF/buildexec/internal/procrunner"
	"github.com/spf13/afero"
)

// ErrInvalidOptions is returned by New when the options cannot be used.
var ErrInvalidOptions = errors.New("invalid executor options")

// Options configures an Executor.
type Options struct {
	// Platform selects shell syntax and binary search rules. The zero value means the host platform.
	Platform platform.Platform
	// Root is the search root for binaries. Empty means the current directory.
	Root string
	// WorkingDir, when set, is changed into before every command. A relative
	// directory is taken relative to Root.
	WorkingDir string
	// SearchDirs replaces pathresolver.DefaultSearchDirs when not nil.
	SearchDirs []string
	// Sink receives command lines and output. Nil means SlogSink.
	Sink Sink
	// Verbose reports each command line before it runs.
	Verbose bool
	// Quiet stops captured output from being forwarded to the sink.
	Quiet bool
	// MaxOutputBytes caps each captured stream. Zero means procrunner.DefaultMaxOutputBytes.
	MaxOutputBytes int64
	// Env is added to the inherited environment of every command.
	Env map[string]string
	// Fs is used for binary lookups. Nil means the OS filesystem.
	Fs afero.Fs
}

// Executor runs commands and keeps the result of the last one.
type Executor struct {
	platform   platform.Platform
	workingDir string
	sink       Sink
	verbose    bool
	quiet      bool
	runner     *procrunner.Runner
	resolver   *pathresolver.Resolver

	lastOutput   string
	lastError    string
	lastExitCode int
}

// New returns an Executor.
func New(opts Options) (*Executor, error) {
	p := opts.Platform
	if p.Name == "" {
		p = platform.Host()
	}

	resolverOpts := make([]pathresolver.Option, 0, 2)
	if opts.SearchDirs != nil {
		resolverOpts = append(resolverOpts, pathresolver.WithSearchDirs(opts.SearchDirs...))
	}

	if opts.Fs != nil {
		resolverOpts = append(resolverOpts, pathresolver.WithFs(opts.Fs))
	}

	root := opts.Root
	if root == "" {
		root = "."
	}

	resolver, err := pathresolver.New(root, p, resolverOpts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidOptions, err)
	}

	if opts.MaxOutputBytes < 0 {
		return nil, errors.Join(ErrInvalidOptions, errors.New("max output bytes must not be negative"))
	}

	runnerOpts := []procrunner.Option{procrunner.WithVerbatimArgs()}
	if opts.MaxOutputBytes > 0 {
		runnerOpts = append(runnerOpts, procrunner.WithMaxOutputBytes(opts.MaxOutputBytes))
	}

	if len(opts.Env) > 0 {
		runnerOpts = append(runnerOpts, procrunner.WithEnv(opts.Env))
	}

	workingDir := opts.WorkingDir
	if workingDir != "" && !filepath.IsAbs(workingDir) {
		workingDir = filepath.Join(resolver.Root(), workingDir)
	}

	sink := opts.Sink
	if sink == nil {
		sink = SlogSink{}
	}

	return &Executor{
		platform:   p,
		workingDir: workingDir,
		sink:       sink,
		verbose:    opts.Verbose,
		quiet:      opts.Quiet,
		runner:     procrunner.New(runnerOpts...),
		resolver:   resolver,
	}, nil
}

// Platform returns the platform commands are rendered for.
func (e *Executor) Platform() platform.Platform {
	return e.platform
}

// Quiet reports whether captured output is kept from the sink.
func (e *Executor) Quiet() bool {
	return e.quiet
}

// Root returns the absolute search root.
func (e *Executor) Root() string {
	return e.resolver.Root()
}

// Execute renders cmd and runs it. It returns true if the command exited with code 0.
// The captured output replaces that of the previous command.
func (e *Executor) Execute(ctx context.Context, cmd command.Command) bool {
	return e.run(ctx, e.platform.Render(cmd))
}

// ExecuteLine runs a line that is already rendered for the platform shell.
func (e *Executor) ExecuteLine(ctx context.Context, line string) bool {
	return e.run(ctx, line)
}

// LastOutput returns the trimmed standard output of the last command.
func (e *Executor) LastOutput() string {
	return e.lastOutput
}

// LastError returns the trimmed standard error of the last command.
func (e *Executor) LastError() string {
	return e.lastError
}

// LastExitCode returns the exit code of the last command, -1 if it could not be run.
func (e *Executor) LastExitCode() int {
	return e.lastExitCode
}

// FindBinary looks up name below the root and on PATH.
// See pathresolver.Resolver.FindBinary for the quiet semantics.
func (e *Executor) FindBinary(ctx context.Context, name string, quiet bool) (string, error) {
	return e.resolver.FindBinary(ctx, name, quiet)
}

// FindFirstBinary returns the first of names that can be found.
func (e *Executor) FindFirstBinary(ctx context.Context, names []string, quiet bool) (string, error) {
	return e.resolver.FindFirst(ctx, names, quiet)
}

func (e *Executor) run(ctx context.Context, line string) bool {
	line = e.platform.ChdirPrefix(e.workingDir) + line

	if e.verbose {
		e.sink.Log(ctx, "executing command", "command", line)
	}

	path, args := e.platform.ShellCommand(line)
	res := e.runner.Run(ctx, path, args...)

	e.lastOutput = strings.TrimSpace(string(res.StdOut))
	e.lastError = strings.TrimSpace(string(res.StdErr))
	e.lastExitCode = res.ExitCode

	e.report(ctx, line, res)

	return res.Succeeded()
}

func (e *Executor) report(ctx context.Context, line string, res *procrunner.Result) {
	if !e.quiet {
		e.forward(ctx, "stdout", res.StdOut)
		e.forward(ctx, "stderr", res.StdErr)
	}

	if res.Truncated {
		e.sink.Log(ctx, "captured output truncated", "command", line)
	}

	duration := res.Duration.Round(time.Millisecond).String()

	if res.Succeeded() {
		e.sink.Log(ctx, "command succeeded", "command", line, "duration", duration)
		return
	}

	attrs := []any{"command", line, "exitCode", res.ExitCode, "duration", duration}
	if res.Error != nil {
		attrs = append(attrs, "error", res.Error.Error())
	}

	e.sink.Log(ctx, "command failed", attrs...)
}

// forward sends each line of out to the sink.
func (e *Executor) forward(ctx context.Context, stream string, out []byte) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), len(out)+1)

	for sc.Scan() {
		e.sink.Log(ctx, strings.TrimRight(sc.Text(), "\r"), "stream", stream)
	}
}
