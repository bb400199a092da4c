// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package linebuffer provides an io.Writer that captures a child process stream.
//
// The buffer keeps at most a configured number of bytes but never refuses a write:
// bytes past the limit are counted and dropped so that the goroutine draining the
// pipe keeps reading and the child never blocks on a full pipe. It also remembers the
// last complete line so long running commands can report progress while they run.
package linebuffer
