// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package executor runs build step commands through the platform shell.
//
// An Executor renders a command template for its platform, optionally prefixes a
// change into the working directory, runs the line with procrunner and keeps the
// captured streams of the most recent command. Failure is reported by the boolean
// result of Execute, never by a panic or an error value, so build steps can be
// chained on success.
//
// An Executor runs one command at a time. Callers that need the output of a command
// must read it before the next Execute call overwrites it.
package executor
