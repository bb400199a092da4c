// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package procrunner

import "time"

// Result is the outcome of one Run.
type Result struct {
	ExitCode  int           // Exit code of the process, -1 if it could not be started, was killed or could not be drained.
	StdOut    []byte        // Captured standard output, at most the configured limit.
	StdErr    []byte        // Captured standard error, at most the configured limit.
	Error     error         // Error, if any. A non-zero exit code alone does not set Error.
	Truncated bool          // True if either stream exceeded the limit and was cut.
	Duration  time.Duration // Wall time from start to the end of draining.
}

// Succeeded reports whether the process exited with code 0 and no error occurred.
func (r *Result) Succeeded() bool {
	return r != nil && r.ExitCode == 0 && r.Error == nil
}
