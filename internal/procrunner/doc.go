// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package procrunner starts a child process and captures its output.
//
// Standard output and standard error are connected to two separate pipes and each
// pipe is drained by its own goroutine from the moment the child starts. A child
// that fills one pipe while the parent would otherwise be blocked on the other can
// therefore never stall. Both readers and the watchdog goroutine are joined before
// Run returns. Standard input is connected to the null device.
package procrunner
