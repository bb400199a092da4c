// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package procrunner

import "syscall"

// sysProcAttr is a no-op outside Windows: argv is passed as a vector.
func sysProcAttr(_ bool, _ string, _ []string) *syscall.SysProcAttr {
	return nil
}
