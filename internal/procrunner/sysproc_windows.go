// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package procrunner

import (
	"strings"
	"syscall"
)

// sysProcAttr passes the arguments to the child untouched when verbatim is set.
// cmd.exe does not understand the backslash escaping Go applies by default.
func sysProcAttr(verbatim bool, path string, args []string) *syscall.SysProcAttr {
	if !verbatim {
		return nil
	}

	return &syscall.SysProcAttr{
		CmdLine: syscall.EscapeArg(path) + " " + strings.Join(args, " "),
	}
}
