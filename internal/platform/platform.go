// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package platform describes how commands are handed to the shell and how binaries
// are recognised on Unix-like and Windows hosts.
//
// A Platform is a plain value. The executor and the path resolver take one at
// construction time, so a Windows rendering can be tested on Linux and vice versa.
package platform

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/buildexec/internal/command"
)

const (
	// GOOSWindows is the string constant for Windows OS from the runtime package.
	GOOSWindows = "windows"

	binSh            = "/bin/sh"    // Shell used for Unix command lines.
	winSystem32      = "System32"   // Directory holding cmd.exe under the system root.
	cmdExe           = "cmd.exe"    // Windows command interpreter.
	winSystemRootEnv = "SystemRoot" // Environment variable for the Windows system root.
	pathExtEnv       = "PATHEXT"    // Windows list of executable extensions.
)

// ErrUnknownPlatform is returned by ByName for an unrecognised name.
var ErrUnknownPlatform = errors.New("unknown platform")

var _ command.Quoter = Platform{}

// Platform is a shell and binary search convention.
type Platform struct {
	// Name is "unix" or "windows".
	Name string
	// Shell is the interpreter path. Empty means the platform default.
	Shell string
	// ShellSwitch precedes the command line in the interpreter's arguments.
	ShellSwitch string
	// PathListSeparator separates entries of the PATH variable.
	PathListSeparator string
	// Extensions are appended to a bare name when it is not found as is.
	Extensions []string
	// ExecBitRequired rejects files without an executable permission bit.
	ExecBitRequired bool
	// ChdirFormat renders a working directory change; %s receives the quoted directory.
	ChdirFormat string

	syntax command.Syntax
	quote  func(string, command.QuoteContext) string
}

// Unix is /bin/sh -c with POSIX quoting.
var Unix = Platform{
	Name:              "unix",
	Shell:             binSh,
	ShellSwitch:       "-c",
	PathListSeparator: ":",
	ExecBitRequired:   true,
	ChdirFormat:       "cd %s && ",
	syntax:            command.Syntax{SingleQuotes: true, Escape: '\\', EscapeInDoubleQuotes: true},
	quote:             posixQuote,
}

// Windows is cmd.exe /C with cmd quoting.
var Windows = Platform{
	Name:              "windows",
	ShellSwitch:       "/C",
	PathListSeparator: ";",
	Extensions:        []string{".exe", ".bat", ".cmd", ".com"},
	ChdirFormat:       "cd /d %s && ",
	syntax:            command.Syntax{Escape: '^'},
	quote:             cmdQuote,
}

// Host returns the platform of the running operating system. On Windows the
// extensions come from PATHEXT when it is set.
func Host() Platform {
	if runtime.GOOS != GOOSWindows {
		return Unix
	}

	if pe := os.Getenv(pathExtEnv); pe != "" {
		return Windows.WithExtensions(strings.Split(strings.ToLower(pe), ";")...)
	}

	return Windows
}

// ByName returns the platform for name. "" and "auto" select the host platform.
func ByName(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Host(), nil
	case "unix", "posix", "linux", "darwin":
		return Unix, nil
	case "windows", "win":
		return Windows, nil
	default:
		return Platform{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
	}
}

// WithExtensions returns a copy of p using exts. Empty entries are dropped and a
// missing leading dot is added.
func (p Platform) WithExtensions(exts ...string) Platform {
	out := make([]string, 0, len(exts))

	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}

		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		out = append(out, e)
	}

	p.Extensions = out

	return p
}

// WithShell returns a copy of p using the given interpreter.
func (p Platform) WithShell(shell string) Platform {
	p.Shell = shell
	return p
}

// Syntax implements command.Quoter.
func (p Platform) Syntax() command.Syntax {
	return p.syntax
}

// Quote implements command.Quoter.
func (p Platform) Quote(arg string, qc command.QuoteContext) string {
	if p.quote == nil {
		return posixQuote(arg, qc)
	}

	return p.quote(arg, qc)
}

// Render renders c for this platform.
func (p Platform) Render(c command.Command) string {
	return c.Render(p)
}

// ChdirPrefix returns the clause that changes into dir before the command runs.
func (p Platform) ChdirPrefix(dir string) string {
	if dir == "" {
		return ""
	}

	return fmt.Sprintf(p.ChdirFormat, p.Quote(dir, command.Unquoted))
}

// ShellCommand returns the interpreter path and arguments that run line.
func (p Platform) ShellCommand(line string) (string, []string) {
	return p.shellPath(), []string{p.ShellSwitch, line}
}

func (p Platform) shellPath() string {
	if p.Shell != "" {
		return p.Shell
	}

	if p.Name != Windows.Name {
		return binSh
	}

	systemRoot := os.Getenv(winSystemRootEnv)
	if systemRoot == "" {
		systemRoot = `C:\Windows`
	}

	return systemRoot + `\` + winSystem32 + `\` + cmdExe
}

// Candidates returns the file names tried for name, in order: the bare name, then
// name with each extension. A name that already carries one of the extensions is
// only tried as is.
func (p Platform) Candidates(name string) []string {
	ext := pathExt(name)
	if ext != "" && slices.ContainsFunc(p.Extensions, func(e string) bool { return strings.EqualFold(e, ext) }) {
		return []string{name}
	}

	out := make([]string, 0, len(p.Extensions)+1)
	out = append(out, name)

	for _, e := range p.Extensions {
		out = append(out, name+e)
	}

	return out
}

// Eligible reports whether a file with the given mode found on PATH may be
// returned as a binary.
func (p Platform) Eligible(mode os.FileMode) bool {
	if !mode.IsRegular() {
		return false
	}

	if p.ExecBitRequired && mode.Perm()&0o111 == 0 {
		return false
	}

	return true
}

// SplitPathList splits a PATH value. Empty entries are dropped.
func (p Platform) SplitPathList(path string) []string {
	if path == "" {
		return nil
	}

	sep := p.PathListSeparator
	if sep == "" {
		sep = string(os.PathListSeparator)
	}

	parts := strings.Split(path, sep)

	return slices.DeleteFunc(parts, func(s string) bool {
		return strings.TrimSpace(s) == ""
	})
}

func pathExt(name string) string {
	i := strings.LastIndexAny(name, `.\/`)
	if i < 0 || name[i] != '.' {
		return ""
	}

	return name[i:]
}
