// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package platform

import (
	"strings"

	"github.com/matt-FFFFFF/buildexec/internal/command"
)

// posixSafe are the characters that never need quoting for /bin/sh.
const posixSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_@%+=:,./-"

var posixDoubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")

func posixQuote(arg string, qc command.QuoteContext) string {
	switch qc {
	case command.SingleQuoted:
		return strings.ReplaceAll(arg, `'`, `'\''`)
	case command.DoubleQuoted:
		return posixDoubleQuoteEscaper.Replace(arg)
	default:
		if arg == "" {
			return "''"
		}

		if strings.Trim(arg, posixSafe) == "" {
			return arg
		}

		return "'" + strings.ReplaceAll(arg, `'`, `'\''`) + "'"
	}
}

// cmdSafe are the characters that never need quoting for cmd.exe.
const cmdSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_+=:,./\\-"

// cmdQuote escapes for cmd.exe. Inside double quotes the metacharacters & | < > ^
// are already literal, so only the quote itself is doubled. Percent expansion of
// defined variables cannot be suppressed on a /C command line.
func cmdQuote(arg string, qc command.QuoteContext) string {
	escaped := strings.ReplaceAll(arg, `"`, `""`)

	if qc == command.DoubleQuoted {
		return escaped
	}

	if arg != "" && strings.Trim(arg, cmdSafe) == "" {
		return arg
	}

	return `"` + escaped + `"`
}
