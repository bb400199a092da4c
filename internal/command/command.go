// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package command holds the immutable command template passed to the executor and
// renders it into a shell command line.
//
// A template is a string in which each %s is replaced by the next argument and %% is
// a literal percent sign. Every argument is escaped for the quoting context its
// placeholder sits in, so `echo "%s"` renders an argument inside the double quotes
// without letting it close them.
package command

import (
	"fmt"
	"slices"
	"strings"
)

// QuoteContext is the shell quoting state at the position of a placeholder.
type QuoteContext int

const (
	// Unquoted means the placeholder is outside any quotes.
	Unquoted QuoteContext = iota
	// SingleQuoted means the placeholder is inside '...'.
	SingleQuoted
	// DoubleQuoted means the placeholder is inside "...".
	DoubleQuoted
)

// String implements fmt.Stringer.
func (q QuoteContext) String() string {
	switch q {
	case Unquoted:
		return "unquoted"
	case SingleQuoted:
		return "single-quoted"
	case DoubleQuoted:
		return "double-quoted"
	default:
		return fmt.Sprintf("QuoteContext(%d)", int(q))
	}
}

// Syntax describes the parts of a shell's quoting rules the renderer needs in order
// to follow the quote state of a template.
type Syntax struct {
	// SingleQuotes is true when '...' is a quoting construct.
	SingleQuotes bool
	// Escape is the character that escapes the next character outside quotes, or 0 for none.
	Escape byte
	// EscapeInDoubleQuotes is true when Escape also applies inside "...".
	EscapeInDoubleQuotes bool
}

// Quoter escapes arguments for a particular shell.
type Quoter interface {
	Quote(arg string, qc QuoteContext) string
	Syntax() Syntax
}

// Command is a command template and its positional arguments.
// The zero value renders to an empty line.
type Command struct {
	template string
	args     []string
	raw      bool
}

// New returns a Command. The number of %s placeholders in template should match
// len(args); see Render for what happens when it does not.
func New(template string, args ...string) Command {
	return Command{
		template: template,
		args:     slices.Clone(args),
	}
}

// Raw returns a Command for an already rendered line. No placeholders are interpreted.
func Raw(line string) Command {
	return Command{template: line, raw: true}
}

// Template returns the template.
func (c Command) Template() string {
	return c.template
}

// Args returns a copy of the arguments.
func (c Command) Args() []string {
	return slices.Clone(c.args)
}

// String returns the template followed by the arguments, for logging.
func (c Command) String() string {
	if len(c.args) == 0 {
		return c.template
	}

	return fmt.Sprintf("%s %q", c.template, c.args)
}

// Render substitutes the arguments into the template, escaping each one with q.
//
// Placeholder and argument counts are a caller precondition. Mismatches are rendered
// the way the fmt package does it: a missing argument becomes %!s(MISSING) and
// surplus arguments are appended as %!(EXTRA ...). Surplus arguments are escaped
// like any other argument.
func (c Command) Render(q Quoter) string {
	if c.raw {
		return c.template
	}

	syn := q.Syntax()
	state := Unquoted
	next := 0
	tpl := c.template

	var sb strings.Builder

	sb.Grow(len(tpl))

	for i := 0; i < len(tpl); i++ {
		ch := tpl[i]

		switch {
		case ch == '%' && i+1 < len(tpl) && tpl[i+1] == 's':
			if next < len(c.args) {
				sb.WriteString(q.Quote(c.args[next], state))
			} else {
				sb.WriteString("%!s(MISSING)")
			}

			next++
			i++

			continue
		case ch == '%' && i+1 < len(tpl) && tpl[i+1] == '%':
			sb.WriteByte('%')
			i++

			continue
		case escapes(state, ch, syn) && i+1 < len(tpl):
			sb.WriteByte(ch)
			sb.WriteByte(tpl[i+1])
			i++

			continue
		}

		state = advance(state, ch, syn)
		sb.WriteByte(ch)
	}

	if next < len(c.args) {
		extra := make([]string, 0, len(c.args)-next)
		for _, a := range c.args[next:] {
			extra = append(extra, "string="+q.Quote(a, state))
		}

		sb.WriteString("%!(EXTRA " + strings.Join(extra, ", ") + ")")
	}

	return sb.String()
}

func escapes(state QuoteContext, ch byte, syn Syntax) bool {
	if syn.Escape == 0 || ch != syn.Escape {
		return false
	}

	switch state {
	case Unquoted:
		return true
	case DoubleQuoted:
		return syn.EscapeInDoubleQuotes
	default:
		return false
	}
}

func advance(state QuoteContext, ch byte, syn Syntax) QuoteContext {
	switch state {
	case Unquoted:
		if ch == '"' {
			return DoubleQuoted
		}

		if ch == '\'' && syn.SingleQuotes {
			return SingleQuoted
		}
	case SingleQuoted:
		if ch == '\'' {
			return Unquoted
		}
	case DoubleQuoted:
		if ch == '"' {
			return Unquoted
		}
	}

	return state
}
