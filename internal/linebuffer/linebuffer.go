// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linebuffer

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

var _ io.Writer = (*Buffer)(nil)

// MaxLineLength is the number of bytes of a line kept for LastLine and PartialLine.
const MaxLineLength = 4096

// Buffer captures written bytes up to a limit and tracks the last complete line.
// It is safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	data     bytes.Buffer
	limit    int64
	written  int64
	lastLine string
	partial  strings.Builder
}

// New returns a Buffer keeping at most limit bytes. A limit <= 0 keeps everything.
func New(limit int64) *Buffer {
	return &Buffer{limit: limit}
}

// Write implements io.Writer. It always reports len(p) bytes written and a nil error,
// even once the limit has been reached.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	keep := p
	if b.limit > 0 {
		room := b.limit - int64(b.data.Len())
		switch {
		case room <= 0:
			keep = nil
		case int64(len(p)) > room:
			keep = p[:room]
		}
	}

	b.data.Write(keep)
	b.written += int64(len(p))
	b.trackLines(p)

	return len(p), nil
}

// trackLines must be called with the write lock held.
func (b *Buffer) trackLines(p []byte) {
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			b.appendPartial(p)
			return
		}

		b.appendPartial(p[:i])
		b.lastLine = strings.TrimSuffix(b.partial.String(), "\r")
		b.partial.Reset()
		p = p[i+1:]
	}
}

func (b *Buffer) appendPartial(p []byte) {
	if room := MaxLineLength - b.partial.Len(); room > 0 {
		b.partial.Write(p[:min(room, len(p))])
	}
}

// Bytes returns a copy of the retained bytes.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return bytes.Clone(b.data.Bytes())
}

// String returns the retained bytes as a string.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.data.String()
}

// Written returns the total number of bytes written, including dropped bytes.
func (b *Buffer) Written() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.written
}

// Truncated reports whether bytes were dropped because of the limit.
func (b *Buffer) Truncated() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.written > int64(b.data.Len())
}

// LastLine returns the last complete line written, without its line ending.
// If maxLength > 3 and the line is longer, it is cut and suffixed with "...".
func (b *Buffer) LastLine(maxLength int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	l := b.lastLine
	if maxLength > 3 && len(l) > maxLength {
		l = l[:maxLength-3] + "..."
	}

	return l
}

// PartialLine returns the bytes written after the last newline.
func (b *Buffer) PartialLine() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.partial.String()
}

// Reset discards everything. The limit is kept.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data.Reset()
	b.partial.Reset()
	b.lastLine = ""
	b.written = 0
}
