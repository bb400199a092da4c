// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pathresolver locates executables for build steps.
//
// A binary is looked up in the search root, then in each configured sub directory of
// the root (vendor/bin by default) and finally in every directory of PATH. The first
// regular file wins. Any regular file below the root counts, while a file found
// through PATH must also satisfy the platform: Unix needs an executable bit. Windows
// tries the bare name and then the name with each executable extension everywhere.
package pathresolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
	"github.com/matt-FFFFFF/buildexec/internal/platform"
	"github.com/spf13/afero"
)

// DefaultSearchDirs are searched below the root, after the root itself.
var DefaultSearchDirs = []string{filepath.Join("vendor", "bin")}

// Resolver finds binaries below a fixed root and on PATH. It holds no mutable state
// and is safe for concurrent use.
type Resolver struct {
	root       string
	platform   platform.Platform
	fs         afero.Fs
	searchDirs []string
	pathEnv    func() string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSearchDirs replaces DefaultSearchDirs. Relative entries are joined to the root.
func WithSearchDirs(dirs ...string) Option {
	return func(r *Resolver) {
		r.searchDirs = slices.Clone(dirs)
	}
}

// WithFs sets the filesystem used for all lookups. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) {
		r.fs = fs
	}
}

// WithPathEnv fixes the PATH value instead of reading the environment on every lookup.
func WithPathEnv(path string) Option {
	return func(r *Resolver) {
		r.pathEnv = func() string { return path }
	}
}

// New returns a Resolver rooted at root. A relative root is made absolute against
// the current working directory.
func New(root string, p platform.Platform, opts ...Option) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Join(ErrInvalidRoot, err)
	}

	r := &Resolver{
		root:       abs,
		platform:   p,
		fs:         afero.NewOsFs(),
		searchDirs: slices.Clone(DefaultSearchDirs),
		pathEnv:    func() string { return os.Getenv("PATH") },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Root returns the absolute search root.
func (r *Resolver) Root() string {
	return r.root
}

// FindBinary returns the path of the first eligible file called name.
//
// When nothing matches, a *NotFoundError naming the binary is returned, unless quiet
// is true, in which case FindBinary returns "" and a nil error.
func (r *Resolver) FindBinary(ctx context.Context, name string, quiet bool) (string, error) {
	return r.FindFirst(ctx, []string{name}, quiet)
}

// FindFirst tries each name in turn, searching every location for one name before
// moving to the next, and returns the first match.
func (r *Resolver) FindFirst(ctx context.Context, names []string, quiet bool) (string, error) {
	names = slices.DeleteFunc(slices.Clone(names), func(s string) bool { return s == "" })
	if len(names) == 0 {
		if quiet {
			return "", nil
		}

		return "", ErrEmptyName
	}

	locs := r.searchOrder()

	for _, name := range names {
		if p, ok := r.find(ctx, name, locs); ok {
			return p, nil
		}
	}

	if quiet {
		ctxlog.Debug(ctx, "binary not found, quiet lookup", "names", names)
		return "", nil
	}

	return "", &NotFoundError{Names: names}
}

// location is a directory to search. Files under the root only need to be regular
// files; directories from PATH also need to satisfy the platform's eligibility rule.
type location struct {
	dir    string
	onPath bool
}

// searchOrder lists the directories to search: root, root-relative search dirs, PATH.
func (r *Resolver) searchOrder() []location {
	locs := []location{{dir: r.root}}

	for _, d := range r.searchDirs {
		if !filepath.IsAbs(d) {
			d = filepath.Join(r.root, d)
		}

		locs = append(locs, location{dir: d})
	}

	for _, d := range r.platform.SplitPathList(r.pathEnv()) {
		locs = append(locs, location{dir: d, onPath: true})
	}

	return locs
}

func (r *Resolver) find(ctx context.Context, name string, locs []location) (string, bool) {
	// A name containing a separator is a path; it is only looked up relative to the root.
	if filepath.Base(name) != name || filepath.IsAbs(name) {
		p := name
		if !filepath.IsAbs(p) {
			p = filepath.Join(r.root, p)
		}

		return r.lookup(ctx, p, false)
	}

	for _, loc := range locs {
		if p, ok := r.lookup(ctx, filepath.Join(loc.dir, name), loc.onPath); ok {
			return p, true
		}
	}

	return "", false
}

// lookup checks path and its extension variants.
func (r *Resolver) lookup(ctx context.Context, path string, onPath bool) (string, bool) {
	dir, base := filepath.Split(path)

	for _, candidate := range r.platform.Candidates(base) {
		full := filepath.Join(dir, candidate)

		info, err := r.fs.Stat(full)
		if err != nil {
			continue
		}

		if !info.Mode().IsRegular() || (onPath && !r.platform.Eligible(info.Mode())) {
			ctxlog.Debug(ctx, "skipping ineligible file", "path", full, "mode", info.Mode().String())
			continue
		}

		ctxlog.Debug(ctx, "binary found", "path", full)

		return full, true
	}

	return "", false
}
