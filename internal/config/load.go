// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-getter/v2"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/matt-FFFFFF/buildexec/internal/ctxlog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrGetConfigFile is returned when the file cannot be read.
	ErrGetConfigFile = errors.New("failed to get config file")
	// ErrDecodeConfig is returned when the file content cannot be decoded.
	ErrDecodeConfig = errors.New("failed to decode config file")
	// ErrUnsupportedFormat is returned for file extensions other than .yaml, .yml, .hcl and .json.
	ErrUnsupportedFormat = errors.New("unsupported config file format")
)

const (
	extYAML = ".yaml"
	extYML  = ".yml"
	extHCL  = ".hcl"
	extJSON = ".json"

	envVariable = "env"
)

// Load reads src, decodes it according to its file extension and validates the result.
// A path that exists on FsFactory's filesystem is read directly, anything else is
// fetched with go-getter.
func Load(ctx context.Context, src string) (*Config, error) {
	if src == "" {
		return nil, ErrGetConfigFile
	}

	data, name, err := read(ctx, src)
	if err != nil {
		return nil, err
	}

	cfg, err := Decode(name, data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "configuration loaded", "source", src)

	return cfg, nil
}

// Decode decodes data, choosing the format from the extension of name.
func Decode(name string, data []byte) (*Config, error) {
	cfg := new(Config)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case extYAML, extYML:
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecodeConfig, name, err)
		}
	case extHCL, extJSON:
		// hclsimple picks native or JSON syntax from the suffix of the name.
		if err := hclsimple.Decode(filepath.Base(name), data, evalContext(), cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecodeConfig, name, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	return cfg, nil
}

// evalContext exposes the process environment to HCL expressions as env.NAME.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		vars[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			envVariable: cty.ObjectVal(vars),
		},
	}
}

func read(ctx context.Context, src string) ([]byte, string, error) {
	fs := FsFactory()

	if ok, _ := afero.Exists(fs, src); ok {
		data, err := afero.ReadFile(fs, src)
		if err != nil {
			return nil, "", errors.Join(ErrGetConfigFile, err)
		}

		return data, filepath.Base(src), nil
	}

	return getURL(ctx, src)
}

// getURL retrieves the content from the specified URL using Hashicorp's go-getter.
// It returns the content and the name of the file that was read. The temporary
// download directory is removed before returning.
func getURL(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", ErrGetConfigFile
	}

	tmpDir, err := os.MkdirTemp("", "buildexec-getter-*")
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	cli := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string

	// go-getter cannot fetch a single file out of a repository, so the directory is
	// fetched and the file read from it.
	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, "", errors.Join(ErrGetConfigFile, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(url)
		if newURL == "" || fileName == "" {
			return nil, "", fmt.Errorf("%w: invalid URL format: %s", ErrGetConfigFile, url)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)
	}

	ctxlog.Debug(ctx, "fetching configuration", "source", req.Src, "file", fileName)

	res, err := cli.Get(ctx, req)
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	return data, fileName, nil
}

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // scheme, host and path
)

// splitFileNameFromGetterURL splits a go-getter URL into the directory URL and the
// file name. A query string is kept on the directory URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last, query, hasQuery := strings.Cut(parts[len(parts)-1], goGetterRefSeparator)

	if last == "" || strings.HasSuffix(last, "/") {
		return "", ""
	}

	dir, fileName := path.Split(last)

	if dir = strings.TrimSuffix(dir, "/"); dir == "" {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = dir
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if hasQuery && query != "" {
		newURL += goGetterRefSeparator + query
	}

	return newURL, fileName
}
