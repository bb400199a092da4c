// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/buildexec/internal/executor"
	"github.com/matt-FFFFFF/buildexec/internal/platform"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_YAML(t *testing.T) {
	data, err := afero.ReadFile(afero.NewOsFs(), filepath.Join("testdata", "buildexec.yaml"))
	require.NoError(t, err)

	cfg, err := Decode("buildexec.yaml", data)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Platform:       "unix",
		Root:           "/srv/build",
		WorkingDir:     "src",
		SearchDirs:     []string{"vendor/bin", "node_modules/.bin"},
		MaxOutputBytes: 1048576,
		Verbose:        true,
		Env:            map[string]string{"APP_ENV": "test"},
	}, cfg)
}

func TestDecode_YAMLUnknownField(t *testing.T) {
	_, err := Decode("buildexec.yml", []byte("platform: unix\nshel: /bin/bash\n"))
	require.ErrorIs(t, err, ErrDecodeConfig)
}

func TestDecode_HCL(t *testing.T) {
	t.Setenv("BUILDEXEC_TEST_ROOT", `C:\build`)

	data, err := afero.ReadFile(afero.NewOsFs(), filepath.Join("testdata", "buildexec.hcl"))
	require.NoError(t, err)

	cfg, err := Decode("buildexec.hcl", data)
	require.NoError(t, err)

	assert.Equal(t, "windows", cfg.Platform)
	assert.Equal(t, `C:\build`, cfg.Root)
	assert.Equal(t, `C:\build/src`, cfg.WorkingDir)
	assert.Equal(t, []string{".exe", ".ps1"}, cfg.Extensions)
	assert.Equal(t, int64(2048), cfg.MaxOutputBytes)
	assert.True(t, cfg.Quiet)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, map[string]string{"APP_ENV": "ci"}, cfg.Env)
}

func TestDecode_HCLUnknownEnv(t *testing.T) {
	_, err := Decode("buildexec.hcl", []byte(`root = env.BUILDEXEC_SURELY_NOT_SET_ANYWHERE`))
	require.ErrorIs(t, err, ErrDecodeConfig)
}

func TestDecode_JSON(t *testing.T) {
	data, err := afero.ReadFile(afero.NewOsFs(), filepath.Join("testdata", "buildexec.json"))
	require.NoError(t, err)

	cfg, err := Decode("buildexec.json", data)
	require.NoError(t, err)

	assert.Equal(t, &Config{Platform: "unix", SearchDirs: []string{"bin"}, Verbose: true}, cfg)
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := Decode("buildexec.toml", []byte(`platform = "unix"`))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_FromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/buildexec.yaml", []byte("platform: windows\nquiet: true\n"), 0o644))

	stub := gostub.Stub(&FsFactory, func() afero.Fs {
		return fs
	})
	defer stub.Reset()

	cfg, err := Load(context.Background(), "/cfg/buildexec.yaml")
	require.NoError(t, err)
	assert.Equal(t, "windows", cfg.Platform)
	assert.True(t, cfg.Quiet)
}

func TestLoad_Invalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/buildexec.yaml", []byte("platform: amiga\nmax_output_bytes: -1\n"), 0o644))

	stub := gostub.Stub(&FsFactory, func() afero.Fs {
		return fs
	})
	defer stub.Reset()

	_, err := Load(context.Background(), "/cfg/buildexec.yaml")
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorIs(t, err, platform.ErrUnknownPlatform)
	assert.Contains(t, err.Error(), "max_output_bytes")
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(context.Background(), "")
	require.ErrorIs(t, err, ErrGetConfigFile)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "zero value is valid",
			cfg:  Config{},
		},
		{
			name: "all problems are reported",
			cfg: Config{
				Platform:       "beos",
				MaxOutputBytes: -5,
				SearchDirs:     []string{"bin", " "},
				Extensions:     []string{".exe", ".", "a/b"},
				Env:            map[string]string{"A=B": "x"},
			},
			wantErr: []string{
				"unknown platform",
				"max_output_bytes",
				"search_dirs[1]",
				"extensions[1]",
				"extensions[2]",
				`env name "A=B"`,
			},
		},
		{
			name: "extension without dot is accepted",
			cfg:  Config{Extensions: []string{"exe"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrInvalidConfig)

			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestExecutorOptions(t *testing.T) {
	cfg := &Config{
		Platform:       "windows",
		Shell:          `C:\tools\cmd.exe`,
		Root:           "/srv",
		WorkingDir:     "src",
		SearchDirs:     []string{"tools"},
		Extensions:     []string{"exe"},
		MaxOutputBytes: 10,
		Verbose:        true,
		Env:            map[string]string{"A": "1"},
	}

	sink := executor.Discard

	opts, err := cfg.ExecutorOptions(sink)
	require.NoError(t, err)

	assert.Equal(t, platform.Windows.Name, opts.Platform.Name)
	assert.Equal(t, []string{".exe"}, opts.Platform.Extensions)
	assert.Equal(t, `C:\tools\cmd.exe`, opts.Platform.Shell)
	assert.Equal(t, "/srv", opts.Root)
	assert.Equal(t, "src", opts.WorkingDir)
	assert.Equal(t, []string{"tools"}, opts.SearchDirs)
	assert.Equal(t, int64(10), opts.MaxOutputBytes)
	assert.True(t, opts.Verbose)
	assert.False(t, opts.Quiet)
	assert.NotNil(t, opts.Sink)

	cfg.Env["A"] = "2"
	assert.Equal(t, "1", opts.Env["A"], "env must be copied")

	_, err = (&Config{Platform: "plan9"}).ExecutorOptions(sink)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestYAML(t *testing.T) {
	b, err := (&Config{Platform: "unix", Quiet: true}).YAML()
	require.NoError(t, err)

	assert.Equal(t, "platform: unix\nquiet: true\n", string(b))

	round, err := Decode("out.yaml", b)
	require.NoError(t, err)
	assert.Equal(t, &Config{Platform: "unix", Quiet: true}, round)
}
