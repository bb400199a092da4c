// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads executor configuration from YAML, HCL or HCL JSON files.
//
// Sources use Hashicorp's go-getter syntax, so a configuration can live in a git
// repository or behind a URL as well as on disk. In HCL files the process
// environment is available as the env object:
//
//	root        = env.BUILD_PATH
//	working_dir = "${env.BUILD_PATH}/src"
package config
