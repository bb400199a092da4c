// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The level is read once from <EXECUTABLE>_LOG_LEVEL (BUILDEXEC_LOG_LEVEL for the CLI)
// and defaults to WARN. The default handler writes a single human readable line per
// record with the attributes rendered as indented JSON.
package ctxlog
