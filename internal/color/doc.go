// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color decides whether ANSI colour is written to the console and wraps
// strings in the escape codes for it.
//
// NO_COLOR always wins. FORCE_COLOR enables colour when stdout is not a terminal,
// which is the usual case on CI runners that still render ANSI in their log viewers.
package color
