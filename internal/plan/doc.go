// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package plan resolves a kpatch-build invocation into the container build
// and run argument lists, and renders them as shell-safe command lines.
package plan
