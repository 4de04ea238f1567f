// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package runner executes external commands, or prints them in dry-run mode,
// and carries child exit codes back to the caller unchanged.
package runner
