// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// dnos-kdev is the kernel tool for dnos kernel patch development. It wires
// the CLI, delegates to internal packages, and serves as the entry point.
package main
