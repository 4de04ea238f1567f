// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output finds the livepatch modules a build produced and emits them
// as a text table, JSON or YAML.
package output
