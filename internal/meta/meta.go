// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"
	"io"

	"github.com/staranto/dnos-kdev/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// Executable is the resolved path of the running binary. The build
	// contexts are looked up next to it by default.
	Executable  string
	StartingDir string
	// Stdout receives command results such as the module report.
	Stdout io.Writer
}
