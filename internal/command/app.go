// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/staranto/dnos-kdev/internal/config"
	mylog "github.com/staranto/dnos-kdev/internal/log"
	"github.com/staranto/dnos-kdev/internal/meta"
)

// Description is the one-line summary shown in the usage text.
const Description = "Kernel tool for dnos kernel patch development"

// InitApp builds the root command. Reports go to stdout, help and logs to
// stderr.
func InitApp(ctx context.Context, args []string, stdout io.Writer) (*cli.Command, error) {
	sd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// The build contexts ship next to the binary, so resolve through any
	// symlink that put it on PATH.
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	meta := meta.Meta{
		Args:        args,
		Config:      config.Config,
		Context:     ctx,
		Executable:  exe,
		StartingDir: sd,
		Stdout:      stdout,
	}

	app := &cli.Command{
		Name:            "dnos-kdev",
		Usage:           Description,
		UsageText:       "dnos-kdev [--dry-run] command [options] [arguments...]",
		Flags:           NewRootFlags(),
		HideHelpCommand: true,
		Writer:          os.Stderr,
		ErrWriter:       os.Stderr,
		Metadata: map[string]any{
			"meta": meta,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				mylog.SetVerbose()
			}
			return ctx, nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return usageError(ctx, cmd, fmt.Errorf("unknown command %q", cmd.Args().First()))
			}
			return usageError(ctx, cmd, errors.New("no command specified"))
		},
		OnUsageError: OnUsageError,
		// Exit codes are resolved by the caller, never by os.Exit in here.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	app.Commands = append(app.Commands,
		KpatchCommandBuilder(app, meta),
		CompletionCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}

// CommandNames lists the subcommands InitApp registers.
func CommandNames() []string {
	return []string{KpatchCommandName, "completion"}
}
