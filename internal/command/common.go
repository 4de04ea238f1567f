// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/staranto/dnos-kdev/internal/meta"
)

// ExitUsage is the process status for command line mistakes.
const ExitUsage = 2

// UsageError marks an error caused by the command line itself. The usage
// text has already been written by the time one is returned.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

func (e *UsageError) ExitCode() int { return ExitUsage }

// IsUsageError reports whether err, or anything it wraps, is a UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// usageError writes err and the help of cmd to the error writer and wraps err
// as a UsageError.
func usageError(ctx context.Context, cmd *cli.Command, err error) error {
	if IsUsageError(err) {
		return err
	}

	root := cmd.Root()
	fmt.Fprintf(root.ErrWriter, "Incorrect Usage: %v\n\n", err)
	if cmd == root {
		_ = cli.ShowRootCommandHelp(cmd)
	} else {
		_ = cli.ShowCommandHelp(ctx, root, cmd.Name)
	}
	return &UsageError{Err: err}
}

// OnUsageError is installed on every command so flag parsing failures come
// back as UsageError values.
func OnUsageError(ctx context.Context, cmd *cli.Command, err error, _ bool) error {
	return usageError(ctx, cmd, err)
}

// GetMeta returns the meta.Meta stored in the command's Metadata, looking
// through parents. If missing it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil {
		return meta.Meta{}
	}
	for _, c := range cmd.Lineage() {
		if c.Metadata == nil {
			continue
		}
		if m, ok := c.Metadata["meta"].(meta.Meta); ok {
			return m
		}
	}
	return meta.Meta{}
}

// resolvePath makes p absolute relative to the directory dnos-kdev was
// started in.
func resolvePath(m meta.Meta, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.StartingDir, p)
}

// resultWriter is where a command prints its results.
func resultWriter(m meta.Meta) io.Writer {
	if m.Stdout == nil {
		return os.Stdout
	}
	return m.Stdout
}
