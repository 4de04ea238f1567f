// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/staranto/dnos-kdev/internal/cacheutil"
	"github.com/staranto/dnos-kdev/internal/command"
	"github.com/staranto/dnos-kdev/internal/config"
	mylog "github.com/staranto/dnos-kdev/internal/log"
	"github.com/staranto/dnos-kdev/internal/version"
)

// EnvFile holds local KDEV_* overrides. Variables already set in the real
// environment win.
const EnvFile = ".kdev.env"

var ctx = context.Background()

func main() {
	os.Exit(realMain(os.Args, os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "Error: failed to load %s: %v\n", EnvFile, err)
		return 1
	}

	mylog.InitLogger()

	if _, err := config.Load(); err != nil {
		if !errors.Is(err, config.ErrNotFound) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		log.Debug("no config file")
	}

	// Short-circuit --version/-v, but only as a root flag.
	for _, a := range rootArgs(args) {
		if a == "--version" || a == "-v" {
			fmt.Fprintln(stdout, version.Version)
			return 0
		}
	}

	args, err := mangleArguments(args)
	if err != nil {
		fmt.Fprintf(stderr, "Incorrect Usage: %v\n", err)
		return command.ExitUsage
	}

	if !isDryRun(args) {
		hours, _ := config.GetInt("cache.max_age_hours", 0)
		if err := cacheutil.Purge(hours); err != nil {
			log.WithError(err).Warn("cache purge failed")
		}
	}

	app, err := command.InitApp(ctx, args, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	app.Writer = stderr
	app.ErrWriter = stderr

	err = app.Run(ctx, args)

	// Help is always a usage outcome, even though the CLI treats it as success.
	if wantsHelp(args) {
		return command.ExitUsage
	}
	return exitStatus(err, stderr)
}

// exitStatus maps a command error to the process status. Usage errors have
// already been reported; exit codes of failed children pass through.
func exitStatus(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if command.IsUsageError(err) {
		return command.ExitUsage
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ec cli.ExitCoder
	if errors.As(err, &ec) && ec.ExitCode() != 0 {
		return ec.ExitCode()
	}
	return 1
}

// flagArgs returns the args before a "--" terminator.
func flagArgs(args []string) []string {
	if i := slices.Index(args, "--"); i >= 0 {
		return args[:i]
	}
	return args
}

// subcommandIndex is the position of the first subcommand name, or -1.
func subcommandIndex(args []string) int {
	return slices.IndexFunc(flagArgs(args), func(a string) bool {
		return slices.Contains(command.CommandNames(), a)
	})
}

// rootArgs returns the args before the subcommand.
func rootArgs(args []string) []string {
	args = flagArgs(args)
	if i := subcommandIndex(args); i >= 0 {
		return args[:i]
	}
	return args
}

func wantsHelp(args []string) bool {
	for _, a := range flagArgs(args) {
		if a == "--help" || a == "-h" {
			return true
		}
	}
	return false
}

func isDryRun(args []string) bool {
	for _, a := range flagArgs(args) {
		if a == "--dry-run" || a == "-n" || a == "--dry-run=true" {
			return true
		}
	}
	v := strings.ToLower(os.Getenv("KDEV_DRY_RUN"))
	return v == "1" || v == "true"
}

// mangleArguments expands argument sets. An arg "@name" after the subcommand
// is replaced by the whitespace-split entries of the config list
// <subcommand>.<name>. Without any @name, <subcommand>.defaults is inserted
// right after the subcommand when configured.
func mangleArguments(args []string) ([]string, error) {
	idx := subcommandIndex(args)
	if idx < 1 || wantsHelp(args) {
		return args, nil
	}
	subcmd := args[idx]

	end := len(args)
	if i := slices.Index(args[idx:], "--"); i >= 0 {
		end = idx + i
	}

	out := slices.Clone(args[:idx+1])
	explicit := false
	for _, a := range args[idx+1 : end] {
		if !strings.HasPrefix(a, "@") || len(a) == 1 {
			out = append(out, a)
			continue
		}
		explicit = true
		set, err := argSet(subcmd, a[1:])
		if err != nil {
			return nil, err
		}
		if set == nil {
			return nil, fmt.Errorf("unknown argument set %s: no %s.%s in config", a, subcmd, a[1:])
		}
		out = append(out, set...)
	}
	out = append(out, args[end:]...)

	if !explicit {
		set, err := argSet(subcmd, "defaults")
		if err != nil {
			return nil, err
		}
		out = slices.Insert(out, idx+1, set...)
	}

	log.Debugf("args=%v", out)
	return out, nil
}

// argSet returns the fields of the config list <subcmd>.<name>, or nil when
// it is not configured.
func argSet(subcmd, name string) ([]string, error) {
	key := subcmd + "." + name
	entries, err := config.GetStringSlice(key)
	if err != nil {
		if errors.Is(err, config.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("argument set %s: %w", key, err)
	}

	fields := []string{}
	for _, e := range entries {
		fields = append(fields, strings.Fields(e)...)
	}
	return fields, nil
}
