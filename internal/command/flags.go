// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"runtime"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/dnos-kdev/internal/config"
	"github.com/staranto/dnos-kdev/internal/containerrt"
	"github.com/staranto/dnos-kdev/internal/plan"
)

// NewRootFlags returns the flags accepted before or after any subcommand.
func NewRootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Aliases:     []string{"n"},
			Usage:       "print the container commands instead of running them (-i/-t on the run step follow the terminal)",
			Sources:     cli.EnvVars("KDEV_DRY_RUN"),
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:    "runtime",
			Usage:   "container runtime binary",
			Sources: valueSources("", "runtime", "KDEV_RUNTIME"),
			Value:   containerrt.DefaultRuntime,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "log at debug level",
			HideDefault: true,
		},
		&cli.BoolFlag{
			Name:        "version",
			Aliases:     []string{"v"},
			Usage:       "dnos-kdev version info",
			HideDefault: true,
			Local:       true,
		},
	}
}

// NewKpatchFlags returns the flags of the kpatch-build subcommand. Each reads
// KDEV_<FLAG> and then the kpatch-build.<flag> and <flag> config keys.
func NewKpatchFlags() []cli.Flag {
	const ns = "kpatch-build"

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "distro",
			Aliases: []string{"d"},
			Usage:   "target distro (focal, bionic)",
			Sources: valueSources(ns, "distro", "KDEV_DISTRO"),
			Value:   plan.DefaultDistro,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, DistroValidator)
			},
		},
		&cli.StringFlag{
			Name:    "docker-root",
			Usage:   "directory holding the ubuntu-<distro>-docker build contexts (default: next to the executable)",
			Sources: valueSources(ns, "docker-root", "KDEV_DOCKER_ROOT"),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "image",
			Usage:   "image tag to build and run (default: dnos-kdev/kpatch-<distro>:latest)",
			Sources: valueSources(ns, "image", "KDEV_IMAGE"),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.BoolFlag{
			Name:    "pull",
			Usage:   "always pull the base image when building",
			Sources: valueSources(ns, "pull", "KDEV_PULL"),
		},
		&cli.BoolFlag{
			Name:    "no-cache",
			Usage:   "build the image without the layer cache",
			Sources: valueSources(ns, "no-cache", "KDEV_NO_CACHE"),
		},
		&cli.StringSliceFlag{
			Name:    "build-arg",
			Usage:   "`KEY=VALUE` passed to the image build; repeatable",
			Sources: valueSources(ns, "build-arg", "KDEV_BUILD_ARG"),
			Validator: func(value []string) error {
				return FlagValidators(value, KeyValueValidator)
			},
		},
		&cli.StringFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "kernel source tree (default: current directory)",
			Sources: valueSources(ns, "source", "KDEV_SOURCE"),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "directory receiving the livepatch modules (default: ./kpatch-out)",
			Sources: valueSources(ns, "output", "KDEV_OUTPUT"),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "parallel make jobs inside the container",
			Sources: valueSources(ns, "jobs", "KDEV_JOBS"),
			Value:   runtime.NumCPU(),
			Validator: func(value int) error {
				return FlagValidators(value, PositiveValidator)
			},
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "name of the livepatch module",
			Validator: func(value string) error {
				return FlagValidators(value, LeadingDashValidator)
			},
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "run kpatch-build with --debug",
			Sources: valueSources(ns, "debug", "KDEV_DEBUG"),
		},
		&cli.BoolFlag{
			Name:    "skip-cleanup",
			Usage:   "keep kpatch-build's scratch files",
			Sources: valueSources(ns, "skip-cleanup", "KDEV_SKIP_CLEANUP"),
		},
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "`KEY=VALUE` set in the container; repeatable",
			Sources: valueSources(ns, "env", "KDEV_ENV"),
			Validator: func(value []string) error {
				return FlagValidators(value, KeyValueValidator)
			},
		},
		&cli.BoolFlag{
			Name:    "no-cache-mount",
			Usage:   "do not mount the persistent kpatch cache",
			Sources: valueSources(ns, "no-cache-mount", "KDEV_NO_CACHE_MOUNT"),
		},
		&cli.StringFlag{
			Name:    "format",
			Usage:   "module report format (text, json, yaml)",
			Sources: valueSources(ns, "format", "KDEV_FORMAT"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, FormatValidator)
			},
		},
		&cli.StringFlag{
			Name:    "upload",
			Usage:   "upload built modules to `s3://bucket/prefix`",
			Sources: valueSources(ns, "upload", "KDEV_UPLOAD"),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, UploadValidator)
			},
		},
		&cli.StringFlag{
			Name:    "aws-region",
			Usage:   "AWS region for --upload",
			Sources: valueSources(ns, "aws-region", "KDEV_AWS_REGION"),
		},
		&cli.StringFlag{
			Name:    "aws-profile",
			Usage:   "AWS shared config profile for --upload",
			Sources: valueSources(ns, "aws-profile", "KDEV_AWS_PROFILE"),
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "S3-compatible endpoint URL for --upload",
			Sources: valueSources(ns, "s3-endpoint", "KDEV_S3_ENDPOINT"),
		},
	}
}

// valueSources chains the env var with the namespaced and global config file
// keys for a flag. Without a config file only the env var is consulted.
func valueSources(ns, name, env string) cli.ValueSourceChain {
	chain := cli.EnvVars(env)
	if config.Config.Source == "" {
		return chain
	}

	src := altsrc.StringSourcer(config.Config.Source)
	if ns != "" {
		chain.Chain = append(chain.Chain, yaml.YAML(ns+"."+name, src))
	}
	chain.Chain = append(chain.Chain, yaml.YAML(name, src))
	return chain
}
