// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/dnos-kdev/internal/aws"
	"github.com/staranto/dnos-kdev/internal/cacheutil"
	"github.com/staranto/dnos-kdev/internal/containerrt"
	"github.com/staranto/dnos-kdev/internal/meta"
	"github.com/staranto/dnos-kdev/internal/output"
	"github.com/staranto/dnos-kdev/internal/plan"
	"github.com/staranto/dnos-kdev/internal/publish"
	"github.com/staranto/dnos-kdev/internal/runner"
)

// KpatchCommandName is the subcommand name and its config namespace.
const KpatchCommandName = "kpatch-build"

// execRunner and newUploader are replaced in tests.
var (
	execRunner runner.Runner = runner.ExecRunner{}

	newUploader = func(ctx context.Context, opts ...aws.Option) (publish.PutObjecter, error) {
		client, err := aws.NewS3(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
)

// KpatchCommandAction builds the kpatch image for the selected distro and
// runs kpatch-build in it against the source tree, or prints both container
// commands when --dry-run is set.
func KpatchCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	opts := ResolveKpatchOptions(cmd, m)

	spec, err := plan.NewKpatchSpec(cmd.String("runtime"), cmd.Bool("dry-run"), opts)
	if err != nil {
		return usageError(ctx, cmd, err)
	}

	var target *publish.Target
	if raw := cmd.String("upload"); raw != "" {
		t, err := publish.ParseTarget(raw)
		if err != nil {
			return usageError(ctx, cmd, err)
		}
		target = &t
	}

	if spec.DryRun {
		return dryRun(ctx, cmd.Root().ErrWriter, spec, opts, target)
	}

	if err := opts.CheckPaths(); err != nil {
		return usageError(ctx, cmd, err)
	}
	if _, err := containerrt.Probe(ctx, spec.Runtime); err != nil {
		return err
	}
	if err := cacheutil.Ensure(opts.CacheDir); err != nil {
		return err
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := execute(ctx, execRunner, spec); err != nil {
		return err
	}

	modules, err := output.FindModules(opts.OutputDir)
	if err != nil {
		return err
	}
	stdout := resultWriter(m)
	if err := output.Emit(stdout, modules, cmd.String("format"), isTerminal(stdout)); err != nil {
		return err
	}

	if target == nil || len(modules) == 0 {
		return nil
	}
	client, err := newUploader(ctx, awsOptions(cmd)...)
	if err != nil {
		return err
	}
	_, err = publish.Publisher{Client: client}.Upload(ctx, *target, opts.Distro, modules)
	return err
}

// ResolveKpatchOptions turns flags, config and the invocation's meta into
// absolute, fully defaulted options.
func ResolveKpatchOptions(cmd *cli.Command, m meta.Meta) plan.KpatchOptions {
	o := plan.KpatchOptions{
		Distro:      cmd.String("distro"),
		DockerRoot:  resolvePath(m, cmd.String("docker-root")),
		Image:       cmd.String("image"),
		Pull:        cmd.Bool("pull"),
		NoCache:     cmd.Bool("no-cache"),
		BuildArgs:   cmd.StringSlice("build-arg"),
		SourceDir:   resolvePath(m, cmd.String("source")),
		OutputDir:   resolvePath(m, cmd.String("output")),
		Jobs:        cmd.Int("jobs"),
		Name:        cmd.String("name"),
		Debug:       cmd.Bool("debug"),
		SkipCleanup: cmd.Bool("skip-cleanup"),
		Env:         cmd.StringSlice("env"),
	}

	if o.DockerRoot == "" {
		o.DockerRoot = filepath.Dir(m.Executable)
	}
	if o.Image == "" {
		o.Image = plan.DefaultImage(o.Distro)
	}
	if o.SourceDir == "" {
		o.SourceDir = m.StartingDir
	}
	if o.OutputDir == "" {
		o.OutputDir = filepath.Join(m.StartingDir, "kpatch-out")
	}
	if !cmd.Bool("no-cache-mount") {
		o.CacheDir = cacheutil.KpatchDir(o.Distro)
	}
	for _, p := range cmd.Args().Slice() {
		o.Patches = append(o.Patches, resolvePath(m, p))
	}

	// kpatch-build prompts on failure only when attached to a terminal.
	o.Interactive = term.IsTerminal(int(os.Stdin.Fd()))
	o.TTY = o.Interactive && term.IsTerminal(int(os.Stdout.Fd()))

	log.Debugf("kpatch options: %+v", o)
	return o
}

func dryRun(ctx context.Context, w io.Writer, spec plan.Spec, o plan.KpatchOptions, target *publish.Target) error {
	r := runner.DryRunner{W: w}
	if err := execute(ctx, r, spec); err != nil {
		return err
	}
	if target != nil {
		return r.Note("upload %s %s/", plan.Quote(filepath.Join(o.OutputDir, "*.ko")),
			"s3://"+target.Bucket+"/"+target.Key(o.Distro, ""))
	}
	return nil
}

// execute runs the build and, only when it succeeded, the run step.
func execute(ctx context.Context, r runner.Runner, spec plan.Spec) error {
	if err := r.Run(ctx, spec.Runtime, spec.Build...); err != nil {
		return err
	}
	return r.Run(ctx, spec.Runtime, spec.Run...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func awsOptions(cmd *cli.Command) []aws.Option {
	var opts []aws.Option
	if p := cmd.String("aws-profile"); p != "" {
		opts = append(opts, aws.WithProfile(p))
	}
	if r := cmd.String("aws-region"); r != "" {
		opts = append(opts, aws.WithRegion(r))
	}
	if e := cmd.String("s3-endpoint"); e != "" {
		opts = append(opts, aws.WithEndpoint(e, true))
	}
	return opts
}

func KpatchCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	flags := NewKpatchFlags()

	return &cli.Command{
		Name:      KpatchCommandName,
		Usage:     "build a kpatch livepatch module in a distro container",
		UsageText: "dnos-kdev [--dry-run] kpatch-build [options] [@set] PATCH...",
		Description: "Builds the ubuntu-<distro>-docker image, then runs kpatch-build in it with\n" +
			"the kernel source tree and each PATCH mounted. Modules land in --output.",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:        flags,
		OnUsageError: OnUsageError,
		Action:       KpatchCommandAction,
	}
}
