// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Paths inside the build container.
const (
	ContainerRoot    = "/kdev"
	ContainerSrc     = ContainerRoot + "/src"
	ContainerOut     = ContainerRoot + "/out"
	ContainerPatches = ContainerRoot + "/patches"
	ContainerCache   = "/root/.kpatch"
)

// Distros maps the supported distro names to the Ubuntu release they build on.
var Distros = map[string]string{
	"focal":  "20.04",
	"bionic": "18.04",
}

// DefaultDistro is used when neither a flag nor config selects one.
const DefaultDistro = "focal"

// DistroNames returns the supported distro names, sorted.
func DistroNames() []string {
	names := make([]string, 0, len(Distros))
	for name := range Distros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContextDirName is the build context directory for a distro, e.g.
// "ubuntu-focal-docker".
func ContextDirName(distro string) string {
	return "ubuntu-" + distro + "-docker"
}

// DefaultImage is the image tag used when none is configured.
func DefaultImage(distro string) string {
	return "dnos-kdev/kpatch-" + distro + ":latest"
}

// Spec holds the resolved container commands for one invocation. Build and
// Run hold the runtime arguments without the runtime binary itself.
type Spec struct {
	Subcommand string
	DryRun     bool
	Runtime    string
	Build      []string
	Run        []string
}

// KpatchOptions are the resolved inputs for the kpatch-build workflow. Paths
// are expected to be absolute.
type KpatchOptions struct {
	Distro     string
	DockerRoot string
	Image      string

	Pull      bool
	NoCache   bool
	BuildArgs []string

	SourceDir string
	OutputDir string
	CacheDir  string
	Patches   []string

	Jobs        int
	Name        string
	Debug       bool
	SkipCleanup bool
	Env         []string

	Interactive bool
	TTY         bool
}

// ContextDir is the docker build context for the selected distro.
func (o KpatchOptions) ContextDir() string {
	return filepath.Join(o.DockerRoot, ContextDirName(o.Distro))
}

// Validate checks the option combinations that cannot be expressed by flag
// parsing alone.
func (o KpatchOptions) Validate() error {
	if _, ok := Distros[o.Distro]; !ok {
		return fmt.Errorf("unknown distro %q: must be one of %v", o.Distro, DistroNames())
	}
	if strings.TrimSpace(o.Image) == "" {
		return fmt.Errorf("image must not be empty")
	}
	if o.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", o.Jobs)
	}
	for _, kv := range o.BuildArgs {
		if err := ValidateKeyValue(kv); err != nil {
			return fmt.Errorf("build-arg: %w", err)
		}
	}
	for _, kv := range o.Env {
		if err := ValidateKeyValue(kv); err != nil {
			return fmt.Errorf("env: %w", err)
		}
	}
	seen := map[string]string{}
	for _, p := range o.Patches {
		base := filepath.Base(p)
		if prev, ok := seen[base]; ok && prev != p {
			return fmt.Errorf("patches %s and %s share the file name %s", prev, p, base)
		}
		seen[base] = p
	}
	return nil
}

// CheckPaths verifies the host side of the source and patch bind mounts. The
// runtime would otherwise create a missing mount source as an empty
// root-owned directory.
func (o KpatchOptions) CheckPaths() error {
	fi, err := os.Stat(o.SourceDir)
	if err != nil {
		return fmt.Errorf("source %s: %w", o.SourceDir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("source %s is not a directory", o.SourceDir)
	}
	for _, p := range o.Patches {
		fi, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("patch %s: %w", p, err)
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("patch %s is not a regular file", p)
		}
	}
	return nil
}

// ValidateKeyValue accepts KEY=VALUE with a non-empty key free of whitespace.
func ValidateKeyValue(kv string) error {
	k, _, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("%q is not KEY=VALUE", kv)
	}
	if k == "" || strings.ContainsAny(k, " \t\n") {
		return fmt.Errorf("%q has an invalid key", kv)
	}
	return nil
}

// BuildArgs renders the container-build argument list.
func BuildArgs(o KpatchOptions) []string {
	args := []string{"build", "-t", o.Image}
	if o.Pull {
		args = append(args, "--pull")
	}
	if o.NoCache {
		args = append(args, "--no-cache")
	}
	for _, kv := range sortedKeyValues(o.BuildArgs) {
		args = append(args, "--build-arg", kv)
	}
	return append(args, o.ContextDir())
}

// RunArgs renders the container-run argument list.
func RunArgs(o KpatchOptions) []string {
	args := []string{"run", "--rm"}
	if o.Interactive {
		args = append(args, "-i")
	}
	if o.TTY {
		args = append(args, "-t")
	}

	args = append(args,
		"-v", o.SourceDir+":"+ContainerSrc,
		"-v", o.OutputDir+":"+ContainerOut,
	)
	if o.CacheDir != "" {
		args = append(args, "-v", o.CacheDir+":"+ContainerCache)
	}
	for _, p := range o.Patches {
		args = append(args, "-v", p+":"+containerPatch(p)+":ro")
	}

	args = append(args, "-w", ContainerOut)
	for _, kv := range sortedKeyValues(o.Env) {
		args = append(args, "-e", kv)
	}

	args = append(args, o.Image, "kpatch-build",
		"--sourcedir", ContainerSrc,
		"--jobs", strconv.Itoa(o.Jobs),
	)
	if o.Name != "" {
		args = append(args, "--name", o.Name)
	}
	if o.Debug {
		args = append(args, "--debug")
	}
	if o.SkipCleanup {
		args = append(args, "--skip-cleanup")
	}
	for _, p := range o.Patches {
		args = append(args, containerPatch(p))
	}
	return args
}

// NewKpatchSpec resolves both container commands for kpatch-build.
func NewKpatchSpec(runtime string, dryRun bool, o KpatchOptions) (Spec, error) {
	if err := o.Validate(); err != nil {
		return Spec{}, err
	}
	return Spec{
		Subcommand: "kpatch-build",
		DryRun:     dryRun,
		Runtime:    runtime,
		Build:      BuildArgs(o),
		Run:        RunArgs(o),
	}, nil
}

// containerPatch is where a host patch file is mounted in the container.
func containerPatch(p string) string {
	return path.Join(ContainerPatches, filepath.Base(p))
}

// sortedKeyValues orders KEY=VALUE pairs by key so rendering does not depend
// on flag or config order. Later duplicates of a key win.
func sortedKeyValues(kvs []string) []string {
	byKey := map[string]string{}
	for _, kv := range kvs {
		k, _, _ := strings.Cut(kv, "=")
		byKey[k] = kv
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out
}
