// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package containerrt

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// DefaultRuntime is the container runtime binary used when none is configured.
const DefaultRuntime = "docker"

// ErrNoRuntime is returned when the configured runtime is not on PATH.
var ErrNoRuntime = errors.New("container runtime not found")

// Info is what a version probe learned about the runtime.
type Info struct {
	Path          string
	ClientVersion string
	ServerVersion string
}

// Lookup resolves the runtime binary on PATH.
func Lookup(runtime string) (string, error) {
	p, err := exec.LookPath(runtime)
	if err != nil {
		return "", fmt.Errorf("%w: %s (need docker or podman on PATH)", ErrNoRuntime, runtime)
	}
	return p, nil
}

// Probe resolves the runtime and asks it for its version. Only a missing
// binary is an error; a runtime whose daemon is down still resolves, with
// empty versions.
func Probe(ctx context.Context, runtime string) (Info, error) {
	p, err := Lookup(runtime)
	if err != nil {
		return Info{}, err
	}
	info := Info{Path: p}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, p, "version", "--format", "{{json .}}").Output()
	if err != nil {
		log.WithError(err).Warnf("%s version failed; continuing", runtime)
	}
	info.ClientVersion, info.ServerVersion = ParseVersion(out)
	log.Debugf("runtime %s client=%q server=%q", p, info.ClientVersion, info.ServerVersion)
	return info, nil
}

// ParseVersion extracts client and server versions from the JSON printed by
// `docker version --format '{{json .}}'`. podman uses the same shape.
func ParseVersion(doc []byte) (client, server string) {
	if !gjson.ValidBytes(doc) {
		return "", ""
	}
	r := gjson.ParseBytes(doc)
	return r.Get("Client.Version").String(), r.Get("Server.Version").String()
}
