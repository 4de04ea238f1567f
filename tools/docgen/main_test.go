// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = "# dnos-kdev kpatch-build\n\n" +
	"## Short description\n\nBuild a kpatch livepatch module\ninside a container.\n\n" +
	"## Quick examples\n\n```sh\n# Dry run\ndnos-kdev --dry-run kpatch-build   fix.patch\n\ndnos-kdev kpatch-build\n```\n"

func TestExtractTitleAndShortDesc(t *testing.T) {
	title, short := extractTitleAndShortDesc(page)
	assert.Equal(t, "dnos-kdev kpatch-build", title)
	assert.Equal(t, "Build a kpatch livepatch module inside a container.", short)

	title, short = extractTitleAndShortDesc("# only a title\n")
	assert.Equal(t, "only a title", title)
	assert.Equal(t, "only a title.", short)
}

func TestExtractQuickExamples(t *testing.T) {
	exs := extractQuickExamples(page)
	assert.Equal(t, []example{
		{Desc: "Dry run", Cmd: "dnos-kdev --dry-run kpatch-build fix.patch"},
		{Desc: "Example", Cmd: "dnos-kdev kpatch-build"},
	}, exs)

	assert.Nil(t, extractQuickExamples("# no examples\n"))
}

func TestBuildTLDR_Fallback(t *testing.T) {
	out := buildTLDR("completion", "", "", nil)
	assert.Contains(t, out, "# dnos-kdev-completion\n")
	assert.Contains(t, out, "> dnos-kdev completion\n")
	assert.Contains(t, out, "`dnos-kdev completion --help`")
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "commands"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "commands", "kpatch-build.md"), []byte(page), 0o644))

	n, err := generate(root, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	man, err := os.ReadFile(filepath.Join(root, "docs", "man", "share", "man1", "dnos-kdev-kpatch-build.1"))
	require.NoError(t, err)
	assert.NotEmpty(t, man)

	tldr, err := os.ReadFile(filepath.Join(root, "docs", "tldr", "dnos-kdev-kpatch-build.md"))
	require.NoError(t, err)
	assert.Contains(t, string(tldr), "- Dry run:\n\n`dnos-kdev --dry-run kpatch-build fix.patch`\n")
}

func TestGenerate_NoPages(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "commands"), 0o755))

	_, err := generate(root, true)
	assert.ErrorContains(t, err, "no command markdown found")
}
