// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_EnvOverride(t *testing.T) {
	t.Setenv("KDEV_CACHE_DIR", "/var/cache/kdev")
	d, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/var/cache/kdev", d)
}

func TestDir_UserCacheDir(t *testing.T) {
	t.Setenv("KDEV_CACHE_DIR", "")
	t.Setenv("XDG_CACHE_HOME", "/home/dev/.cache")
	d, ok := Dir()
	if !ok {
		t.Skip("no user cache dir on this platform")
	}
	assert.Equal(t, "dnos-kdev", filepath.Base(d))
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{val: "", want: true},
		{val: "1", want: true},
		{val: "true", want: true},
		{val: "0", want: false},
		{val: "false", want: false},
	}
	for _, tt := range tests {
		t.Run("KDEV_CACHE="+tt.val, func(t *testing.T) {
			t.Setenv("KDEV_CACHE", tt.val)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestKpatchDir(t *testing.T) {
	t.Setenv("KDEV_CACHE_DIR", "/var/cache/kdev")
	t.Setenv("KDEV_CACHE", "")
	assert.Equal(t, "/var/cache/kdev/kpatch-focal", KpatchDir("focal"))
	assert.Equal(t, "/var/cache/kdev/kpatch-bionic", KpatchDir("bionic"))

	t.Setenv("KDEV_CACHE", "0")
	assert.Equal(t, "", KpatchDir("focal"))
}

func TestEnsure(t *testing.T) {
	assert.NoError(t, Ensure(""))

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, Ensure(dir))
	st, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestPurge(t *testing.T) {
	base := t.TempDir()
	t.Setenv("KDEV_CACHE_DIR", base)

	oldFile := filepath.Join(base, "kpatch-focal", "old.o")
	newFile := filepath.Join(base, "kpatch-focal", "new.o")
	require.NoError(t, os.MkdirAll(filepath.Dir(oldFile), 0o755))
	require.NoError(t, os.WriteFile(oldFile, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(newFile, []byte("y"), 0o600))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	require.NoError(t, Purge(24))

	_, err := os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err), "old file should be purged")
	_, err = os.Stat(newFile)
	assert.NoError(t, err, "new file should survive")
}

func TestPurge_Disabled(t *testing.T) {
	base := t.TempDir()
	t.Setenv("KDEV_CACHE_DIR", base)
	f := filepath.Join(base, "old.o")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(f, past, past))

	require.NoError(t, Purge(0))
	_, err := os.Stat(f)
	assert.NoError(t, err)
}

func TestPurge_MissingBase(t *testing.T) {
	t.Setenv("KDEV_CACHE_DIR", filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, Purge(1))
}
