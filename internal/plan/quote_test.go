// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "build", want: "build"},
		{in: "/src/linux:/kdev/src", want: "/src/linux:/kdev/src"},
		{in: "KEY=value", want: "KEY=value"},
		{in: "", want: "''"},
		{in: "with space", want: "'with space'"},
		{in: "it's", want: `'it'\''s'`},
		{in: "$HOME", want: "'$HOME'"},
		{in: "a;b", want: "'a;b'"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}

func TestLine(t *testing.T) {
	assert.Equal(t, "docker", Line("docker"))
	assert.Equal(t, "docker build -t img '/my dir'", Line("docker", "build", "-t", "img", "/my dir"))
}
