// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package plan

import "strings"

// Line renders name and args as a single shell-safe command line.
func Line(name string, args ...string) string {
	if len(args) == 0 {
		return Quote(name)
	}
	return Quote(name) + " " + QuoteArgs(args)
}

// QuoteArgs returns a printable, shell-safe representation of args.
func QuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}

// Quote single-quotes a when it is empty or contains shell metacharacters.
func Quote(a string) string {
	if a == "" || strings.ContainsAny(a, " \t\n\"'`$\\*?[]{}()<>|&;#~!") {
		return "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return a
}
