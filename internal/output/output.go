// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Formats are the accepted values of --format.
var Formats = []string{"text", "json", "yaml"}

// Module is one kernel module found in the output directory.
type Module struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modified" yaml:"modified"`
}

// FindModules returns the *.ko files directly inside dir, sorted by name. A
// missing dir yields no modules and no error.
func FindModules(dir string) ([]Module, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.ko"))
	if err != nil {
		return nil, fmt.Errorf("failed to list modules in %s: %w", dir, err)
	}

	modules := make([]Module, 0, len(matches))
	for _, m := range matches {
		st, err := os.Stat(m)
		if err != nil || st.IsDir() {
			continue
		}
		modules = append(modules, Module{
			Name:    filepath.Base(m),
			Path:    m,
			Size:    st.Size(),
			ModTime: st.ModTime(),
		})
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	log.Debugf("found %d modules in %s", len(modules), dir)
	return modules, nil
}

// Emit writes modules to w in the requested format.
func Emit(w io.Writer, modules []Module, format string, color bool) error {
	switch format {
	case "", "text":
		return TableWriter(w, modules, color)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(modules)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(modules); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q: must be one of %v", format, Formats)
	}
}

// TableWriter renders modules as a borderless table with humanized sizes.
func TableWriter(w io.Writer, modules []Module, color bool) error {
	if len(modules) == 0 {
		_, err := fmt.Fprintln(w, "no livepatch modules produced")
		return err
	}

	var (
		headerStyle = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle   = lipgloss.NewStyle().Align(lipgloss.Left)
	)
	if color {
		headerStyle = headerStyle.Foreground(lipgloss.Color("#f6be00"))
	}

	var rows [][]string
	for _, m := range modules {
		rows = append(rows, []string{
			m.Name,
			humanize.Bytes(uint64(m.Size)),
			m.ModTime.Format(time.DateTime),
			m.Path,
		})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == table.HeaderRow {
				style = headerStyle
			}
			if col > 0 {
				style = style.PaddingLeft(1)
			}
			return style
		}).
		Headers("MODULE", "SIZE", "BUILT", "PATH").
		BorderHeader(false).
		Rows(rows...)

	_, err := fmt.Fprintln(w, t)
	return err
}
