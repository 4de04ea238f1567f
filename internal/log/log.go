// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"golang.org/x/term"
)

// InitLogger sets up Apex with a custom handler on stderr and a log level from
// the KDEV_LOG env variable. stdout is left alone because the container
// runtime streams its own output there.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("KDEV_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(NewHandler(os.Stderr, term.IsTerminal(int(os.Stderr.Fd()))))

	l, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		l = log.ErrorLevel
	}
	log.SetLevel(l)
}

// SetVerbose raises the level to DEBUG.
func SetVerbose() {
	log.SetLevel(log.DebugLevel)
}

var levelColors = map[log.Level]string{
	log.DebugLevel: "#7f7f7f",
	log.InfoLevel:  "#00c8f0",
	log.WarnLevel:  "#f6be00",
	log.ErrorLevel: "#ff5f5f",
	log.FatalLevel: "#ff5f5f",
}

// CustomHandler formats log messages as "<time> <L> <message> k=v ...".
type CustomHandler struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
	now   func() time.Time
}

// NewHandler returns a handler writing to w. Level letters are colored when
// color is true.
func NewHandler(w io.Writer, color bool) *CustomHandler {
	return &CustomHandler{w: w, color: color, now: time.Now}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := h.now().Format("2006-01-02 15:04:05")
	level := fmt.Sprintf("%.1s", strings.ToUpper(e.Level.String()))
	if h.color {
		level = lipgloss.NewStyle().Foreground(lipgloss.Color(levelColors[e.Level])).Render(level)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", timestamp, level, e.Message)

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields[name])
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}
