// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	entryIndent = 4  // spaces to indent entries
	nameWidth   = 35 // Base width for the entry path
	kindWidth   = 8  // Width for entry kind
	statusWidth = 24 // Width for status text
)

// 🎯 EntryOperation is one visited entry of a duplication walk
type EntryOperation struct {
	Path         string // Path relative to the walk root
	Kind         string // file, dir, symlink or other
	RenamedFrom  string // Previous basename, empty when not renamed
	Binary       bool   // Whether substitution was skipped
	Replacements int    // Number of substitutions made
}

// 📦 WalkOperation is one duplication or in-place rewrite
type WalkOperation struct {
	Name    string // What is walked ("project", ".vscode", ...)
	Root    string // Root directory
	InPlace bool   // Whether the tree is rewritten in place
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *WalkOperation
	entries   []EntryOperation
}

// 🏭 New creates a new logger writing user-facing lines to console and
// structured events to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatEntry formats an entry for display
func (l *Logger) formatEntry(op EntryOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	var status string
	switch {
	case op.RenamedFrom != "":
		symbol = '⟳'
		symbolColor = color.FgBlue
		status = "renamed from " + op.RenamedFrom
	case op.Replacements > 0:
		symbol = '✓'
		symbolColor = color.FgGreen
		status = fmt.Sprintf("%d replacements", op.Replacements)
	case op.Binary:
		symbol = '•'
		symbolColor = color.FgCyan
		status = "binary"
	default:
		symbol = '-'
		symbolColor = color.FgYellow
		status = "unchanged"
	}

	var kindColor color.Attribute
	switch op.Kind {
	case "dir":
		kindColor = color.FgMagenta
	case "file":
		kindColor = color.FgBlue
	default:
		kindColor = color.FgYellow
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", entryIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Kind)),
		fmt.Sprintf("%-*s", statusWidth, status))
}

// 📝 LogEntry logs a visited entry
func (l *Logger) LogEntry(ctx context.Context, op EntryOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, op)

	fmt.Fprintln(l.console, l.formatEntry(op))

	l.zlog.Debug().
		Str("path", op.Path).
		Str("kind", op.Kind).
		Str("renamed_from", op.RenamedFrom).
		Bool("binary", op.Binary).
		Int("replacements", op.Replacements).
		Msg("entry")
}

// 📝 StartWalk starts a new walk
func (l *Logger) StartWalk(ctx context.Context, op WalkOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.entries = nil

	verb := "duplicating"
	if op.InPlace {
		verb = "rewriting"
	}
	fmt.Fprintf(l.console, "[%s %s]\n", verb, color.New(color.FgCyan).Sprint(op.Root))

	fmt.Fprintf(l.console, "%s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Name))

	l.zlog.Info().
		Str("name", op.Name).
		Str("root", op.Root).
		Bool("in_place", op.InPlace).
		Msg("starting walk")
}

// 📝 EndWalk ends the current walk and prints its summary
func (l *Logger) EndWalk(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	renamed, substituted := 0, 0
	for _, e := range l.entries {
		if e.RenamedFrom != "" {
			renamed++
		}
		if e.Replacements > 0 {
			substituted++
		}
	}

	fmt.Fprintf(l.console, "%s%s\n",
		fmt.Sprintf("%*s", entryIndent, ""),
		color.New(color.Faint).Sprintf("%d entries • %d renamed • %d substituted", len(l.entries), renamed, substituted))

	l.zlog.Info().
		Str("name", l.currentOp.Name).
		Int("entries", len(l.entries)).
		Int("renamed", renamed).
		Int("substituted", substituted).
		Msg("walk complete")

	l.currentOp = nil
	l.entries = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("projdup")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
