package text

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/projdup/pkg/fsutil"
	"gitlab.com/tozd/go/errors"
)

var _ TextReplacer = (*SimpleTextReplacer)(nil)

// SimpleTextReplacer implements TextReplacer using literal string replacement
type SimpleTextReplacer struct{}

// NewSimpleTextReplacer creates a new SimpleTextReplacer
func NewSimpleTextReplacer() *SimpleTextReplacer {
	return &SimpleTextReplacer{}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *SimpleTextReplacer) ReplaceText(ctx context.Context, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
	}

	if len(originalContent) == 0 {
		return result, nil
	}

	// SplitAfter keeps the line endings so joining restores the layout exactly
	lines := strings.SplitAfter(string(originalContent), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	result.LineCount = len(lines)

	for i, line := range lines {
		for _, rule := range rules {
			// Skip empty rules
			if rule.FromText == "" {
				continue
			}

			if n := strings.Count(line, rule.FromText); n > 0 {
				line = strings.ReplaceAll(line, rule.FromText, rule.ToText)
				result.ReplacementCount += n
			}
		}
		lines[i] = line
	}

	if result.ReplacementCount > 0 {
		result.WasModified = true
		result.ModifiedContent = []byte(strings.Join(lines, ""))
	}

	return result, nil
}

// ReplaceFile implements TextReplacer.ReplaceFile. The file is only rewritten
// when at least one replacement happened.
func (r *SimpleTextReplacer) ReplaceFile(ctx context.Context, path string, rules []ReplacementRule) (*ReplacementResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	result, err := r.ReplaceText(ctx, f, rules)
	if err != nil {
		return nil, errors.Errorf("replacing text in %s: %w", path, err)
	}

	if !result.WasModified {
		return result, nil
	}

	if err := fsutil.WriteFileAtomic(path, result.ModifiedContent, 0o644); err != nil {
		return nil, errors.Errorf("rewriting %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Trace().
		Str("path", path).
		Int("replacements", result.ReplacementCount).
		Msg("rewrote file")

	return result, nil
}

// ReplaceLinePrefix replaces every line of the file at path that starts with
// prefix by line. It returns the number of lines replaced; the file is left
// untouched when nothing matched.
func (r *SimpleTextReplacer) ReplaceLinePrefix(ctx context.Context, path, prefix, line string) (int, error) {
	if prefix == "" {
		return 0, errors.Errorf("prefix is required")
	}
	return r.replaceLines(ctx, path, func(l string) bool { return strings.HasPrefix(l, prefix) }, line)
}

// ReplaceLineContaining is ReplaceLinePrefix for lines containing substr
// anywhere.
func (r *SimpleTextReplacer) ReplaceLineContaining(ctx context.Context, path, substr, line string) (int, error) {
	if substr == "" {
		return 0, errors.Errorf("substring is required")
	}
	return r.replaceLines(ctx, path, func(l string) bool { return strings.Contains(l, substr) }, line)
}

func (r *SimpleTextReplacer) replaceLines(ctx context.Context, path string, match func(string) bool, line string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Errorf("reading %s: %w", path, err)
	}

	lines := strings.SplitAfter(string(content), "\n")
	count := 0
	for i, l := range lines {
		if l == "" || !match(l) {
			continue
		}
		ending := ""
		if strings.HasSuffix(l, "\r\n") {
			ending = "\r\n"
		} else if strings.HasSuffix(l, "\n") {
			ending = "\n"
		}
		lines[i] = line + ending
		count++
	}

	if count == 0 {
		return 0, nil
	}

	if err := fsutil.WriteFileAtomic(path, []byte(strings.Join(lines, "")), 0o644); err != nil {
		return 0, errors.Errorf("rewriting %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Trace().Str("path", path).Int("lines", count).Msg("replaced lines")

	return count, nil
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *SimpleTextReplacer) ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.FromText == "" {
			return errors.Errorf("rule %d: from_text is required", i)
		}
	}
	return nil
}
