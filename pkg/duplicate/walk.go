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

package duplicate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"github.com/walteh/projdup/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// errStopped signals the consumer stopped pulling entries
var errStopped = errors.Base("walk stopped by consumer")

// 🏷️ Kind is the type of a visited entry
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// 📄 Entry is a single visited entry of the walk
type Entry struct {
	// Name is the basename after any rename
	Name string
	// Path is the full path after any rename
	Path string
	Kind Kind
	// RenamedFrom is the basename before the rename, empty when unchanged
	RenamedFrom string
	// Binary is set for files excluded from substitution
	Binary bool
	// Replacements is the number of substitutions made in the file
	Replacements int
	// Descended is set for directories whose subtree was walked
	Descended bool
}

// dirAction handles a directory and reports whether to descend into it
type dirAction func(dir, name string) (Entry, bool, error)

// dirRule is one step of the ordered directory dispatch
type dirRule struct {
	name   string
	match  func(name string) bool
	action dirAction
}

// frame is a directory pending on the walk stack. entries is a snapshot
// taken before any child is processed, so renames of siblings cannot
// invalidate it.
type frame struct {
	dir     string
	entries []os.DirEntry
	next    int
	done    *Entry
}

// 🚶 walker rewrites a tree in place, one entry at a time
type walker struct {
	policy   *Policy
	replacer *text.SimpleTextReplacer
	ids      Identifiers
	rules    []text.ReplacementRule
	dirRules []dirRule
}

func newWalker(p *Policy, t Tables, ids Identifiers) *walker {
	w := &walker{
		policy:   p,
		replacer: text.NewSimpleTextReplacer(),
		ids:      ids,
		rules:    ids.Rules(),
	}
	w.dirRules = buildDirRules(w, t, ids.Project)
	return w
}

// buildDirRules returns the directory dispatch in priority order: every
// bundle suffix first, then the structural allow-list, then the fallback.
func buildDirRules(w *walker, t Tables, project Pair) []dirRule {
	rules := make([]dirRule, 0, len(t.BundleSuffixes)+2)

	for _, suffix := range t.BundleSuffixes {
		bundle := project.Search + suffix
		rules = append(rules, dirRule{
			name:   "bundle " + suffix,
			match:  func(name string) bool { return name == bundle },
			action: w.renameAndDescend(project.Replace + suffix),
		})
	}

	folders := slices.Clone(t.SearchFolders)
	rules = append(rules,
		dirRule{
			name:   "search folder",
			match:  func(name string) bool { return slices.Contains(folders, name) },
			action: w.descend,
		},
		dirRule{
			name:   "skip",
			match:  func(string) bool { return true },
			action: w.skipDir,
		},
	)

	return rules
}

func (w *walker) renameAndDescend(newName string) dirAction {
	return func(dir, name string) (Entry, bool, error) {
		path, err := renameEntry(dir, name, newName)
		if err != nil {
			return Entry{}, false, err
		}
		entry := Entry{Name: newName, Path: path, Kind: KindDir, Descended: true}
		if newName != name {
			entry.RenamedFrom = name
		}
		return entry, true, nil
	}
}

func (w *walker) descend(dir, name string) (Entry, bool, error) {
	return Entry{Name: name, Path: filepath.Join(dir, name), Kind: KindDir, Descended: true}, true, nil
}

func (w *walker) skipDir(dir, name string) (Entry, bool, error) {
	return Entry{Name: name, Path: filepath.Join(dir, name), Kind: KindDir}, false, nil
}

// 🔀 dispatchDir evaluates the directory rules top to bottom
func (w *walker) dispatchDir(ctx context.Context, dir, name string) (Entry, bool, error) {
	for _, rule := range w.dirRules {
		if !rule.match(name) {
			continue
		}
		zerolog.Ctx(ctx).Trace().Str("dir", name).Str("rule", rule.name).Msg("matched directory rule")
		return rule.action(dir, name)
	}
	return w.skipDir(dir, name)
}

// 📝 visitFile substitutes then renames a regular file
func (w *walker) visitFile(ctx context.Context, dir, name string) (Entry, error) {
	path := filepath.Join(dir, name)
	entry := Entry{Name: name, Path: path, Kind: KindFile, Binary: w.policy.IsBinary(name)}

	if !entry.Binary {
		result, err := w.replacer.ReplaceFile(ctx, path, w.rules)
		if err != nil {
			return Entry{}, errors.Errorf("substituting %s: %w", path, err)
		}
		entry.Replacements = result.ReplacementCount
	}

	newName := RenameBase(name, w.ids.Project.Search, w.ids.Project.Replace)
	if newName != name {
		newPath, err := renameEntry(dir, name, newName)
		if err != nil {
			return Entry{}, err
		}
		entry.Name, entry.Path, entry.RenamedFrom = newName, newPath, name
	}

	return entry, nil
}

func (w *walker) visit(ctx context.Context, dir string, de os.DirEntry) (Entry, bool, error) {
	name := de.Name()
	switch typ := de.Type(); {
	case typ&fs.ModeSymlink != 0:
		return Entry{Name: name, Path: filepath.Join(dir, name), Kind: KindSymlink}, false, nil
	case typ.IsDir():
		return w.dispatchDir(ctx, dir, name)
	case typ.IsRegular():
		entry, err := w.visitFile(ctx, dir, name)
		return entry, false, err
	default:
		return Entry{Name: name, Path: filepath.Join(dir, name), Kind: KindOther}, false, nil
	}
}

// 🌲 walk visits root depth first. A descended directory is yielded after
// its whole subtree. It returns errStopped when yield returns false.
func (w *walker) walk(ctx context.Context, root string, yield func(Entry) bool) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return errors.Errorf("reading directory %s: %w", root, err)
	}

	stack := []*frame{{dir: root, entries: entries}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			if top.done != nil && !yield(*top.done) {
				return errStopped
			}
			continue
		}

		de := top.entries[top.next]
		top.next++

		entry, descend, err := w.visit(ctx, top.dir, de)
		if err != nil {
			return err
		}

		if descend {
			children, err := os.ReadDir(entry.Path)
			if err != nil {
				return errors.Errorf("reading directory %s: %w", entry.Path, err)
			}
			stack = append(stack, &frame{dir: entry.Path, entries: children, done: &entry})
			continue
		}

		if !yield(entry) {
			return errStopped
		}
	}

	return nil
}
