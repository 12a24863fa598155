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
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 📋 Tables are the static inputs of a duplication run
type Tables struct {
	// BinaryExtensions are never substituted (".png", ".wav", ...)
	BinaryExtensions []string
	// BinaryFileNames are exact basenames never substituted
	BinaryFileNames []string
	// DontCopy holds exact names or glob patterns omitted from the copy
	DontCopy []string
	// BundleSuffixes are appended to the search project name to find IDE
	// bundle directories that are renamed and then descended into
	BundleSuffixes []string
	// SearchFolders are structural folders descended without renaming
	SearchFolders []string
}

// 🏭 DefaultTables returns the tables used for the iPlug2 style template
func DefaultTables() Tables {
	return Tables{
		BinaryExtensions: []string{".ico", ".icns", ".pdf", ".png", ".zip", ".exe", ".wav", ".aif", ".data", ".wasm"},
		BinaryFileNames:  []string{".DS_Store", "mkcert"},
		DontCopy: []string{
			".vs", "*.exe", "*.dmg", "*.pkg", "*.mpkg", "*.svn", "*.ncb", "*.suo", "*sdf",
			"ipch", "*.layout", "*.depend", ".DS_Store", "xcuserdata", "*.aps",
		},
		BundleSuffixes: []string{"-macOS.xcodeproj", "-iOS.xcodeproj", ".xcworkspace", "-iOS.appiconset", "-macOS.appiconset"},
		SearchFolders: []string{
			"projects", "config", "resources", "installer", "scripts", "manual",
			"xcschemes", "xcshareddata", "xcuserdata", "en-osx.lproj",
			"project.xcworkspace", "Images.xcassets", "build-web",
		},
	}
}

// Clone returns a deep copy so callers cannot mutate a running duplicator.
func (t Tables) Clone() Tables {
	return Tables{
		BinaryExtensions: slices.Clone(t.BinaryExtensions),
		BinaryFileNames:  slices.Clone(t.BinaryFileNames),
		DontCopy:         slices.Clone(t.DontCopy),
		BundleSuffixes:   slices.Clone(t.BundleSuffixes),
		SearchFolders:    slices.Clone(t.SearchFolders),
	}
}

// ✅ Validate checks every do-not-copy pattern compiles
func (t Tables) Validate() error {
	for _, pattern := range t.DontCopy {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid do-not-copy pattern %q", pattern)
		}
	}
	for _, suffix := range t.BundleSuffixes {
		if suffix == "" {
			return errors.Errorf("bundle suffix must not be empty")
		}
	}
	return nil
}

// 🛡️ Policy decides what is copied and what is treated as binary
type Policy struct {
	binaryExt   map[string]struct{}
	binaryNames map[string]struct{}
	dontCopy    []string
}

// 🏭 NewPolicy builds a policy from the given tables
func NewPolicy(t Tables) (*Policy, error) {
	if err := t.Validate(); err != nil {
		return nil, errors.Errorf("validating tables: %w", err)
	}

	p := &Policy{
		binaryExt:   make(map[string]struct{}, len(t.BinaryExtensions)),
		binaryNames: make(map[string]struct{}, len(t.BinaryFileNames)),
		dontCopy:    slices.Clone(t.DontCopy),
	}
	for _, ext := range t.BinaryExtensions {
		p.binaryExt[ext] = struct{}{}
	}
	for _, name := range t.BinaryFileNames {
		p.binaryNames[name] = struct{}{}
	}
	return p, nil
}

// 🔍 ShouldCopy reports false when the basename of path matches a
// do-not-copy entry, exactly or as a glob
func (p *Policy) ShouldCopy(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range p.dontCopy {
		if pattern == base {
			return false
		}
		// patterns were validated in NewPolicy
		if matched, _ := doublestar.Match(pattern, base); matched {
			return false
		}
	}
	return true
}

// 🧱 IsBinary reports whether content substitution must be skipped for name
func (p *Policy) IsBinary(name string) bool {
	base := filepath.Base(name)
	if _, ok := p.binaryNames[base]; ok {
		return true
	}
	_, ok := p.binaryExt[filepath.Ext(base)]
	return ok
}
