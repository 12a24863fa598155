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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"github.com/walteh/projdup/pkg/duplicate"
	"github.com/walteh/projdup/pkg/fsutil"
	"gitlab.com/tozd/go/errors"
)

// DefaultSearchManufacturer is the manufacturer name carried by the template
const DefaultSearchManufacturer = "AcmeInc"

// ProfileNames are looked up, in order, by Discover.
var ProfileNames = []string{".projdup.hcl", ".projdup.yaml", ".projdup.yml", ".projdup.json"}

// 🔌 Parser is the interface for profile parsers
type Parser interface {
	// 📝 Parse parses a raw profile from bytes
	Parse(ctx context.Context, data []byte) (*RawProfile, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📄 RawProfile is a profile as written on disk. Nil fields keep their
// default value.
type RawProfile struct {
	SearchManufacturer *string   `json:"search_manufacturer,omitempty" yaml:"search_manufacturer,omitempty" hcl:"search_manufacturer,optional"`
	BinaryExtensions   *[]string `json:"binary_extensions,omitempty" yaml:"binary_extensions,omitempty" hcl:"binary_extensions,optional"`
	BinaryFileNames    *[]string `json:"binary_file_names,omitempty" yaml:"binary_file_names,omitempty" hcl:"binary_file_names,optional"`
	DontCopy           *[]string `json:"dont_copy,omitempty" yaml:"dont_copy,omitempty" hcl:"dont_copy,optional"`
	BundleSuffixes     *[]string `json:"bundle_suffixes,omitempty" yaml:"bundle_suffixes,omitempty" hcl:"bundle_suffixes,optional"`
	SearchFolders      *[]string `json:"search_folders,omitempty" yaml:"search_folders,omitempty" hcl:"search_folders,optional"`
}

// 📚 Profile holds the settings of a duplication run
type Profile struct {
	SearchManufacturer string
	Tables             duplicate.Tables

	location string
}

// 🏭 Default returns the built-in profile
func Default() *Profile {
	return &Profile{
		SearchManufacturer: DefaultSearchManufacturer,
		Tables:             duplicate.DefaultTables(),
	}
}

// Location returns the file the profile was loaded from, empty for the default.
func (p *Profile) Location() string {
	return p.location
}

// 🔀 Apply overlays the set fields of raw onto a copy of p
func (p *Profile) Apply(raw *RawProfile) *Profile {
	out := &Profile{
		SearchManufacturer: p.SearchManufacturer,
		Tables:             p.Tables.Clone(),
		location:           p.location,
	}
	if raw == nil {
		return out
	}

	if raw.SearchManufacturer != nil {
		out.SearchManufacturer = *raw.SearchManufacturer
	}
	overlay := func(dst *[]string, src *[]string) {
		if src != nil {
			*dst = slices.Clone(*src)
		}
	}
	overlay(&out.Tables.BinaryExtensions, raw.BinaryExtensions)
	overlay(&out.Tables.BinaryFileNames, raw.BinaryFileNames)
	overlay(&out.Tables.DontCopy, raw.DontCopy)
	overlay(&out.Tables.BundleSuffixes, raw.BundleSuffixes)
	overlay(&out.Tables.SearchFolders, raw.SearchFolders)

	return out
}

// 🔍 Validate checks if the profile is valid
func (p *Profile) Validate() error {
	if duplicate.HasWhitespace(p.SearchManufacturer) {
		return errors.Errorf("search_manufacturer %q contains whitespace", p.SearchManufacturer)
	}
	if err := p.Tables.Validate(); err != nil {
		return errors.Errorf("validating tables: %w", err)
	}
	return nil
}

// 📝 String returns a string representation of the profile
func (p *Profile) String() string {
	source := p.location
	if source == "" {
		source = "defaults"
	}
	return fmt.Sprintf("%s (manufacturer %s, %d bundle suffixes, %d search folders)",
		source, p.SearchManufacturer, len(p.Tables.BundleSuffixes), len(p.Tables.SearchFolders))
}

// 🎯 Load loads a profile from a file. An empty path returns the defaults.
func Load(ctx context.Context, path string) (*Profile, error) {
	if path == "" {
		return Default(), nil
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading profile")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading profile: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	raw, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing profile: %w", err)
	}

	profile := Default().Apply(raw)
	profile.location = path

	if err := profile.Validate(); err != nil {
		return nil, errors.Errorf("validating profile: %w", err)
	}

	return profile, nil
}

// 🔎 Discover returns the first profile file present in dir, or "" if none.
func Discover(dir string) (string, error) {
	for _, name := range ProfileNames {
		path := filepath.Join(dir, name)
		exists, err := fsutil.Exists(path)
		if err != nil {
			return "", err
		}
		if exists {
			return path, nil
		}
	}
	return "", nil
}
