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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/projdup/pkg/duplicate"
)

func TestLoad(t *testing.T) {
	defaults := duplicate.DefaultTables()

	tests := []struct {
		name        string
		filename    string
		config      string
		errContains string
		check       func(t *testing.T, p *Profile)
	}{
		{
			name:     "yaml_overrides",
			filename: ".projdup.yaml",
			config: `
search_manufacturer: TemplateCo
search_folders:
  - config
  - resources
binary_extensions: []
`,
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, "TemplateCo", p.SearchManufacturer, "manufacturer should match")
				assert.Equal(t, []string{"config", "resources"}, p.Tables.SearchFolders, "search folders should be replaced")
				assert.Empty(t, p.Tables.BinaryExtensions, "explicit empty list should clear the table")
				assert.Equal(t, defaults.DontCopy, p.Tables.DontCopy, "unset fields keep defaults")
				assert.Equal(t, defaults.BundleSuffixes, p.Tables.BundleSuffixes, "unset fields keep defaults")
			},
		},
		{
			name:     "empty_yaml_is_defaults",
			filename: ".projdup.yml",
			config:   "",
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, DefaultSearchManufacturer, p.SearchManufacturer)
				assert.Equal(t, defaults, p.Tables)
			},
		},
		{
			name:     "json_overrides",
			filename: ".projdup.json",
			config:   `{"bundle_suffixes": ["-macOS.xcodeproj"], "dont_copy": ["*.log"]}`,
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, []string{"-macOS.xcodeproj"}, p.Tables.BundleSuffixes)
				assert.Equal(t, []string{"*.log"}, p.Tables.DontCopy)
				assert.Equal(t, DefaultSearchManufacturer, p.SearchManufacturer)
			},
		},
		{
			name:     "hcl_with_defaults_and_concat",
			filename: ".projdup.hcl",
			config: `
search_manufacturer = "Acme"
dont_copy           = concat(default.dont_copy, ["*.log", "build-*"])
binary_file_names   = ["mkcert"]
`,
			check: func(t *testing.T, p *Profile) {
				assert.Equal(t, "Acme", p.SearchManufacturer)
				assert.Equal(t, append(append([]string{}, defaults.DontCopy...), "*.log", "build-*"), p.Tables.DontCopy)
				assert.Equal(t, []string{"mkcert"}, p.Tables.BinaryFileNames)
				assert.Equal(t, defaults.SearchFolders, p.Tables.SearchFolders)
			},
		},
		{
			name:        "yaml_unknown_field",
			filename:    ".projdup.yaml",
			config:      "unknown_field: true\n",
			errContains: "parsing YAML",
		},
		{
			name:        "json_unknown_field",
			filename:    ".projdup.json",
			config:      `{"destination": "/tmp"}`,
			errContains: "parsing JSON",
		},
		{
			name:        "hcl_unknown_attribute",
			filename:    ".projdup.hcl",
			config:      `destination = "/tmp"`,
			errContains: "decoding HCL",
		},
		{
			name:        "hcl_syntax_error",
			filename:    ".projdup.hcl",
			config:      `dont_copy = [`,
			errContains: "parsing HCL",
		},
		{
			name:        "invalid_glob",
			filename:    ".projdup.yaml",
			config:      "dont_copy: ['[oops']\n",
			errContains: "invalid do-not-copy pattern",
		},
		{
			name:        "whitespace_manufacturer",
			filename:    ".projdup.json",
			config:      `{"search_manufacturer": "Acme Inc"}`,
			errContains: "contains whitespace",
		},
		{
			name:        "unsupported_extension",
			filename:    "profile.toml",
			config:      "x = 1",
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := zerolog.New(zerolog.NewTestWriter(t))
			ctx := logger.WithContext(context.Background())

			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o644))

			p, err := Load(ctx, path)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, path, p.Location())
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestLoad_EmptyPathAndMissingFile(t *testing.T) {
	p, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
	assert.Contains(t, p.String(), "defaults")

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), ".projdup.hcl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading profile")
}

func TestProfile_ApplyDoesNotAlias(t *testing.T) {
	base := Default()
	folders := []string{"config"}

	out := base.Apply(&RawProfile{SearchFolders: &folders})
	folders[0] = "mutated"
	out.Tables.BinaryExtensions[0] = ".changed"

	assert.Equal(t, []string{"config"}, out.Tables.SearchFolders)
	assert.Equal(t, ".ico", base.Tables.BinaryExtensions[0])
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	path, err := Discover(dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".projdup.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".projdup.hcl"), nil, 0o644))

	path, err = Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".projdup.hcl"), path, "hcl wins over json")
}
