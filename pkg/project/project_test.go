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

package project

import (
	"bytes"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/projdup/pkg/config"
	"github.com/walteh/projdup/pkg/duplicate"
	"github.com/walteh/projdup/pkg/log"
	"github.com/walteh/projdup/pkg/plugconfig"
	"github.com/walteh/projdup/pkg/testutils"
	"github.com/walteh/projdup/pkg/uniqueid"
	"gitlab.com/tozd/go/errors"
)

const fooConfig = `#define PLUG_NAME "Foo"
#define PLUG_MFR "Acme"
#define PLUG_VERSION_HEX 0x00010000
#define PLUG_VERSION_STR "1.0.0"
#define PLUG_UNIQUE_ID 'Ipef'
#define BUNDLE_NAME "Foo"
#define PLUG_CHANNEL_IO "1-1 2-2"
`

func seededGenerator() *uniqueid.Generator {
	return uniqueid.New(rand.New(rand.NewPCG(7, 11)))
}

func baseOptions(workDir string) Options {
	return Options{
		WorkDir:            workDir,
		InputName:          "Foo",
		OutputName:         "Bar",
		Manufacturer:       "Zed",
		SearchManufacturer: "Acme",
		Tables:             duplicate.DefaultTables(),
		IDGen:              seededGenerator(),
	}
}

func TestDuplicate_RepositoryScenario(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx := testutils.Context(t)
	repo := t.TempDir()

	testutils.WriteTree(t, repo, map[string]string{
		"Foo/config.h":                          fooConfig,
		"Foo/Foo.cpp":                           "#include \"Foo.h\"\n// Acme\n",
		"Foo/config/Foo-mac.xcconfig":           "IPLUG2_ROOT = ../..\n",
		"Foo/projects/Foo-macOS.xcodeproj/a.pb": "Foo.app\n",
		"Foo/resources/logo.png":                "Foo",
		"README.md":                             "Foo by Acme\n",
		"Foo.code-workspace":                    "{\"folders\": [\"Foo\"]}\n",
		".github/workflows/build.yml":           "project: Foo\n",
		".vscode/launch.json":                   "{\"program\": \"Foo\"}\n",
		".vscode/nested/skip.json":              "Foo\n",
	})

	console := &bytes.Buffer{}
	opts := baseOptions(repo)
	opts.Logger = log.New(console, *zerolog.Ctx(ctx))

	result, err := Duplicate(ctx, opts)
	require.NoError(t, err)

	out := filepath.Join(repo, "Bar")
	assert.Equal(t, out, result.OutputPath)
	assert.Equal(t, duplicate.Pair{}, result.Root, "no framework root change without an output base")

	// new project
	assert.Equal(t, "#include \"Bar.h\"\n// Zed\n", testutils.ReadFile(t, filepath.Join(out, "Bar.cpp")))
	assert.Equal(t, "IPLUG2_ROOT = ../..\n", testutils.ReadFile(t, filepath.Join(out, "config", "Bar-mac.xcconfig")))
	assert.Equal(t, "Bar.app\n", testutils.ReadFile(t, filepath.Join(out, "projects", "Bar-macOS.xcodeproj", "a.pb")))
	assert.Equal(t, "Foo", testutils.ReadFile(t, filepath.Join(out, "resources", "logo.png")), "binary files are never substituted")

	// template untouched
	assert.Equal(t, fooConfig, testutils.ReadFile(t, filepath.Join(repo, "Foo", "config.h")))
	assert.FileExists(t, filepath.Join(repo, "Foo", "Foo.cpp"))

	// repository folders
	assert.Equal(t, "Bar by Zed\n", testutils.ReadFile(t, filepath.Join(repo, "README.md")))
	assert.Equal(t, "{\"folders\": [\"Bar\"]}\n", testutils.ReadFile(t, filepath.Join(repo, "Bar.code-workspace")))
	assert.NoFileExists(t, filepath.Join(repo, "Foo.code-workspace"))
	assert.Equal(t, "project: Bar\n", testutils.ReadFile(t, filepath.Join(repo, ".github", "workflows", "build.yml")))
	assert.Equal(t, "{\"program\": \"Bar\"}\n", testutils.ReadFile(t, filepath.Join(repo, ".vscode", "launch.json")))
	assert.Equal(t, "Foo\n", testutils.ReadFile(t, filepath.Join(repo, ".vscode", "nested", "skip.json")), "only search folders are descended")

	// unique id
	want := seededGenerator().Generate()
	assert.Equal(t, want, result.UniqueID)
	assert.Len(t, result.UniqueID, uniqueid.Length)
	assert.Contains(t, testutils.ReadFile(t, filepath.Join(out, "config.h")), "#define PLUG_UNIQUE_ID '"+want+"'\n")
	assert.Contains(t, testutils.ReadFile(t, filepath.Join(out, "config.h")), "#define PLUG_NAME \"Bar\"\n")

	id, ok := result.Config.String(plugconfig.KeyUniqueID)
	require.True(t, ok)
	assert.Equal(t, want, id)
	name, _ := result.Config.String("PLUG_NAME")
	assert.Equal(t, "Bar", name)
	assert.Equal(t, 0x00010000, result.Config[plugconfig.KeyVersionInt])

	assert.Positive(t, result.Entries)
	assert.Contains(t, console.String(), "[duplicating "+out+"]")
	assert.Contains(t, console.String(), "[rewriting "+filepath.Join(repo, ".vscode")+"]")
}

func TestDuplicate_MissingRepositoryFoldersAreSkipped(t *testing.T) {
	ctx := testutils.Context(t)
	repo := t.TempDir()

	testutils.WriteTree(t, repo, map[string]string{
		"Foo/config.h": fooConfig,
	})

	result, err := Duplicate(ctx, baseOptions(repo))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(result.OutputPath, "config.h"))
	assert.NoDirExists(t, filepath.Join(repo, ".vscode"))
}

func TestDuplicate_OutputBaseRecomputesFrameworkRoot(t *testing.T) {
	ctx := testutils.Context(t)
	tmp := t.TempDir()

	framework := filepath.Join(tmp, "iPlug2")
	examples := filepath.Join(framework, "Examples")
	plugins := filepath.Join(tmp, "plugins")
	require.NoError(t, os.MkdirAll(plugins, 0o755))

	testutils.WriteTree(t, examples, map[string]string{
		"Foo/config.h":                fooConfig,
		"Foo/config/Foo-mac.xcconfig": "// paths\nIPLUG2_ROOT = ../../.. // framework\n",
		"Foo/config/Foo-win.props":    "<IPLUG2_ROOT>../../..</IPLUG2_ROOT>\n",
	})

	opts := baseOptions(examples)
	opts.OutputBase = plugins
	opts.RepoRoot = framework

	result, err := Duplicate(ctx, opts)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(plugins, "Bar"), result.OutputPath)
	assert.Equal(t, duplicate.Pair{Search: "../../..", Replace: "../../../iPlug2"}, result.Root)

	cfgDir := filepath.Join(plugins, "Bar", "config")
	assert.Equal(t, "// paths\nIPLUG2_ROOT = ../../../iPlug2 // framework\n", testutils.ReadFile(t, filepath.Join(cfgDir, "Bar-mac.xcconfig")))
	assert.Equal(t, "<IPLUG2_ROOT>../../../iPlug2</IPLUG2_ROOT>\n", testutils.ReadFile(t, filepath.Join(cfgDir, "Bar-win.props")))
	assert.NoDirExists(t, filepath.Join(examples, "Bar"))
}

func TestDuplicate_FrameworkRootThroughSpacedDirectory(t *testing.T) {
	ctx := testutils.Context(t)
	tmp := t.TempDir()

	repo := filepath.Join(tmp, "My Plugins", "repo")
	out := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(out, 0o755))

	testutils.WriteTree(t, repo, map[string]string{
		"Foo/config.h":                fooConfig,
		"Foo/config/Foo-mac.xcconfig": "IPLUG2_ROOT = ../../iPlug2\n",
		"Foo/config/Foo-win.props":    "<IPLUG2_ROOT>..\\..\\iPlug2</IPLUG2_ROOT>\n",
	})

	opts := baseOptions(repo)
	opts.OutputBase = out

	result, err := Duplicate(ctx, opts)
	require.NoError(t, err)

	newRoot := "../../../My Plugins/repo/iPlug2"
	assert.Equal(t, duplicate.Pair{Search: "../../iPlug2", Replace: newRoot}, result.Root)

	cfgDir := filepath.Join(out, "Bar", "config")
	assert.Equal(t, "IPLUG2_ROOT = "+newRoot+"\n", testutils.ReadFile(t, filepath.Join(cfgDir, "Bar-mac.xcconfig")))
	assert.Equal(t, `<IPLUG2_ROOT>..\..\..\My Plugins\repo\iPlug2</IPLUG2_ROOT>`+"\n", testutils.ReadFile(t, filepath.Join(cfgDir, "Bar-win.props")))
}

func TestRootPair(t *testing.T) {
	tests := []struct {
		name      string
		xcconfig  string
		outputRel string
		want      duplicate.Pair
		wantError bool
	}{
		{
			name:      "sibling_output",
			xcconfig:  "IPLUG2_ROOT = ../../..\n",
			outputRel: "Bar",
			want:      duplicate.Pair{Search: "../../..", Replace: "../../.."},
		},
		{
			name:      "deeper_output",
			xcconfig:  "IPLUG2_ROOT = ../../..\n",
			outputRel: "deeper/Bar",
			want:      duplicate.Pair{Search: "../../..", Replace: "../../../.."},
		},
		{
			name:      "missing_key",
			xcconfig:  "OTHER = 1\n",
			outputRel: "Bar",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// <tmp>/fw/a/b/Foo/config/Foo-mac.xcconfig with the framework at <tmp>/fw/a
			tmp := t.TempDir()
			input := filepath.Join(tmp, "fw", "a", "b", "Foo")
			testutils.WriteTree(t, input, map[string]string{"config/Foo-mac.xcconfig": tt.xcconfig})

			got, err := RootPair(input, "Foo", filepath.Join(tmp, "fw", "a", "b", filepath.FromSlash(tt.outputRel)))
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrPrecondition), "error should be a precondition failure")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDuplicate_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, repo string, opts *Options)
		wantErr error
	}{
		{
			name:    "missing_manufacturer",
			setup:   func(t *testing.T, repo string, opts *Options) { opts.Manufacturer = "" },
			wantErr: ErrUsage,
		},
		{
			name:    "space_in_output_name",
			setup:   func(t *testing.T, repo string, opts *Options) { opts.OutputName = "Bar Baz" },
			wantErr: ErrPrecondition,
		},
		{
			name:    "space_in_manufacturer",
			setup:   func(t *testing.T, repo string, opts *Options) { opts.Manufacturer = "Zed\tInc" },
			wantErr: ErrPrecondition,
		},
		{
			name:    "missing_input",
			setup:   func(t *testing.T, repo string, opts *Options) { opts.InputName = "Nope" },
			wantErr: ErrPrecondition,
		},
		{
			name:    "missing_output_base",
			setup:   func(t *testing.T, repo string, opts *Options) { opts.OutputBase = filepath.Join(repo, "nowhere") },
			wantErr: ErrPrecondition,
		},
		{
			name: "output_base_without_xcconfig",
			setup: func(t *testing.T, repo string, opts *Options) {
				opts.OutputBase = t.TempDir()
			},
			wantErr: ErrPrecondition,
		},
		{
			name: "output_exists",
			setup: func(t *testing.T, repo string, opts *Options) {
				testutils.WriteTree(t, repo, map[string]string{"Bar/keep.txt": "Foo"})
			},
			wantErr: ErrPrecondition,
		},
		{
			name: "output_exists_as_file",
			setup: func(t *testing.T, repo string, opts *Options) {
				testutils.WriteTree(t, repo, map[string]string{"Bar": "Foo"})
			},
			wantErr: ErrPrecondition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutils.Context(t)
			repo := t.TempDir()
			testutils.WriteTree(t, repo, map[string]string{
				"Foo/config.h": fooConfig,
				"README.md":    "Foo\n",
			})

			opts := baseOptions(repo)
			tt.setup(t, repo, &opts)

			before := map[string]string{}
			for _, p := range []string{"README.md", "Bar/keep.txt", "Bar"} {
				if b, err := os.ReadFile(filepath.Join(repo, p)); err == nil {
					before[p] = string(b)
				}
			}

			_, err := Duplicate(ctx, opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			assert.Equal(t, "Foo\n", testutils.ReadFile(t, filepath.Join(repo, "README.md")), "nothing is rewritten when a check fails")
			for p, content := range before {
				assert.Equal(t, content, testutils.ReadFile(t, filepath.Join(repo, p)))
			}
		})
	}
}

func TestDuplicate_TrimsTrailingSeparators(t *testing.T) {
	ctx := testutils.Context(t)
	repo := t.TempDir()
	testutils.WriteTree(t, repo, map[string]string{"Foo/config.h": fooConfig})

	opts := baseOptions(repo)
	opts.InputName = "Foo/"
	opts.OutputName = "Bar/"

	result, err := Duplicate(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo, "Bar"), result.OutputPath)
}

func TestDuplicate_MissingUniqueID(t *testing.T) {
	ctx := testutils.Context(t)
	repo := t.TempDir()
	testutils.WriteTree(t, repo, map[string]string{"Foo/config.h": "#define PLUG_NAME \"Foo\"\n"})

	_, err := Duplicate(ctx, baseOptions(repo))
	require.Error(t, err)
	assert.Contains(t, err.Error(), plugconfig.KeyUniqueID)
}

func TestOptionsFromProfile(t *testing.T) {
	p := config.Default()
	p.SearchManufacturer = "TemplateCo"

	opts := OptionsFromProfile(Options{}, p)
	assert.Equal(t, "TemplateCo", opts.SearchManufacturer)
	assert.Equal(t, p.Tables, opts.Tables)

	opts.Tables.DontCopy[0] = "changed"
	assert.NotEqual(t, "changed", p.Tables.DontCopy[0], "tables are cloned")

	explicit := OptionsFromProfile(Options{SearchManufacturer: "Acme"}, p)
	assert.Equal(t, "Acme", explicit.SearchManufacturer, "an explicit search manufacturer wins")
}
