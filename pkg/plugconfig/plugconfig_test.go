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

package plugconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `#define PLUG_NAME "TemplateProject"
#define PLUG_MFR "AcmeInc"
#define PLUG_VERSION_HEX 0x00010203
#define PLUG_VERSION_STR "1.2.3"
#define PLUG_UNIQUE_ID '9c0G'
#define PLUG_CLASS_NAME TemplateProject
#define PLUG_SHARED_RESOURCES 1
#define PLUG_LATENCY 0
#define PLUG_HAS_UI true
#define NO_VALUE
#define SHARED_RESOURCES_SUBPATH "TemplateProject"
#define AAX_PLUG_NAME_STR "TemplateProject\nIPEF"
#define VST3_SUBCATEGORY "Instrument|Effect"
#ifndef NOT_A_DEFINE
#defineX broken
#endif
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
	return dir
}

func TestParse(t *testing.T) {
	cfg, err := Parse(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	tests := []struct {
		key  string
		want any
	}{
		{key: "PLUG_NAME", want: "TemplateProject"},
		{key: "PLUG_MFR", want: "AcmeInc"},
		{key: KeyVersionHex, want: "0x00010203"},
		{key: KeyVersionStr, want: "1.2.3"},
		{key: KeyFullVersionStr, want: "1.2.3"},
		{key: KeyVersionInt, want: 0x00010203},
		{key: KeyUniqueID, want: "9c0G"},
		{key: "PLUG_CLASS_NAME", want: "TemplateProject"},
		{key: KeySharedResources, want: 1},
		{key: "PLUG_LATENCY", want: 0},
		{key: "PLUG_HAS_UI", want: true},
		{key: "NO_VALUE", want: true},
		{key: "AAX_PLUG_NAME_STR", want: `TemplateProject\nIPEF`},
		{key: "VST3_SUBCATEGORY", want: "Instrument|Effect"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg[tt.key])
		})
	}

	assert.NotContains(t, cfg, "NOT_A_DEFINE")
	assert.NotContains(t, cfg, "broken")
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening")

	_, err = Parse(writeConfig(t, "#define PLUG_VERSION_HEX nothex\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing PLUG_VERSION_HEX")
}

func TestConfig_Accessors(t *testing.T) {
	cfg := Config{
		"S":     "text",
		"I":     3,
		"ZERO":  0,
		"B":     true,
		"SBOOL": "true",
	}

	s, ok := cfg.String("I")
	assert.True(t, ok)
	assert.Equal(t, "3", s)

	_, ok = cfg.String("MISSING")
	assert.False(t, ok)

	n, ok := cfg.Int("I")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = cfg.Int("S")
	assert.False(t, ok)

	assert.True(t, cfg.Bool("I"))
	assert.False(t, cfg.Bool("ZERO"))
	assert.True(t, cfg.Bool("B"))
	assert.True(t, cfg.Bool("SBOOL"))
	assert.False(t, cfg.Bool("S"))
	assert.False(t, cfg.Bool("MISSING"))

	assert.Equal(t, []string{"B", "I", "S", "SBOOL", "ZERO"}, cfg.Keys())
}

func TestParseXCConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TemplateProject-mac.xcconfig")
	content := `// comment line
#include "../../iPlug2/common-mac.xcconfig"

IPLUG2_ROOT = ../../iPlug2
BINARY_NAME = TemplateProject // trailing comment
EMPTY =
not a setting
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	values, err := ParseXCConfig(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		KeyFrameworkRoot: "../../iPlug2",
		"BINARY_NAME":    "TemplateProject",
		"EMPTY":          "",
	}, values)

	_, err = ParseXCConfig(filepath.Join(t.TempDir(), "missing.xcconfig"))
	require.Error(t, err)
}

func TestSetUniqueID(t *testing.T) {
	dir := writeConfig(t, sampleConfig)

	require.NoError(t, SetUniqueID(context.Background(), dir, "AbC1"))

	cfg, err := Parse(dir)
	require.NoError(t, err)
	assert.Equal(t, "AbC1", cfg[KeyUniqueID])
	assert.Equal(t, "TemplateProject", cfg["PLUG_NAME"], "other defines are untouched")

	err = SetUniqueID(context.Background(), writeConfig(t, "#define PLUG_NAME \"x\"\n"), "AbC1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLUG_UNIQUE_ID not defined")
}
