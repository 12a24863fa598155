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

// Package plugconfig reads and updates a plugin project's config.h and
// xcconfig files.
package plugconfig

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/walteh/projdup/pkg/text"
	"gitlab.com/tozd/go/errors"
)

const (
	// FileName is the project configuration header
	FileName = "config.h"

	KeyUniqueID         = "PLUG_UNIQUE_ID"
	KeyVersionStr       = "PLUG_VERSION_STR"
	KeyVersionHex       = "PLUG_VERSION_HEX"
	KeyFullVersionStr   = "FULL_VER_STR"
	KeyVersionInt       = "PLUG_VERSION_INT"
	KeyBundleName       = "BUNDLE_NAME"
	KeySharedResources  = "PLUG_SHARED_RESOURCES"
	KeySharedSubpath    = "SHARED_RESOURCES_SUBPATH"
	KeyFrameworkRoot    = "IPLUG2_ROOT"
	defineDirective     = "#define"
	xcconfigComment     = "//"
	xcconfigIncludeLine = "#include"
)

// 🗺️ Config maps config.h define names to string, int or bool values
type Config map[string]any

// Path returns the config.h path for a project root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, FileName)
}

// 📖 Parse reads the #define lines of <projectRoot>/config.h
func Parse(projectRoot string) (Config, error) {
	path := Path(projectRoot)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cfg := Config{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		rest, ok := strings.CutPrefix(line, defineDirective)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		key := fields[0]
		value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), key))
		cfg[key] = parseValue(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	if v, ok := cfg[KeyVersionStr]; ok {
		cfg[KeyFullVersionStr] = fmt.Sprint(v)
	}
	if hex, ok := cfg[KeyVersionHex].(string); ok {
		n, err := strconv.ParseInt(hex, 0, 64)
		if err != nil {
			return nil, errors.Errorf("parsing %s %q: %w", KeyVersionHex, hex, err)
		}
		cfg[KeyVersionInt] = int(n)
	}

	return cfg, nil
}

func parseValue(raw string) any {
	if raw == "" {
		return true
	}
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

// String returns the value for key formatted as a string.
func (c Config) String(key string) (string, bool) {
	v, ok := c[key]
	if !ok {
		return "", false
	}
	return fmt.Sprint(v), true
}

// Int returns the integer value for key.
func (c Config) Int(key string) (int, bool) {
	switch v := c[key].(type) {
	case int:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Bool reports whether key is set to a truthy value.
func (c Config) Bool(key string) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return false
}

// Keys returns the keys in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// 📖 ParseXCConfig reads KEY = VALUE lines of an xcconfig file
func ParseXCConfig(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	values := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, xcconfigComment) || strings.HasPrefix(line, xcconfigIncludeLine) {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if i := strings.Index(value, xcconfigComment); i >= 0 {
			value = value[:i]
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	return values, nil
}

// 🔖 SetUniqueID rewrites the PLUG_UNIQUE_ID define of <projectRoot>/config.h
func SetUniqueID(ctx context.Context, projectRoot, id string) error {
	prefix := defineDirective + " " + KeyUniqueID + " "
	n, err := text.NewSimpleTextReplacer().ReplaceLinePrefix(ctx, Path(projectRoot), prefix, fmt.Sprintf("%s'%s'", prefix, id))
	if err != nil {
		return errors.Errorf("setting unique id: %w", err)
	}
	if n == 0 {
		return errors.Errorf("%s not defined in %s", KeyUniqueID, Path(projectRoot))
	}
	return nil
}
