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

// Package bump updates a plugin project's version in config.h, its
// Info.plist files and its Windows installer script.
package bump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/projdup/pkg/fsutil"
	"github.com/walteh/projdup/pkg/plist"
	"github.com/walteh/projdup/pkg/plugconfig"
	"github.com/walteh/projdup/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 📈 Level is the semver component to increment
type Level string

const (
	Major Level = "major"
	Minor Level = "minor"
	Patch Level = "patch"
	None  Level = "none"
)

// Levels lists every accepted level.
var Levels = []Level{Major, Minor, Patch, None}

const (
	plistPattern     = "resources/*-Info.plist"
	installerDir     = "installer"
	installerVersion = "AppVersion"
)

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !slices.Contains(Levels, l) {
		return "", errors.Errorf("unrecognized version bump %q (want major, minor, patch or none)", s)
	}
	return l, nil
}

// 📋 Result describes what a bump changed
type Result struct {
	Previous  *semver.Version
	Current   *semver.Version
	Hex       string
	Plists    []string
	Installer string
}

// Next returns v incremented at level.
func Next(v *semver.Version, level Level) (*semver.Version, error) {
	var next semver.Version
	switch level {
	case Major:
		next = v.IncMajor()
	case Minor:
		next = v.IncMinor()
	case Patch:
		next = v.IncPatch()
	case None:
		next = *v
	default:
		return nil, errors.Errorf("unrecognized version bump %q", level)
	}
	return &next, nil
}

// Hex packs v the way PLUG_VERSION_HEX expects: 0xMMMMmmpp.
func Hex(v *semver.Version) string {
	n := v.Major()<<16&0xFFFF0000 + v.Minor()<<8&0x0000FF00 + v.Patch()&0x000000FF
	return fmt.Sprintf("0x%08x", n)
}

// 🚀 Bump increments the version of the project at projectRoot. Missing
// Info.plist files or installer script are skipped.
func Bump(ctx context.Context, projectRoot string, level Level) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	cfg, err := plugconfig.Parse(projectRoot)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	current, ok := cfg.String(plugconfig.KeyFullVersionStr)
	if !ok {
		return nil, errors.Errorf("%s not defined", plugconfig.KeyVersionStr)
	}

	prev, err := semver.NewVersion(current)
	if err != nil {
		return nil, errors.Errorf("parsing version %q: %w", current, err)
	}

	next, err := Next(prev, level)
	if err != nil {
		return nil, err
	}

	result := &Result{Previous: prev, Current: next, Hex: Hex(next)}
	logger.Debug().Str("from", prev.String()).Str("to", next.String()).Msg("bumping version")

	replacer := text.NewSimpleTextReplacer()
	configPath := plugconfig.Path(projectRoot)
	for prefix, line := range map[string]string{
		"#define " + plugconfig.KeyVersionStr + " ": fmt.Sprintf("#define %s %q", plugconfig.KeyVersionStr, next.String()),
		"#define " + plugconfig.KeyVersionHex + " ": fmt.Sprintf("#define %s %s", plugconfig.KeyVersionHex, result.Hex),
	} {
		if _, err := replacer.ReplaceLinePrefix(ctx, configPath, prefix, line); err != nil {
			return nil, errors.Errorf("updating config: %w", err)
		}
	}

	plists, err := doublestar.Glob(os.DirFS(projectRoot), plistPattern)
	if err != nil {
		return nil, errors.Errorf("finding plists: %w", err)
	}
	slices.Sort(plists)
	for _, rel := range plists {
		path := filepath.Join(projectRoot, filepath.FromSlash(rel))
		if err := updatePlist(path, next.String()); err != nil {
			return nil, err
		}
		result.Plists = append(result.Plists, path)
	}

	if name, ok := cfg.String(plugconfig.KeyBundleName); ok {
		iss := filepath.Join(projectRoot, installerDir, name+".iss")
		exists, err := fsutil.Exists(iss)
		if err != nil {
			return nil, err
		}
		if exists {
			if _, err := replacer.ReplaceLineContaining(ctx, iss, installerVersion, installerVersion+"="+next.String()); err != nil {
				return nil, errors.Errorf("updating installer: %w", err)
			}
			result.Installer = iss
		} else {
			logger.Debug().Str("path", iss).Msg("no installer script")
		}
	}

	return result, nil
}

func updatePlist(path, version string) error {
	doc, err := plist.Load(path)
	if err != nil {
		return err
	}
	doc.SetString("CFBundleVersion", version)
	doc.SetString("CFBundleShortVersionString", version)
	return doc.Save(path)
}
