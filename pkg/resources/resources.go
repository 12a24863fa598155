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

// Package resources copies a plugin's image and font assets to where the
// built plugin loads them from.
package resources

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/projdup/pkg/fsutil"
	"github.com/walteh/projdup/pkg/plugconfig"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Folders are the resource folders copied by Prepare, relative to the project.
var Folders = []string{
	filepath.Join("resources", "img"),
	filepath.Join("resources", "fonts"),
}

const (
	envTargetBuildDir   = "TARGET_BUILD_DIR"
	envResourcesFolder  = "UNLOCALIZED_RESOURCES_FOLDER_PATH"
	sharedResourcesRoot = "Music"
)

// 📍 Destination picks the resource folder: the shared ~/Music location when
// PLUG_SHARED_RESOURCES is set, otherwise the build product's resources.
func Destination(cfg plugconfig.Config, home string, getenv func(string) string) (string, error) {
	if cfg.Bool(plugconfig.KeySharedResources) {
		subpath, ok := cfg.String(plugconfig.KeySharedSubpath)
		if !ok || subpath == "" {
			return "", errors.Errorf("%s is set but %s is not", plugconfig.KeySharedResources, plugconfig.KeySharedSubpath)
		}
		if home == "" {
			return "", errors.Errorf("home directory is unknown")
		}
		return filepath.Join(home, sharedResourcesRoot, subpath, "Resources"), nil
	}

	build, folder := getenv(envTargetBuildDir), getenv(envResourcesFolder)
	if build == "" || folder == "" {
		return "", errors.Errorf("%s and %s must be set when resources are not shared", envTargetBuildDir, envResourcesFolder)
	}
	return filepath.Join(build, folder), nil
}

// 📦 Prepare copies the regular files of every resource folder into dst.
// Missing folders are skipped. Returns the copied destination paths.
func Prepare(ctx context.Context, projectRoot, dst string) ([]string, error) {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, errors.Errorf("creating %s: %w", dst, err)
	}

	var (
		mu     sync.Mutex
		copied = map[string]string{}
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, folder := range Folders {
		src := filepath.Join(projectRoot, folder)
		eg.Go(func() error {
			return copyFolder(egCtx, src, dst, func(name, from string) error {
				mu.Lock()
				defer mu.Unlock()
				if prev, ok := copied[name]; ok {
					return errors.Errorf("%s and %s both provide %s", prev, from, name)
				}
				copied[name] = from
				return nil
			})
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(copied))
	for name := range copied {
		paths = append(paths, filepath.Join(dst, name))
	}
	return paths, nil
}

func copyFolder(ctx context.Context, src, dst string, claim func(name, from string) error) error {
	logger := zerolog.Ctx(ctx)

	entries, err := os.ReadDir(src)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Str("folder", src).Msg("no resource folder")
		return nil
	}
	if err != nil {
		return errors.Errorf("reading %s: %w", src, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			continue
		}

		from := filepath.Join(src, entry.Name())
		if err := claim(entry.Name(), from); err != nil {
			return err
		}

		info, err := entry.Info()
		if err != nil {
			return errors.Errorf("reading info for %s: %w", from, err)
		}

		logger.Debug().Str("file", entry.Name()).Str("dst", dst).Msg("copying resource")
		if err := fsutil.CopyFile(from, filepath.Join(dst, entry.Name()), info.Mode().Perm()); err != nil {
			return errors.Errorf("copying %s: %w", from, err)
		}
	}

	return nil
}
