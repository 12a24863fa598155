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

	"github.com/rs/zerolog"
	"github.com/walteh/projdup/pkg/fsutil"
	"gitlab.com/tozd/go/errors"
)

// 📦 copyTree copies the contents of src into the existing directory dst,
// omitting every entry (and subtree) the policy refuses. Symlinks are
// recreated, not followed. Modes are preserved.
func copyTree(ctx context.Context, p *Policy, src, dst string) error {
	logger := zerolog.Ctx(ctx)

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Errorf("computing relative path: %w", err)
		}
		if rel == "." {
			return nil
		}

		if !p.ShouldCopy(path) {
			logger.Debug().Str("path", rel).Msg("excluded from copy")
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return errors.Errorf("reading info for %s: %w", path, err)
		}

		switch mode := info.Mode(); {
		case mode&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return errors.Errorf("reading symlink %s: %w", path, err)
			}
			if err := os.Symlink(link, target); err != nil {
				return errors.Errorf("creating symlink %s: %w", target, err)
			}
		case mode.IsDir():
			if err := os.Mkdir(target, mode.Perm()|0o700); err != nil {
				return errors.Errorf("creating directory %s: %w", target, err)
			}
		case mode.IsRegular():
			if err := fsutil.CopyFile(path, target, mode.Perm()); err != nil {
				return errors.Errorf("copying %s: %w", rel, err)
			}
		default:
			logger.Debug().Str("path", rel).Str("mode", mode.String()).Msg("skipping special file")
		}

		return nil
	})
}
