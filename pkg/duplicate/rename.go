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
	"os"
	"path/filepath"
	"strings"

	"github.com/walteh/projdup/pkg/fsutil"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrDestinationExists is returned before any mutation when the
	// duplication target already exists
	ErrDestinationExists = errors.Base("destination exists")

	// ErrRenameConflict is returned when a renamed entry would replace an
	// existing one
	ErrRenameConflict = errors.Base("rename target exists")
)

// ✏️ RenameBase replaces every literal occurrence of search in base.
func RenameBase(base, search, replace string) string {
	if search == "" {
		return base
	}
	return strings.ReplaceAll(base, search, replace)
}

// renameEntry renames dir/oldName to dir/newName and returns the new path.
// An unchanged name is a no-op.
func renameEntry(dir, oldName, newName string) (string, error) {
	oldPath := filepath.Join(dir, oldName)
	if oldName == newName {
		return oldPath, nil
	}

	newPath := filepath.Join(dir, newName)
	exists, err := fsutil.Exists(newPath)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.Errorf("renaming %s to %s: %w", oldPath, newName, ErrRenameConflict)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return "", errors.Errorf("renaming %s to %s: %w", oldPath, newName, err)
	}
	return newPath, nil
}
