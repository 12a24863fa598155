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
	"iter"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/projdup/pkg/fsutil"
	"gitlab.com/tozd/go/errors"
)

// 🧬 Duplicator copies and rewrites project trees. It is safe to reuse
// across runs; its tables are fixed at construction.
type Duplicator struct {
	tables Tables
	policy *Policy
}

// 🏭 New creates a duplicator from the given tables
func New(t Tables) (*Duplicator, error) {
	t = t.Clone()
	p, err := NewPolicy(t)
	if err != nil {
		return nil, errors.Errorf("creating policy: %w", err)
	}
	return &Duplicator{tables: t, policy: p}, nil
}

// Policy returns the exclusion policy in use.
func (d *Duplicator) Policy() *Policy {
	return d.policy
}

// 📂 Duplicate copies src to dst and rewrites the copy. Precondition
// failures are returned before anything touches the filesystem. The work
// happens while the returned sequence is consumed: the copy is built in a
// hidden staging directory next to dst and only renamed onto dst once the
// walk has finished. A failure, a cancelled context or an early break
// removes the staging directory and leaves dst absent.
func (d *Duplicator) Duplicate(ctx context.Context, src, dst string, ids Identifiers) (iter.Seq2[Entry, error], error) {
	if err := ids.Validate(); err != nil {
		return nil, errors.Errorf("validating identifiers: %w", err)
	}

	isDir, err := fsutil.IsDir(src)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, errors.Errorf("source %s is not a directory", src)
	}

	if err := checkAbsent(dst); err != nil {
		return nil, err
	}

	return func(yield func(Entry, error) bool) {
		err := d.duplicate(ctx, src, dst, ids, func(e Entry) bool {
			return yield(e, nil)
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield(Entry{}, err)
		}
	}, nil
}

func (d *Duplicator) duplicate(ctx context.Context, src, dst string, ids Identifiers, yield func(Entry) bool) (err error) {
	logger := zerolog.Ctx(ctx)

	srcInfo, err := os.Stat(src)
	if err != nil {
		return errors.Errorf("reading source: %w", err)
	}

	staging, err := os.MkdirTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".projdup-*")
	if err != nil {
		return errors.Errorf("creating staging directory: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := os.RemoveAll(staging); rerr != nil {
			logger.Warn().Err(rerr).Str("staging", staging).Msg("removing staging directory")
		}
	}()

	if err := os.Chmod(staging, srcInfo.Mode().Perm()|0o700); err != nil {
		return errors.Errorf("setting staging mode: %w", err)
	}

	logger.Debug().Str("src", src).Str("staging", staging).Msg("copying template")
	if err := copyTree(ctx, d.policy, src, staging); err != nil {
		return errors.Errorf("copying %s: %w", src, err)
	}

	w := newWalker(d.policy, d.tables, ids)
	err = w.walk(ctx, staging, func(e Entry) bool {
		if rel, rerr := filepath.Rel(staging, e.Path); rerr == nil {
			e.Path = filepath.Join(dst, rel)
		}
		return yield(e)
	})
	if err != nil {
		return err
	}

	if err := checkAbsent(dst); err != nil {
		return err
	}
	if err := os.Rename(staging, dst); err != nil {
		return errors.Errorf("moving staging directory into place: %w", err)
	}
	committed = true

	logger.Debug().Str("dst", dst).Msg("duplication committed")
	return nil
}

// ♻️ Rewrite walks root in place with the same rules as Duplicate. There is
// no staging: a failure leaves the tree partially rewritten.
func (d *Duplicator) Rewrite(ctx context.Context, root string, ids Identifiers) (iter.Seq2[Entry, error], error) {
	if err := ids.Validate(); err != nil {
		return nil, errors.Errorf("validating identifiers: %w", err)
	}

	isDir, err := fsutil.IsDir(root)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, errors.Errorf("%s is not a directory", root)
	}

	w := newWalker(d.policy, d.tables, ids)
	return func(yield func(Entry, error) bool) {
		err := w.walk(ctx, root, func(e Entry) bool {
			return yield(e, nil)
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield(Entry{}, err)
		}
	}, nil
}

// 🏃 Run drains seq and returns the number of entries visited
func Run(seq iter.Seq2[Entry, error]) (int, error) {
	n := 0
	for _, err := range seq {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func checkAbsent(path string) error {
	exists, err := fsutil.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return errors.Errorf("%s: %w", path, ErrDestinationExists)
	}
	return nil
}
