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

// Package project duplicates a plugin project inside its repository: it
// copies the template, rewrites the repository level tooling and stamps a
// fresh unique id into the new project's config.
package project

import (
	"context"
	"io"
	"iter"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/projdup/pkg/config"
	"github.com/walteh/projdup/pkg/duplicate"
	"github.com/walteh/projdup/pkg/fsutil"
	"github.com/walteh/projdup/pkg/log"
	"github.com/walteh/projdup/pkg/plugconfig"
	"github.com/walteh/projdup/pkg/uniqueid"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrUsage marks bad command line arguments
	ErrUsage = errors.Base("usage error")

	// ErrPrecondition marks a check that failed before anything was written
	ErrPrecondition = errors.Base("precondition failed")
)

// RepositoryFolders are rewritten in place after the project is duplicated,
// relative to the repository root. The root itself comes first.
var RepositoryFolders = []string{".", filepath.Join(".github", "workflows"), ".vscode"}

// 🔧 Options configures a duplication
type Options struct {
	// WorkDir holds the template project. Defaults to the current directory.
	WorkDir string
	// RepoRoot is rewritten in place. Defaults to WorkDir.
	RepoRoot string

	InputName    string
	OutputName   string
	Manufacturer string

	// SearchManufacturer is the manufacturer name found in the template
	SearchManufacturer string
	// OutputBase is where the new project is created. When set, the
	// framework root path is recomputed for the new location.
	OutputBase string

	Tables duplicate.Tables
	IDGen  *uniqueid.Generator
	// Logger receives console output; nil writes nothing
	Logger *log.Logger
}

// 📋 Result is what a successful duplication produced
type Result struct {
	OutputPath string
	Root       duplicate.Pair
	UniqueID   string
	Config     plugconfig.Config
	Entries    int
}

// OptionsFromProfile fills the profile driven fields of opts.
func OptionsFromProfile(opts Options, p *config.Profile) Options {
	if opts.SearchManufacturer == "" {
		opts.SearchManufacturer = p.SearchManufacturer
	}
	opts.Tables = p.Tables.Clone()
	return opts
}

// 🧹 normalize fills defaults, trims names and runs the precondition checks.
// Nothing is written.
func normalize(opts Options) (Options, string, error) {
	for name, v := range map[string]string{
		"input project name":  opts.InputName,
		"output project name": opts.OutputName,
		"manufacturer name":   opts.Manufacturer,
	} {
		if v == "" {
			return opts, "", errors.Errorf("%w: %s is required", ErrUsage, name)
		}
		if duplicate.HasWhitespace(v) {
			return opts, "", errors.Errorf("%w: %s %q has spaces", ErrPrecondition, name, v)
		}
	}

	opts.InputName = strings.TrimRight(opts.InputName, `/\`)
	opts.OutputName = strings.TrimRight(opts.OutputName, `/\`)
	if opts.InputName == "" || opts.OutputName == "" {
		return opts, "", errors.Errorf("%w: project names must not be only separators", ErrUsage)
	}

	if opts.SearchManufacturer == "" {
		opts.SearchManufacturer = config.DefaultSearchManufacturer
	}

	var err error
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.WorkDir, err = filepath.Abs(opts.WorkDir); err != nil {
		return opts, "", errors.Errorf("resolving working directory: %w", err)
	}
	if opts.RepoRoot == "" {
		opts.RepoRoot = opts.WorkDir
	}
	if opts.RepoRoot, err = filepath.Abs(opts.RepoRoot); err != nil {
		return opts, "", errors.Errorf("resolving repository root: %w", err)
	}

	base := opts.WorkDir
	if opts.OutputBase != "" {
		if base, err = filepath.Abs(opts.OutputBase); err != nil {
			return opts, "", errors.Errorf("resolving output path: %w", err)
		}
	}
	ok, err := fsutil.IsDir(base)
	if err != nil {
		return opts, "", err
	}
	if !ok {
		return opts, "", errors.Errorf("%w: output path %s does not exist", ErrPrecondition, base)
	}

	ok, err = fsutil.IsDir(filepath.Join(opts.WorkDir, opts.InputName))
	if err != nil {
		return opts, "", err
	}
	if !ok {
		return opts, "", errors.Errorf("%w: input project %s doesn't exist in %s, check spelling/case?", ErrPrecondition, opts.InputName, opts.WorkDir)
	}

	outputPath := filepath.Join(base, opts.OutputName)
	exists, err := fsutil.Exists(outputPath)
	if err != nil {
		return opts, "", err
	}
	if exists {
		return opts, "", errors.Errorf("%w: output project %s already exists", ErrPrecondition, outputPath)
	}

	if opts.IDGen == nil {
		opts.IDGen = uniqueid.New(nil)
	}

	return opts, outputPath, nil
}

// 📐 RootPair reads the framework root recorded by the template's mac
// xcconfig and recomputes it relative to the output project's config folder.
func RootPair(inputDir, inputName, outputPath string) (duplicate.Pair, error) {
	configDir := filepath.Join(inputDir, "config")
	xcconfig := filepath.Join(configDir, inputName+"-mac.xcconfig")

	values, err := plugconfig.ParseXCConfig(xcconfig)
	if err != nil {
		return duplicate.Pair{}, errors.Errorf("%w: reading framework root: %s", ErrPrecondition, err)
	}

	oldRoot, ok := values[plugconfig.KeyFrameworkRoot]
	if !ok || oldRoot == "" {
		return duplicate.Pair{}, errors.Errorf("%w: %s not set in %s", ErrPrecondition, plugconfig.KeyFrameworkRoot, xcconfig)
	}

	framework := filepath.Join(configDir, filepath.FromSlash(oldRoot))
	newRoot, err := filepath.Rel(filepath.Join(outputPath, "config"), framework)
	if err != nil {
		return duplicate.Pair{}, errors.Errorf("computing framework root: %w", err)
	}

	return duplicate.Pair{Search: oldRoot, Replace: filepath.ToSlash(newRoot)}, nil
}

// 🚀 Duplicate creates <output base>/<output name> from the template and
// rewrites the repository tooling. Precondition failures return before
// anything is written. The copy is atomic; the in-place rewrites of the
// repository folders that follow it are not.
func Duplicate(ctx context.Context, opts Options) (*Result, error) {
	opts, outputPath, err := normalize(opts)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	console := opts.Logger
	if console == nil {
		console = log.New(io.Discard, *logger)
	}

	inputDir := filepath.Join(opts.WorkDir, opts.InputName)

	ids := duplicate.Identifiers{
		Project:      duplicate.Pair{Search: opts.InputName, Replace: opts.OutputName},
		Manufacturer: duplicate.Pair{Search: opts.SearchManufacturer, Replace: opts.Manufacturer},
	}
	if opts.OutputBase != "" {
		if ids.Root, err = RootPair(inputDir, opts.InputName, outputPath); err != nil {
			return nil, err
		}
		logger.Debug().Str("old", ids.Root.Search).Str("new", ids.Root.Replace).Msg("framework root")
	}

	d, err := duplicate.New(opts.Tables)
	if err != nil {
		return nil, errors.Errorf("creating duplicator: %w", err)
	}

	seq, err := d.Duplicate(ctx, inputDir, outputPath, ids)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrPrecondition, err)
	}

	result := &Result{OutputPath: outputPath, Root: ids.Root}

	n, err := drain(ctx, console, log.WalkOperation{Name: opts.OutputName, Root: outputPath}, outputPath, seq)
	result.Entries += n
	if err != nil {
		return nil, errors.Errorf("duplicating %s: %w", opts.InputName, err)
	}

	for _, folder := range RepositoryFolders {
		root := filepath.Join(opts.RepoRoot, folder)
		ok, err := fsutil.IsDir(root)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Debug().Str("folder", root).Msg("optional folder missing, skipping")
			continue
		}

		seq, err := d.Rewrite(ctx, root, ids)
		if err != nil {
			return nil, errors.Errorf("rewriting %s: %w", root, err)
		}
		n, err := drain(ctx, console, log.WalkOperation{Name: folder, Root: root, InPlace: true}, root, seq)
		result.Entries += n
		if err != nil {
			return nil, errors.Errorf("rewriting %s: %w", root, err)
		}
	}

	cfg, err := plugconfig.Parse(outputPath)
	if err != nil {
		return nil, errors.Errorf("reading new project config: %w", err)
	}

	result.UniqueID = opts.IDGen.Generate()
	if err := plugconfig.SetUniqueID(ctx, outputPath, result.UniqueID); err != nil {
		return nil, err
	}
	cfg[plugconfig.KeyUniqueID] = result.UniqueID
	result.Config = cfg

	return result, nil
}

func drain(ctx context.Context, console *log.Logger, op log.WalkOperation, root string, seq iter.Seq2[duplicate.Entry, error]) (int, error) {
	console.StartWalk(ctx, op)
	defer console.EndWalk(ctx)

	n := 0
	for entry, err := range seq {
		if err != nil {
			return n, err
		}
		n++

		rel, rerr := filepath.Rel(root, entry.Path)
		if rerr != nil {
			rel = entry.Path
		}
		console.LogEntry(ctx, log.EntryOperation{
			Path:         filepath.ToSlash(rel),
			Kind:         entry.Kind.String(),
			RenamedFrom:  entry.RenamedFrom,
			Binary:       entry.Binary,
			Replacements: entry.Replacements,
		})
	}
	return n, nil
}
