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

package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/projdup/cmd/projdup/commands"
	"github.com/walteh/projdup/cmd/projdup/opts"
	"github.com/walteh/projdup/pkg/config"
	"github.com/walteh/projdup/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// newRootCmd builds the command tree around ro
func newRootCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projdup",
		Short: "Duplicate plugin projects inside a framework repository",
		Long: `projdup creates a new plugin project from an existing one, renaming
files and folders and replacing the project and manufacturer names in text
files. It also bumps project versions and prepares shared resources.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), ro.Debug)
			cmd.SetContext(ctx)

			ro.Console = log.New(cmd.OutOrStdout(), *zerolog.Ctx(ctx))

			profile, err := loadProfile(ctx, ro.ProfilePath)
			if err != nil {
				return err
			}
			ro.Profile = profile
			zerolog.Ctx(ctx).Debug().Stringer("profile", profile).Msg("profile loaded")
			return nil
		},
	}

	addRootFlags(cmd, ro)

	cmd.AddCommand(
		commands.NewDuplicateCmd(ro),
		commands.NewBumpCmd(ro),
		commands.NewResourcesCmd(ro),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, ro *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&ro.ProfilePath, "profile", "p", "", "duplication profile (.projdup.hcl, .yaml, .yml or .json)")
	cmd.PersistentFlags().BoolVarP(&ro.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging sets the level of the context logger based on flags
func setupLogging(ctx context.Context, debug bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.Ctx(ctx).Level(level).WithContext(ctx)
}

// loadProfile loads the --profile file, or the first profile found in the
// working directory, or the defaults
func loadProfile(ctx context.Context, path string) (*config.Profile, error) {
	if path == "" {
		found, err := config.Discover(".")
		if err != nil {
			return nil, errors.Errorf("discovering profile: %w", err)
		}
		path = found
	}

	profile, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading profile: %w", err)
	}
	return profile, nil
}
