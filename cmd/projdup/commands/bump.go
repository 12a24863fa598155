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

package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/projdup/cmd/projdup/opts"
	"github.com/walteh/projdup/pkg/bump"
	"gitlab.com/tozd/go/errors"
)

// NewBumpCmd creates the bump command
func NewBumpCmd(ro *opts.RootOpts) *cobra.Command {
	var projectDir string

	cmd := &cobra.Command{
		Use:       "bump <major|minor|patch|none>",
		Short:     "Increment the project version",
		Long:      `Bump updates PLUG_VERSION_STR and PLUG_VERSION_HEX in config.h, the bundle versions of resources/*-Info.plist and the AppVersion of the installer script.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(bump.Major), string(bump.Minor), string(bump.Patch), string(bump.None)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "bump").Logger().WithContext(cmd.Context())

			level, err := bump.ParseLevel(args[0])
			if err != nil {
				return err
			}

			result, err := bump.Bump(ctx, projectDir, level)
			if err != nil {
				return errors.Errorf("bumping version: %w", err)
			}

			for _, p := range result.Plists {
				ro.Console.Infof("updated %s", p)
			}
			if result.Installer != "" {
				ro.Console.Infof("updated %s", result.Installer)
			}
			ro.Console.Successf("version %s -> %s (%s)", result.Previous, result.Current, result.Hex)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", ".", "project directory containing config.h")

	return cmd
}
