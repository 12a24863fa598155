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
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/projdup/cmd/projdup/opts"
	"github.com/walteh/projdup/pkg/plugconfig"
	"github.com/walteh/projdup/pkg/resources"
	"gitlab.com/tozd/go/errors"
)

// NewResourcesCmd creates the prepare-resources command
func NewResourcesCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		projectDir string
		dest       string
	)

	cmd := &cobra.Command{
		Use:   "prepare-resources",
		Short: "Copy image and font resources next to the built plugin",
		Long: `Prepare-resources copies resources/img and resources/fonts into the
shared ~/Music/<SHARED_RESOURCES_SUBPATH>/Resources folder when
PLUG_SHARED_RESOURCES is set in config.h, otherwise into
$TARGET_BUILD_DIR/$UNLOCALIZED_RESOURCES_FOLDER_PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "prepare-resources").Logger().WithContext(cmd.Context())

			if dest == "" {
				cfg, err := plugconfig.Parse(projectDir)
				if err != nil {
					return errors.Errorf("reading config: %w", err)
				}
				home, _ := os.UserHomeDir()
				if dest, err = resources.Destination(cfg, home, os.Getenv); err != nil {
					return err
				}
			}

			copied, err := resources.Prepare(ctx, projectDir, dest)
			if err != nil {
				return errors.Errorf("preparing resources: %w", err)
			}

			ro.Console.Successf("copied %d resources to %s", len(copied), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", ".", "project directory containing config.h")
	cmd.Flags().StringVar(&dest, "dest", "", "destination folder (default: derived from config.h)")

	return cmd
}
