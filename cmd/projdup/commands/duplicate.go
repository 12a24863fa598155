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
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/projdup/cmd/projdup/opts"
	"github.com/walteh/projdup/pkg/plugconfig"
	"github.com/walteh/projdup/pkg/project"
	"gitlab.com/tozd/go/errors"
)

// NewDuplicateCmd creates the duplicate command
func NewDuplicateCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		workDir            string
		repoRoot           string
		searchManufacturer string
	)

	cmd := &cobra.Command{
		Use:   "duplicate <inputProjectName> <outputProjectName> <manufacturerName> [outputPath]",
		Short: "Create a new project from an existing one",
		Long: `Duplicate copies <inputProjectName> to <outputProjectName>, renaming
files and folders and replacing the project and manufacturer names in text
files. The repository root, .github/workflows and .vscode are then rewritten
in place, and the new project gets a fresh PLUG_UNIQUE_ID.

When outputPath is given the project is created there and the IPLUG2_ROOT
path is recomputed from the template's mac xcconfig.`,
		Example: `  projdup duplicate IPlugEffect MyNewPlugin MyCompany
  projdup duplicate IPlugEffect MyNewPlugin MyCompany ../plugins`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "duplicate").Logger().WithContext(cmd.Context())

			o := project.Options{
				WorkDir:            workDir,
				RepoRoot:           repoRoot,
				InputName:          args[0],
				OutputName:         args[1],
				Manufacturer:       args[2],
				SearchManufacturer: searchManufacturer,
				Logger:             ro.Console,
			}
			if len(args) == 4 {
				o.OutputBase = args[3]
			}
			o = project.OptionsFromProfile(o, ro.Profile)

			ro.Console.Header(fmt.Sprintf("duplicating %s to %s", o.InputName, o.OutputName))

			result, err := project.Duplicate(ctx, o)
			if err != nil {
				return errors.Errorf("duplicating project: %w", err)
			}

			table, err := renderConfig(result.Config)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)

			ro.Console.Successf("created %s with unique id %s", result.OutputPath, result.UniqueID)
			ro.Console.Warning("don't forget to change PLUG_MFR_UID in config.h")
			return nil
		},
	}

	cmd.Flags().StringVarP(&workDir, "work-dir", "C", "", "directory containing the input project (default: current directory)")
	cmd.Flags().StringVar(&repoRoot, "repo-root", "", "repository root rewritten in place (default: work dir)")
	cmd.Flags().StringVar(&searchManufacturer, "search-manufacturer", "", "manufacturer name used by the template (default: from profile)")

	return cmd
}

// renderConfig renders the config.h mapping as a sorted table
func renderConfig(cfg plugconfig.Config) (string, error) {
	data := pterm.TableData{{"Key", "Value"}}
	for _, key := range cfg.Keys() {
		v, _ := cfg.String(key)
		data = append(data, []string{key, v})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering config: %w", err)
	}
	return out, nil
}
