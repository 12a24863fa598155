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
	"strings"
	"unicode"

	"github.com/walteh/projdup/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔁 Pair is a literal (search, replace) string pair
type Pair struct {
	Search  string
	Replace string
}

// 🪪 Identifiers holds every pair rewritten during a duplication run
type Identifiers struct {
	// Project is the template project name and its replacement. Required.
	Project Pair
	// Manufacturer is the template manufacturer name and its replacement
	Manufacturer Pair
	// Root is the relative framework root path in forward-slash form. It is
	// only applied when both sides are set and may contain spaces.
	Root Pair
}

// ✅ Validate checks the identifier invariants
func (ids Identifiers) Validate() error {
	if ids.Project.Search == "" {
		return errors.Errorf("search project name is required")
	}
	if ids.Project.Replace == "" {
		return errors.Errorf("replace project name is required")
	}

	for name, v := range map[string]string{
		"search project name":       ids.Project.Search,
		"replace project name":      ids.Project.Replace,
		"search manufacturer name":  ids.Manufacturer.Search,
		"replace manufacturer name": ids.Manufacturer.Replace,
	} {
		if HasWhitespace(v) {
			return errors.Errorf("%s %q contains whitespace", name, v)
		}
	}

	return nil
}

// 📜 Rules returns the substitution rules in application order: project,
// uppercase project, manufacturer, forward-slash root, backslash root.
// Pairs with an empty search side are dropped.
func (ids Identifiers) Rules() []text.ReplacementRule {
	pairs := []Pair{
		ids.Project,
		{Search: strings.ToUpper(ids.Project.Search), Replace: strings.ToUpper(ids.Project.Replace)},
		ids.Manufacturer,
	}

	if ids.Root.Search != "" && ids.Root.Replace != "" {
		pairs = append(pairs,
			ids.Root,
			Pair{
				Search:  strings.ReplaceAll(ids.Root.Search, "/", `\`),
				Replace: strings.ReplaceAll(ids.Root.Replace, "/", `\`),
			},
		)
	}

	rules := make([]text.ReplacementRule, 0, len(pairs))
	for _, p := range pairs {
		if p.Search == "" {
			continue
		}
		rules = append(rules, text.ReplacementRule{FromText: p.Search, ToText: p.Replace})
	}
	return rules
}

// HasWhitespace reports whether s contains any Unicode whitespace.
func HasWhitespace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}
