/*
Package config loads duplication profiles.

	            +-------------+
	            |   Profile   |
	            |  (Tables)   |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   HCL    | |   YAML   | |   JSON   |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Overrides the built-in duplication tables per repository
- Keeps every unset field at its default

🔄 Flow:
1. Discover finds .projdup.hcl, .projdup.yaml, .projdup.yml or .projdup.json
2. The registered parser for the extension decodes a RawProfile
3. Set fields are overlaid on Default()
4. The result is validated (globs compile, no whitespace in names)

HCL profiles can refer to the built-in values and extend them:

	search_manufacturer = "TemplateCo"
	dont_copy           = concat(default.dont_copy, ["*.log"])

🔍 Example:

	path, err := config.Discover(repoRoot)
	profile, err := config.Load(ctx, path)
	d, err := duplicate.New(profile.Tables)
*/
package config
