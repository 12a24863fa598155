/*
Package duplicate implements the project duplication engine.

	+-----------+      +-----------+      +-----------+
	|  source   | ---> |  staging  | ---> |   dest    |
	| (template)| copy | (walked)  |rename|  (final)  |
	+-----------+      +-----------+      +-----------+

🎯 Purpose:
- Copy a template project tree, skipping caches and build artifacts
- Rewrite identifiers in every text file (project, manufacturer, framework root)
- Rename files and IDE bundle directories that carry the project identifier

🔄 Flow:
1. Policy.ShouldCopy filters the bulk copy into a hidden staging directory
2. The staging tree is walked depth first with an explicit stack
3. Each directory is dispatched through an ordered rule list:
  - bundle directory (<search>-macOS.xcodeproj, ...): rename, then descend
  - allow-listed structural folder (config, resources, ...): descend
  - anything else: not descended
4. Files are substituted (unless binary) and then renamed
5. The staging directory is renamed onto the destination

Rewrite performs steps 2-4 in place on an existing tree. It is not
transactional: a failure leaves the tree partially rewritten.

🔍 Example:

	d, err := duplicate.New(duplicate.DefaultTables())
	seq, err := d.Duplicate(ctx, "Foo", "Bar", ids)
	for entry, err := range seq {
		...
	}
*/
package duplicate
