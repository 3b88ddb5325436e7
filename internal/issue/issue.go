// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalogued issue.
type Id int

const (
	FragmentsNotFoundId Id = iota + 1
	BadPatternId
	OverrideParseErrorId
	TargetOccupiedId
	WorkspaceNotRegisteredId
	WorkspaceManifestInvalidId
	ConfigLoadFailedId
	InvalidStrategyId
	ReservedNameId
	SymlinkPermissionId
	IdentifierTableInvalidId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render returns the issue as terminal-styled Markdown using a glamour style
// name or style file.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	fragmentsNotFoundIssue = &Issue{
		id: FragmentsNotFoundId,
		mdMsg: `
# No fragments found!

The pattern did not match any file, so no package was generated.

## Things you can try:
- Check the pattern is relative to the project root and ends with the fragment suffix:
~~~
$ minicrates generate "examples/**/*.mini.rs"
~~~

- List what the configuration resolves to:
~~~
$ minicrates config show
~~~`,
	}

	badPatternIssue = &Issue{
		id: BadPatternId,
		mdMsg: `
# Invalid glob pattern!

The fragment pattern could not be parsed.

## Pattern syntax:
- ` + "`*`" + ` matches within one path segment
- ` + "`**`" + ` matches across directories
- ` + "`?`" + `, ` + "`[abc]`" + ` and ` + "`{a,b}`" + ` work as in most shells

## Things you can try:
- Close every bracket and brace
- Quote the pattern so your shell does not expand it first`,
		extLinks: []HttpLink{"https://github.com/bmatcuk/doublestar#patterns"},
	}

	overrideParseErrorIssue = &Issue{
		id: OverrideParseErrorId,
		mdMsg: `
# Failed to parse Minicrates.toml!

The override file is not valid TOML, or an entry under ` + "`[minicrates]`" + ` is not a table.

## Expected shape:
~~~toml
[minicrates."examples/*.mini.rs".dependencies]
serde = "1"
helper = { path = "crates/helper" }

[minicrates."examples/**".package]
edition = "2021"
~~~

## Things you can try:
- Check the line and column reported above
- Quote patterns that contain ` + "`*`" + ` or ` + "`/`" + ``,
		extLinks: []HttpLink{"https://toml.io/en/v1.0.0"},
	}

	targetOccupiedIssue = &Issue{
		id: TargetOccupiedId,
		mdMsg: `
# Package target is occupied!

A file or symbolic link sits where a generated package directory must go.
Nothing was overwritten.

## Things you can try:
- Move or delete the file reported above, then run again
- Point the generated packages somewhere else:
~~~
$ minicrates generate --output-dir target/minicrates
~~~`,
	}

	workspaceNotRegisteredIssue = &Issue{
		id: WorkspaceNotRegisteredId,
		mdMsg: `
# Generated packages are not in a workspace

No enclosing Cargo workspace lists the generated-packages directory.
The packages were written, but cargo will not build them as members.

## Things you can try:
- Add the directory to your workspace manifest:
~~~toml
[workspace]
members = ["minicrates/*"]
~~~

- Check where the search stopped:
~~~
$ minicrates probe
~~~`,
		extLinks: []HttpLink{"https://doc.rust-lang.org/cargo/reference/workspaces.html"},
	}

	workspaceManifestInvalidIssue = &Issue{
		id: WorkspaceManifestInvalidId,
		mdMsg: `
# Failed to parse a workspace manifest!

A Cargo.toml found while searching for the enclosing workspace is not valid TOML.

## Things you can try:
- Fix the manifest reported above
- Check it with cargo:
~~~
$ cargo metadata --no-deps
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the minicrates configuration file.

## Configuration file locations:
- Linux: ~/.config/minicrates/config.cue
- macOS: ~/Library/Application Support/minicrates/config.cue
- Windows: %APPDATA%\minicrates\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ minicrates config init
~~~

- Remove the config file to use defaults

## Example configuration:
~~~cue
pattern:    "examples/**/*.mini.rs"
output_dir: "minicrates"
strategy:   "shim"

ui: {
  color_scheme: "auto"
  verbose: false
}
~~~`,
	}

	invalidStrategyIssue = &Issue{
		id: InvalidStrategyId,
		mdMsg: `
# Invalid strategy!

## Valid strategies:
- **shim**: one package per fragment with an include! entry file
- **mirror**: one package per fragment linking its whole directory

~~~
$ minicrates generate --strategy mirror
~~~`,
	}

	reservedNameIssue = &Issue{
		id: ReservedNameId,
		mdMsg: `
# Reserved package directory name!

A fragment stem such as ` + "`con`" + ` or ` + "`nul`" + ` cannot be used as a directory name on Windows.

## Things you can try:
- Rename the fragment
- Use the mirror strategy, which names packages by identifier`,
	}

	symlinkPermissionIssue = &Issue{
		id: SymlinkPermissionId,
		mdMsg: `
# Cannot create symbolic links!

The mirror strategy links files into each package and the system refused.

## Things you can try:
- On Windows, enable Developer Mode or run from an elevated shell
- Use the shim strategy, which needs no links:
~~~
$ minicrates generate --strategy shim
~~~`,
	}

	identifierTableInvalidIssue = &Issue{
		id: IdentifierTableInvalidId,
		mdMsg: `
# Invalid identifier table!

The value of MINICRATES_CRATES is not a JSON object of fragment paths to identifiers.

## Things you can try:
- Regenerate it:
~~~
$ minicrates ids
~~~`,
	}

	issues = map[Id]*Issue{
		fragmentsNotFoundIssue.Id():        fragmentsNotFoundIssue,
		badPatternIssue.Id():               badPatternIssue,
		overrideParseErrorIssue.Id():       overrideParseErrorIssue,
		targetOccupiedIssue.Id():           targetOccupiedIssue,
		workspaceNotRegisteredIssue.Id():   workspaceNotRegisteredIssue,
		workspaceManifestInvalidIssue.Id(): workspaceManifestInvalidIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		invalidStrategyIssue.Id():          invalidStrategyIssue,
		reservedNameIssue.Id():             reservedNameIssue,
		symlinkPermissionIssue.Id():        symlinkPermissionIssue,
		identifierTableInvalidIssue.Id():   identifierTableInvalidIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
