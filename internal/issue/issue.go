// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

const (
	SettingsParseFailedId Id = iota + 1
	SettingsWriteFailedId
	AddonNotInstalledId
	AddonPathInvalidId
	LuaRocksNotFoundId
	LuaRocksCommandFailedId
	ConfigLoadFailedId
)

const (
	addonsWikiLink   HttpLink = "https://luals.github.io/wiki/addons/"
	settingsWikiLink HttpLink = "https://luals.github.io/wiki/settings/#workspacelibrary"
	luarocksWikiLink HttpLink = "https://github.com/luarocks/luarocks/wiki/Download"
	luarocksCLILink  HttpLink = "https://github.com/luarocks/luarocks/wiki/luarocks"
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a catalog entry: a Markdown guide for one class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink // every issue links at least one page
		extLinks []HttpLink
	}
)

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

// Markdown returns the guide followed by its links.
func (i *Issue) Markdown() string {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return md.String()
}

// Render renders the guide for the terminal with the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	settingsParseFailedIssue = &Issue{
		id: SettingsParseFailedId,
		mdMsg: `
# The editor settings file could not be read!

llynx reads the library list from your editor settings, a JSON file that may
contain comments and trailing commas. The file exists but is not valid JSON, its
top level is not an object, or the library key does not hold an array of strings.

## Things you can try:
- Open the file in your editor and fix the reported syntax error
- Make sure the library key holds a list of paths:
~~~json
{
  "Lua.workspace.library": [
    ".lls_addons/lib/luarocks/rocks-5.1/love2d/11.4-1/types"
  ]
}
~~~
- Point llynx at another file with ` + "`--settings`" + ``,
		docLinks: []HttpLink{settingsWikiLink},
	}

	settingsWriteFailedIssue = &Issue{
		id: SettingsWriteFailedId,
		mdMsg: `
# The editor settings file could not be written!

## Things you can try:
- Check that you can write to the settings file and its directory
- Remove a leftover ` + "`settings.json.lock`" + ` if no other llynx process is running`,
		docLinks: []HttpLink{settingsWikiLink},
	}

	addonNotInstalledIssue = &Issue{
		id: AddonNotInstalledId,
		mdMsg: `
# Addon not installed!

Only addons installed in the local rocks tree can be enabled or disabled.

## Things you can try:
- List the installed addons:
~~~
$ llynx list installed
~~~
- Install the addon first:
~~~
$ llynx install <name>
~~~
- Check that ` + "`--tree`" + ` points at the tree the addon was installed into`,
		docLinks: []HttpLink{addonsWikiLink},
	}

	addonPathInvalidIssue = &Issue{
		id: AddonPathInvalidId,
		mdMsg: `
# A library entry could not be understood!

Library entries managed by llynx look like
` + "`<tree>/lib/luarocks/<rocks>/<name>/<version>/types`" + ` and must be valid UTF-8.

## Things you can try:
- Remove or fix the reported entries in the settings file
- Re-enable the addon with ` + "`llynx enable <name>`",
		docLinks: []HttpLink{settingsWikiLink},
	}

	luarocksNotFoundIssue = &Issue{
		id: LuaRocksNotFoundId,
		mdMsg: `
# LuaRocks not found!

llynx uses the LuaRocks package manager to search, install and remove addons.

## Things you can try:
- Install LuaRocks and make sure it is on your PATH
- Point llynx at the executable:
~~~
$ llynx --luarocks /path/to/luarocks list
~~~
- Or set ` + "`luarocks`" + ` in ` + "`.llynx.toml`",
		docLinks: []HttpLink{luarocksWikiLink},
	}

	luarocksCommandFailedIssue = &Issue{
		id: LuaRocksCommandFailedId,
		mdMsg: `
# LuaRocks reported an error!

## Things you can try:
- Run again with ` + "`-vvv`" + ` to see the exact LuaRocks command line
- Run that command yourself to see the full LuaRocks output
- Check your network connection when searching or installing`,
		docLinks: []HttpLink{luarocksCLILink},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# The configuration could not be loaded!

## Things you can try:
- Check the TOML syntax of ` + "`.llynx.toml`" + `
- Only these keys are accepted:
~~~toml
luarocks = "luarocks"
tree = ".lls_addons"
settings = ".vscode/settings.json"
server = "https://luarocks.org/m/lls-addons"
library_key = "Lua.workspace.library"
verbose = 0
disable_before_remove = false
~~~
- Show the effective configuration:
~~~
$ llynx config show
~~~`,
		docLinks: []HttpLink{addonsWikiLink},
	}

	issues = map[Id]*Issue{
		settingsParseFailedIssue.Id():   settingsParseFailedIssue,
		settingsWriteFailedIssue.Id():   settingsWriteFailedIssue,
		addonNotInstalledIssue.Id():     addonNotInstalledIssue,
		addonPathInvalidIssue.Id():      addonPathInvalidIssue,
		luarocksNotFoundIssue.Id():      luarocksNotFoundIssue,
		luarocksCommandFailedIssue.Id(): luarocksCommandFailedIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
	}
)

// Ids returns every catalog id in ascending order.
func Ids() []Id {
	return slices.Sorted(maps.Keys(issues))
}

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	ids := Ids()
	values := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		values = append(values, issues[id])
	}
	return values
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
