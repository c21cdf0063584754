// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	FileNotFoundId Id = iota + 1
	NotSignedInId
	AliasNotOwnedId
	AliasNotFoundId
	ConfigLoadFailedId
	RegistryUnreachableId
	ReleaseRejectedId
	InvalidVersionId
)

type (
	// Id identifies an entry of the issue catalog.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a documentation or reference URL.
	HttpLink string

	// Issue is a catalog entry describing a known failure and how to recover.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

//nolint:gochecknoglobals // Test seam for glamour rendering.
var render = glamour.Render

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

// Render renders the issue as terminal Markdown using the glamour style at
// stylePath ("dark", "light", "notty", "auto" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

//nolint:gochecknoglobals // Static issue catalog.
var (
	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

The file you asked crux to publish does not exist or cannot be read.

## Things you can try:
- Check the path for typos
- Run the command from the directory that contains the file
~~~
$ crux add ./mod.ts
~~~`,
	}

	notSignedInIssue = &Issue{
		id: NotSignedInId,
		mdMsg: `
# You are not signed in!

Requesting and releasing aliases needs credentials for the registry you are
talking to. Credentials are stored per registry, so signing in to one
registry does not sign you in to another.

## Things you can try:
- Sign in with your user id and secret:
~~~
$ crux login
~~~
- Check that ` + "`--base-url`" + ` points at the registry you signed in to
- Use ` + "`crux whoami`" + ` to see who you are signed in as`,
		docLinks: []HttpLink{"https://crux.land"},
	}

	aliasNotOwnedIssue = &Issue{
		id: AliasNotOwnedId,
		mdMsg: `
# Alias not found or not yours!

Only the owner of an alias can release new tags for it.

## Things you can try:
- Request the alias first:
~~~
$ crux alias request <name>
~~~
- List the aliases you own:
~~~
$ crux alias list
~~~
- Pick a different name with ` + "`--name`",
	}

	aliasNotFoundIssue = &Issue{
		id: AliasNotFoundId,
		mdMsg: `
# Alias not found!

You do not own an alias with that name on this registry.

## Things you can try:
- Run ` + "`crux alias list`" + ` without arguments to see every alias you own`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your crux configuration file could not be loaded.

## Things you can try:
- Check the file for CUE syntax errors
- Show where crux looks for its configuration:
~~~
$ crux config path
~~~
- Regenerate a default configuration:
~~~
$ crux config init
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	registryUnreachableIssue = &Issue{
		id: RegistryUnreachableId,
		mdMsg: `
# Could not reach the registry!

The request never got a proper answer from the registry.

## Things you can try:
- Check your network connection
- Check the registry URL passed with ` + "`--base-url`" + ` or set as ` + "`base_url`" + `
- Raise ` + "`http.timeout`" + ` in your configuration for slow connections
- Re-run with ` + "`--verbose`" + ` to see the requests crux sends`,
	}

	releaseRejectedIssue = &Issue{
		id: ReleaseRejectedId,
		mdMsg: `
# The registry rejected the release!

The registry refused to record the new tag. Its own reason is shown above.

## Things you can try:
- If the tag already exists, someone released it since crux looked: run the command again
- Choose a different version with ` + "`--version`" + `
- Make sure you are signed in as the owner of the alias`,
	}

	invalidVersionIssue = &Issue{
		id: InvalidVersionId,
		mdMsg: `
# Invalid version!

Versions follow semantic versioning: ` + "`MAJOR.MINOR.PATCH`" + `, optionally followed by
a prerelease (` + "`-rc.1`" + `) and build metadata (` + "`+sha.5114f85`" + `). Do not prefix a ` + "`v`" + `.

## Things you can try:
- Pass a version like ` + "`--version 1.2.0`" + `
- Let crux compute the next version with ` + "`--major`" + `, ` + "`--minor`" + ` or ` + "`--patch`",
		extLinks: []HttpLink{"https://semver.org"},
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():        fileNotFoundIssue,
		notSignedInIssue.Id():         notSignedInIssue,
		aliasNotOwnedIssue.Id():       aliasNotOwnedIssue,
		aliasNotFoundIssue.Id():       aliasNotFoundIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		registryUnreachableIssue.Id(): registryUnreachableIssue,
		releaseRejectedIssue.Id():     releaseRejectedIssue,
		invalidVersionIssue.Id():      invalidVersionIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
