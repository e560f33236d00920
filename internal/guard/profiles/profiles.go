// Package profiles supplies compile-time read-only classification and
// default output-format flags for Porter's built-in CLI tools, so operators
// get working subcommand expansion and write-protection without hand-writing
// a porter.toml access policy for aws, kubectl, and friends.
package profiles

import "sort"

// Profile is a built-in CLI profile: a known tool's read-only subcommand
// surface and conventions, baked in so Porter doesn't have to discover them
// via --help parsing.
type Profile interface {
	// Name is the profile identifier used in porter.toml (e.g. "aws").
	Name() string

	// DefaultInjectFlags are flags appended to every invocation unless the
	// operator's config overrides inject_flags (e.g. ["--output", "json"]).
	DefaultInjectFlags() []string

	// IsReadOnly reports whether argv (subcommand path plus flags) is a
	// read-only operation for this tool.
	IsReadOnly(argv []string) bool

	// ReadOnlySubcommands lists every known read-only subcommand path, for
	// subcommand expansion into one MCP tool per path.
	ReadOnlySubcommands() [][]string

	// ExpandByDefault reports whether this profile should be expanded into
	// one MCP tool per read-only subcommand. False for single-purpose tools
	// with no meaningful subcommand structure.
	ExpandByDefault() bool
}

var registry = map[string]Profile{
	"aws":     awsProfile{},
	"gcloud":  gcloudProfile{},
	"kubectl": kubectlProfile{},
	"gh":      ghProfile{},
	"az":      azProfile{},
	"ansible": ansibleProfile{},
	"gitlab":  gitlabProfile{},
	"doggo":   doggoProfile{},
	"rg":      rgProfile{},
	"tldr":    tldrProfile{},
	"whois":   whoisProfile{},
}

// Get resolves a built-in profile by name, returning false if name is not a
// recognized built-in.
func Get(name string) (Profile, bool) {
	p, ok := registry[name]
	return p, ok
}

// Available returns the sorted list of all built-in profile names.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expandFromSet turns a flat "a b c" key set into read-only subcommand
// paths, splitting each entry on whitespace.
func expandFromSet(set map[string]bool) [][]string {
	out := make([][]string, 0, len(set))
	for entry := range set {
		out = append(out, splitFields(entry))
	}
	return out
}

func splitFields(s string) []string {
	var fields []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

// matchProgressiveShorter tries set-membership over joined prefixes of
// lengths min(len(args), maxLen) down to 1, matching the most specific
// subcommand path first.
func matchProgressiveShorter(set map[string]bool, args []string, maxLen int) bool {
	if len(args) == 0 {
		return false
	}
	limit := maxLen
	if len(args) < limit {
		limit = len(args)
	}
	for l := limit; l >= 1; l-- {
		if set[joinArgs(args[:l])] {
			return true
		}
	}
	return false
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
