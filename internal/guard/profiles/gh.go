package profiles

// ghProfile classifies read-only operations for the GitHub CLI. Lookup
// tries the 2-token "noun verb" key first, then falls back to a bare
// 1-token key for commands like "api" that have no fixed read-only verb.
type ghProfile struct{}

func (ghProfile) Name() string { return "gh" }

// gh's --json isn't a universal flag across subcommands, so nothing is
// injected by default.
func (ghProfile) DefaultInjectFlags() []string { return nil }

func ghPairs(noun string, verbs []string) map[string]bool {
	set := make(map[string]bool, len(verbs))
	for _, verb := range verbs {
		set[noun+" "+verb] = true
	}
	return set
}

var ghReadOnlySet = mergeSets(
	ghPairs("repo", []string{"list", "view", "clone"}),
	ghPairs("issue", []string{"list", "view", "status"}),
	ghPairs("pr", []string{"list", "view", "status", "checks", "diff"}),
	ghPairs("release", []string{"list", "view"}),
	ghPairs("workflow", []string{"list", "view"}),
	ghPairs("run", []string{"list", "view", "watch"}),
	ghPairs("gist", []string{"list", "view"}),
	ghPairs("label", []string{"list"}),
	ghPairs("milestone", []string{"list"}),
	ghPairs("variable", []string{"list"}),
	ghPairs("secret", []string{"list"}),
)

var ghReadOnlyBare = map[string]bool{"api": true}

func (ghProfile) IsReadOnly(argv []string) bool {
	if len(argv) >= 2 && ghReadOnlySet[argv[0]+" "+argv[1]] {
		return true
	}
	if len(argv) >= 1 && ghReadOnlyBare[argv[0]] {
		return true
	}
	return false
}

func (ghProfile) ReadOnlySubcommands() [][]string {
	out := expandFromSet(ghReadOnlySet)
	for bare := range ghReadOnlyBare {
		out = append(out, []string{bare})
	}
	return out
}

func (ghProfile) ExpandByDefault() bool { return true }
