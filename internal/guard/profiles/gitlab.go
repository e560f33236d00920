package profiles

// gitlabProfile classifies read-only operations for the GitLab CLI (glab).
// Entries are "noun action" pairs; lookup tries 3-, then 2-, then 1-token
// keys, matching the most specific known path first.
type gitlabProfile struct{}

func (gitlabProfile) Name() string { return "gitlab" }

func (gitlabProfile) DefaultInjectFlags() []string { return []string{"-o", "json"} }

func gitlabPairs(noun string, actions []string) map[string]bool {
	set := make(map[string]bool, len(actions))
	for _, action := range actions {
		set[noun+" "+action] = true
	}
	return set
}

var gitlabReadOnlySet = mergeSets(
	gitlabPairs("mr", []string{"list", "view", "diff", "approvers", "issues"}),
	gitlabPairs("issue", []string{"list", "view"}),
	map[string]bool{"issue board view": true},
	gitlabPairs("project", []string{"list", "view", "search"}),
	gitlabPairs("pipeline", []string{"list", "view", "status"}),
	gitlabPairs("ci", []string{"get", "list", "status", "trace", "view", "lint"}),
	gitlabPairs("incident", []string{"list", "view"}),
	map[string]bool{"iteration list": true, "job artifact": true},
	gitlabPairs("release", []string{"list", "view", "download"}),
	gitlabPairs("snippet", []string{"list", "view"}),
	gitlabPairs("label", []string{"list", "get"}),
	gitlabPairs("milestone", []string{"list", "get"}),
	gitlabPairs("deploy-key", []string{"list", "get"}),
	gitlabPairs("gpg-key", []string{"list", "get"}),
	gitlabPairs("ssh-key", []string{"list", "get"}),
	map[string]bool{"schedule list": true},
	gitlabPairs("securefile", []string{"list", "get"}),
	map[string]bool{"token list": true, "user events": true},
	gitlabPairs("variable", []string{"list", "get", "export"}),
	gitlabPairs("repo", []string{"list", "view", "search", "archive", "contributors"}),
	map[string]bool{
		"auth status":              true,
		"config get":               true,
		"cluster agent list":       true,
		"stack list":               true,
		"runner-controller list":   true,
		"version":                  true,
	},
)

func (gitlabProfile) IsReadOnly(argv []string) bool {
	return matchProgressiveShorter(gitlabReadOnlySet, argv, 3)
}

func (gitlabProfile) ReadOnlySubcommands() [][]string {
	return expandFromSet(gitlabReadOnlySet)
}

func (gitlabProfile) ExpandByDefault() bool { return true }
