package profiles

// kubectlProfile classifies read-only operations for kubectl. Most
// read-only verbs are 1-token top-level commands; "config" is special-cased
// since only a handful of its subcommands are read-only.
type kubectlProfile struct{}

func (kubectlProfile) Name() string { return "kubectl" }

func (kubectlProfile) DefaultInjectFlags() []string { return []string{"-o", "json"} }

var kubectlReadOnlyVerbs = map[string]bool{
	"get": true, "describe": true, "logs": true, "top": true, "api-resources": true,
	"api-versions": true, "cluster-info": true, "explain": true, "version": true,
}

var kubectlConfigReadOnlySubcommands = map[string]bool{
	"view": true, "get-contexts": true, "get-clusters": true, "get-users": true,
	"current-context": true,
}

func (kubectlProfile) IsReadOnly(argv []string) bool {
	if len(argv) == 0 {
		return false
	}
	if argv[0] == "config" {
		return len(argv) >= 2 && kubectlConfigReadOnlySubcommands[argv[1]]
	}
	return kubectlReadOnlyVerbs[argv[0]]
}

func (kubectlProfile) ReadOnlySubcommands() [][]string {
	out := make([][]string, 0, len(kubectlReadOnlyVerbs)+len(kubectlConfigReadOnlySubcommands))
	for verb := range kubectlReadOnlyVerbs {
		out = append(out, []string{verb})
	}
	for sub := range kubectlConfigReadOnlySubcommands {
		out = append(out, []string{"config", sub})
	}
	return out
}

func (kubectlProfile) ExpandByDefault() bool { return true }
