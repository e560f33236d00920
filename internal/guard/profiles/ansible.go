package profiles

// ansibleProfile classifies read-only operations across the ansible-*
// family of tools. Unlike the other profiles, entries mix bare commands
// ("ansible-doc"), commands with a flag ("ansible --list-hosts"), and
// subcommands ("ansible-config list") — so lookup also falls back to a
// string-prefix check against the full joined argv.
type ansibleProfile struct{}

func (ansibleProfile) Name() string { return "ansible" }

// No standard JSON output flag exists across the ansible-* tools.
func (ansibleProfile) DefaultInjectFlags() []string { return nil }

var ansibleReadOnlySet = map[string]bool{
	"ansible-inventory --list":  true,
	"ansible-inventory --graph": true,
	"ansible-inventory --host":  true,

	"ansible-config list":     true,
	"ansible-config dump":     true,
	"ansible-config view":     true,
	"ansible-config validate": true,

	"ansible-doc":                true,
	"ansible-doc -l":             true,
	"ansible-doc -s":             true,
	"ansible-doc -F":             true,
	"ansible-doc --metadata-dump": true,

	"ansible --version":    true,
	"ansible --list-hosts": true,
	"ansible -m setup":     true,

	"ansible-galaxy list":             true,
	"ansible-galaxy collection list":   true,
	"ansible-galaxy collection verify": true,
	"ansible-galaxy role list":         true,
	"ansible-galaxy role search":       true,
	"ansible-galaxy role info":         true,

	"ansible-vault view": true,
}

func (ansibleProfile) IsReadOnly(argv []string) bool {
	if len(argv) == 0 {
		return false
	}

	limit := 3
	if len(argv) < limit {
		limit = len(argv)
	}
	for l := limit; l >= 1; l-- {
		if ansibleReadOnlySet[joinArgs(argv[:l])] {
			return true
		}
	}

	joined := joinArgs(argv)
	for entry := range ansibleReadOnlySet {
		if hasPrefix(joined, entry) {
			return true
		}
	}
	return false
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func (ansibleProfile) ReadOnlySubcommands() [][]string {
	return expandFromSet(ansibleReadOnlySet)
}

func (ansibleProfile) ExpandByDefault() bool { return true }
