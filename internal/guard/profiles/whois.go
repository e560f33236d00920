package profiles

// whoisProfile is a purely read-only domain/IP lookup tool.
type whoisProfile struct{}

func (whoisProfile) Name() string                  { return "whois" }
func (whoisProfile) DefaultInjectFlags() []string   { return nil }
func (whoisProfile) IsReadOnly(argv []string) bool  { return true }
func (whoisProfile) ReadOnlySubcommands() [][]string { return nil }
func (whoisProfile) ExpandByDefault() bool          { return false }
