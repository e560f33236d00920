package profiles

// tldrProfile shows simplified command documentation — always read-only.
type tldrProfile struct{}

func (tldrProfile) Name() string                  { return "tldr" }
func (tldrProfile) DefaultInjectFlags() []string   { return nil }
func (tldrProfile) IsReadOnly(argv []string) bool  { return true }
func (tldrProfile) ReadOnlySubcommands() [][]string { return nil }
func (tldrProfile) ExpandByDefault() bool          { return false }
