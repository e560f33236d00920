package profiles

// rgProfile is a purely read-only search tool with no subcommand structure.
type rgProfile struct{}

func (rgProfile) Name() string                  { return "rg" }
func (rgProfile) DefaultInjectFlags() []string   { return []string{"--json"} }
func (rgProfile) IsReadOnly(argv []string) bool  { return true }
func (rgProfile) ReadOnlySubcommands() [][]string { return nil }
func (rgProfile) ExpandByDefault() bool          { return false }
