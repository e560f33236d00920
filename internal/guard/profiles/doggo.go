package profiles

// doggoProfile is a purely read-only DNS lookup tool.
type doggoProfile struct{}

func (doggoProfile) Name() string                  { return "doggo" }
func (doggoProfile) DefaultInjectFlags() []string   { return []string{"--json"} }
func (doggoProfile) IsReadOnly(argv []string) bool  { return true }
func (doggoProfile) ReadOnlySubcommands() [][]string { return nil }
func (doggoProfile) ExpandByDefault() bool          { return true }
