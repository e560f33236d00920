package clirunner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSubcommandsKubectlStyle(t *testing.T) {
	help := `kubectl controls the Kubernetes cluster manager.

Basic Commands:
  create        Create a resource
  expose        Take a replication controller and expose it

Commands:
  get           Display one or many resources
  describe      Show details of a specific resource
  delete        Delete resources

Other Commands:
  version       Print client and server version information

Usage:
  kubectl [flags] [options]
`
	names := namesOf(ParseSubcommands(help))
	assert.ElementsMatch(t, []string{"get", "describe", "delete"}, names)
}

func TestParseSubcommandsAWSStyle(t *testing.T) {
	help := `AVAILABLE COMMANDS

Available Commands:
       cp
       ls
       mv
       rb
       rm
       help

SEE ALSO
`
	names := namesOf(ParseSubcommands(help))
	assert.ElementsMatch(t, []string{"cp", "ls", "mv", "rb", "rm"}, names)
	assert.NotContains(t, names, "help")
}

func TestParseSubcommandsFiltersNoiseCommands(t *testing.T) {
	help := `Commands:
  run           Do the thing
  version       Show version
  completion    Generate shell completion
`
	names := namesOf(ParseSubcommands(help))
	assert.Equal(t, []string{"run"}, names)
}

func TestParseSubcommandsNoSectionHeaderYieldsNothing(t *testing.T) {
	help := "usage: foo [bar]\n\nA tool that does a thing.\n"
	assert.Empty(t, ParseSubcommands(help))
}

func TestParseSubcommandsDeduplicates(t *testing.T) {
	help := `Commands:
  get   Get a thing
  get   Get a thing again
`
	names := namesOf(ParseSubcommands(help))
	assert.Equal(t, []string{"get"}, names)
}

func TestParseSubcommandsSkipsFlagLines(t *testing.T) {
	help := `Commands:
  --verbose   Not a subcommand
  status      Show status
`
	names := namesOf(ParseSubcommands(help))
	assert.Equal(t, []string{"status"}, names)
}

func TestParseSubcommandsStripsTrailingColon(t *testing.T) {
	help := `Commands:
  deploy:    Deploy the application
`
	names := namesOf(ParseSubcommands(help))
	assert.Equal(t, []string{"deploy"}, names)
}

func TestParseSubcommandsSectionEndsAtZeroIndentLine(t *testing.T) {
	help := `Commands:
  get     Get a thing

Flags:
  --help  Show help
`
	names := namesOf(ParseSubcommands(help))
	assert.Equal(t, []string{"get"}, names)
}

func namesOf(subs []DiscoveredSubcommand) []string {
	names := make([]string, len(subs))
	for i, s := range subs {
		names[i] = s.Name
	}
	return names
}
