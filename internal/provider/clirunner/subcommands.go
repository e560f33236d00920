package clirunner

import (
	"strings"
	"unicode"
)

// DiscoveredSubcommand is a subcommand name parsed out of a `--help` output,
// found under a "Commands:"/"Subcommands:" section heading.
type DiscoveredSubcommand struct {
	Name        string
	Description string
}

// noiseCommands are filtered out of any parsed subcommand list: they are
// meta-commands, not operations a user would invoke as a tool.
var noiseCommands = map[string]bool{
	"help": true, "version": true, "completion": true, "completions": true,
}

// sectionHeaders are the (case-insensitive) zero-indent headings that
// introduce a block of subcommand entries.
var sectionHeaders = map[string]bool{
	"commands": true, "available commands": true, "subcommands": true,
	"groups": true, "core commands": true, "management commands": true,
	"other commands": true,
}

// ParseSubcommands extracts subcommand names from raw `--help` text. It
// scans for a known section header, then collects indented entries beneath
// it until a zero-indent line ends the section. Tolerant by construction:
// help text with no recognizable section yields an empty, not erroring,
// result.
func ParseSubcommands(helpText string) []DiscoveredSubcommand {
	var results []DiscoveredSubcommand
	seen := make(map[string]bool)
	inSection := false

	for _, line := range strings.Split(helpText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if isSectionHeader(line, trimmed) {
			inSection = true
			continue
		}

		if inSection && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			inSection = false
			continue
		}

		if !inSection {
			continue
		}

		leading := len(line) - len(strings.TrimLeft(line, " \t"))
		if leading < 2 {
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]

		if strings.HasPrefix(name, "-") {
			continue
		}
		if !isValidSubcommandName(name) {
			continue
		}
		name = strings.TrimSuffix(name, ":")
		if noiseCommands[name] {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		description := ""
		if idx := strings.IndexAny(trimmed, " \t"); idx >= 0 {
			description = strings.TrimSpace(trimmed[idx:])
		}

		results = append(results, DiscoveredSubcommand{Name: name, Description: description})
	}

	return results
}

func isSectionHeader(rawLine, trimmed string) bool {
	leading := len(rawLine) - len(strings.TrimLeft(rawLine, " \t"))
	if leading > 1 {
		return false
	}
	header := strings.ToLower(strings.TrimSuffix(trimmed, ":"))
	return sectionHeaders[header]
}

func isValidSubcommandName(name string) bool {
	clean := strings.TrimSuffix(name, ":")
	if clean == "" {
		return false
	}
	runes := []rune(clean)
	if !unicode.IsLetter(runes[0]) || runes[0] > unicode.MaxASCII {
		return false
	}
	for _, r := range runes[1:] {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-') || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
