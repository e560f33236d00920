package clirunner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ArgType is the inferred type of a CLI flag argument.
type ArgType int

const (
	ArgBool ArgType = iota
	ArgString
	ArgOptionalString
)

// ArgProperty is a single argument property extracted from `--help` output.
type ArgProperty struct {
	Type        ArgType
	Description string
	LongFlag    string
	ShortFlag   string
}

// ArgumentSchema is the set of flag properties extracted from one CLI
// command's `--help` output, keyed by property name (flag name with
// hyphens turned to underscores).
type ArgumentSchema struct {
	Properties map[string]ArgProperty
}

// ToJSONSchema renders the schema as a JSON-Schema object fragment, for use
// as an MCP tool's input_schema.
func (s ArgumentSchema) ToJSONSchema() json.RawMessage {
	props := make(map[string]any, len(s.Properties))
	var required []string

	for name, prop := range s.Properties {
		typeStr := "string"
		if prop.Type == ArgBool {
			typeStr = "boolean"
		}
		field := map[string]any{"type": typeStr}
		if prop.Description != "" {
			field["description"] = prop.Description
		}
		if prop.ShortFlag != "" {
			field["x-short-flag"] = prop.ShortFlag
		}
		props[name] = field
		if prop.Type == ArgString {
			required = append(required, name)
		}
	}

	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}

	out, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return out
}

// HelpParseFailedError reports that `--help` output yielded no recognizable
// flag definitions.
type HelpParseFailedError struct {
	Command string
	Detail  string
}

func (e *HelpParseFailedError) Error() string {
	return fmt.Sprintf("%s: --help parsing failed: %s", e.Command, e.Detail)
}

// flagPattern recognizes a long flag, an optional short-flag prefix, and
// the trailing "rest" of the line (value placeholder plus description).
var flagPattern = regexp.MustCompile(
	`(?:-([a-zA-Z0-9])(?:[,/]\s*|\s+))?--([a-zA-Z][a-zA-Z0-9_-]*)((?:[= ][^\s,]+|\s+\[[^\]]+\])?(?:\s+.+)?)`,
)

var requiredValuePattern = regexp.MustCompile(`^[ =]<[^>]+>|^[ =][A-Z][A-Z0-9_-]+|^ [a-z][a-zA-Z0-9_-]+`)
var optionalValuePattern = regexp.MustCompile(`^\s+\[[a-zA-Z]|^\[=`)

// ParseFlagDefinitions parses named option flags out of raw `--help` text.
// Tolerant of most CLI conventions (`--flag`, `--flag VALUE`,
// `--flag=VALUE`, `-f, --flag`); returns *HelpParseFailedError if no flag
// is recognized at all, letting the caller fall back to an empty schema
// rather than aborting discovery.
func ParseFlagDefinitions(command, helpText string) (ArgumentSchema, error) {
	properties := make(map[string]ArgProperty)

	for _, match := range flagPattern.FindAllStringSubmatch(helpText, -1) {
		longName := match[2]
		if longName == "" {
			continue
		}
		rest := match[3]

		argType := ArgBool
		switch {
		case optionalValuePattern.MatchString(rest):
			argType = ArgOptionalString
		case requiredValuePattern.MatchString(rest):
			argType = ArgString
		}

		prop := ArgProperty{
			Type:        argType,
			Description: extractDescription(rest),
			LongFlag:    "--" + longName,
		}
		if short := match[1]; short != "" {
			prop.ShortFlag = "-" + short
		}

		properties[strings.ReplaceAll(longName, "-", "_")] = prop
	}

	if len(properties) == 0 {
		return ArgumentSchema{}, &HelpParseFailedError{Command: command, Detail: "no flag definitions found in help output"}
	}
	return ArgumentSchema{Properties: properties}, nil
}

// extractDescription strips the value placeholder token from rest (an
// ALLCAPS word, a <value>/[value] bracketed placeholder, or an =value
// suffix) and returns whatever text remains as the flag's description.
func extractDescription(rest string) string {
	trimmed := strings.TrimSpace(rest)
	if trimmed == "" {
		return ""
	}

	var afterValue string
	switch {
	case strings.HasPrefix(trimmed, "<"):
		if i := strings.Index(trimmed, ">"); i >= 0 {
			afterValue = strings.TrimSpace(trimmed[i+1:])
		}
	case strings.HasPrefix(trimmed, "["):
		if i := strings.Index(trimmed, "]"); i >= 0 {
			afterValue = strings.TrimSpace(trimmed[i+1:])
		}
	case strings.HasPrefix(trimmed, "="):
		rest := trimmed[1:]
		end := strings.IndexFunc(rest, isSpace)
		if end < 0 {
			end = len(rest)
		}
		afterValue = strings.TrimSpace(rest[end:])
	case isAllCapsToken(trimmed):
		end := strings.IndexFunc(trimmed, isSpace)
		if end < 0 {
			end = len(trimmed)
		}
		afterValue = strings.TrimSpace(trimmed[end:])
	default:
		afterValue = trimmed
	}

	return afterValue
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' }

// isAllCapsToken reports whether the leading whitespace-delimited token of s
// is a placeholder like REGION or OUTPUT_FORMAT: all uppercase letters,
// digits, and underscores, at least one letter. An ordinary capitalized
// description ("Enable verbose output") does not qualify.
func isAllCapsToken(s string) bool {
	end := strings.IndexFunc(s, isSpace)
	if end < 0 {
		end = len(s)
	}
	token := s[:end]
	if token == "" {
		return false
	}
	hasLetter := false
	for _, r := range token {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return hasLetter
}
