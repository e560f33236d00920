// Package guard implements Porter's Access Guard: the deny/write/allow policy
// evaluated over a CLI invocation's argv before the CLI Harness spawns a process.
package guard

import (
	"fmt"
	"strings"
)

// ReadOnlyChecker reports whether a concrete argv is a read-only invocation.
// Built-in profiles supply one; CLI providers without a profile fall back to
// the read-only heuristic.
type ReadOnlyChecker func(argv []string) bool

// AccessRule is the operator-configured policy for one CLI provider: explicit
// allow/deny prefixes plus a write-access opt-in table, all keyed by
// whitespace-joined subcommand prefixes (e.g. "s3 rm").
type AccessRule struct {
	Allow       []string
	Deny        []string
	WriteAccess map[string]bool
}

// DeniedError carries the reason a call was blocked, verbatim, for surfacing
// in a tool-level error result (never a protocol error).
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }

// tokenPrefix splits a whitespace-joined rule prefix into tokens.
func tokenPrefix(prefix string) []string { return strings.Fields(prefix) }

// isTokenPrefix reports whether prefix (already tokenized) is a token-wise
// prefix of argv: every token of prefix matches the corresponding argv token,
// in order, from the start. A naive string-prefix match over the
// space-joined argv would wrongly match e.g. rule "s3 r" against argv
// ["s3", "rm"], so matching is token-wise instead.
func isTokenPrefix(prefix, argv []string) bool {
	if len(prefix) == 0 || len(prefix) > len(argv) {
		return false
	}
	for i, tok := range prefix {
		if argv[i] != tok {
			return false
		}
	}
	return true
}

// matchingPrefix returns the first whitespace-joined prefix that is a
// token-wise prefix of argv, if any.
func matchingPrefix(prefixes []string, argv []string) (string, bool) {
	for _, p := range prefixes {
		if isTokenPrefix(tokenPrefix(p), argv) {
			return p, true
		}
	}
	return "", false
}

// Check runs the Access Guard's four-step decision procedure over a single
// invocation's argv: the subcommand path plus the caller's own arguments,
// without inject_flags or the configured fixed args. command is the configured CLI's base command name,
// used only to render the write-blocked message.
//
// Order is significant and terminates at the first decisive step:
//  1. deny always wins, regardless of allow/write_access.
//  2. a write operation (per profile or heuristic, when attached) requires an
//     explicit write_access opt-in for a matching prefix.
//  3. a non-empty allow list is a whitelist.
//  4. otherwise the call passes.
func Check(command string, argv []string, rule AccessRule, readOnly ReadOnlyChecker) error {
	if prefix, ok := matchingPrefix(rule.Deny, argv); ok {
		return &DeniedError{Reason: fmt.Sprintf("explicit deny: %s", prefix)}
	}

	if readOnly != nil && !readOnly(argv) {
		writable := false
		for prefix, allowed := range rule.WriteAccess {
			if allowed && isTokenPrefix(tokenPrefix(prefix), argv) {
				writable = true
				break
			}
		}
		if !writable {
			return &DeniedError{Reason: fmt.Sprintf(
				"Command blocked: %s %s is a write operation. Enable write_access in config to allow.",
				command, strings.Join(argv, " "),
			)}
		}
	}

	if len(rule.Allow) > 0 {
		if _, ok := matchingPrefix(rule.Allow, argv); !ok {
			return &DeniedError{Reason: "not in allow list"}
		}
	}

	return nil
}
