package guard

import "strings"

// readVerbs match means the operation is likely read-only.
var readVerbs = map[string]bool{
	"list": true, "get": true, "describe": true, "show": true, "view": true,
	"inspect": true, "status": true, "info": true, "ls": true, "cat": true,
	"log": true, "logs": true, "top": true, "explain": true, "check": true,
	"verify": true, "whoami": true, "version": true, "help": true, "search": true,
	"find": true, "count": true, "exists": true, "diff": true, "compare": true,
	"history": true, "print": true, "dump": true, "export": true,
}

// writeVerbs match means the operation is definitely not read-only.
var writeVerbs = map[string]bool{
	"create": true, "delete": true, "remove": true, "rm": true, "update": true,
	"set": true, "put": true, "apply": true, "patch": true, "edit": true,
	"modify": true, "replace": true, "destroy": true, "kill": true, "stop": true,
	"start": true, "restart": true, "terminate": true, "drain": true, "cordon": true,
	"taint": true, "push": true, "deploy": true, "rollback": true, "scale": true,
	"resize": true, "move": true, "mv": true, "cp": true, "copy": true,
	"migrate": true, "import": true, "exec": true, "run": true,
}

// IsLikelyReadOnly classifies a subcommand path as read-only by verb pattern,
// for CLI providers without a built-in profile. It checks the last token
// first (most specific) and walks backwards; the first verb match — exact or
// the first hyphen-delimited segment, for compound verbs like
// "describe-instances" — wins. An unrecognised path defaults to write
// (conservative: unknown commands are blocked, not allowed).
func IsLikelyReadOnly(subcommandPath []string) bool {
	for i := len(subcommandPath) - 1; i >= 0; i-- {
		token := strings.ToLower(subcommandPath[i])

		if readVerbs[token] {
			return true
		}
		if writeVerbs[token] {
			return false
		}

		if prefix, _, found := strings.Cut(token, "-"); found {
			if readVerbs[prefix] {
				return true
			}
			if writeVerbs[prefix] {
				return false
			}
		}
	}
	return false
}
