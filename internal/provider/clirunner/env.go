package clirunner

import (
	"fmt"
	"os"
)

// mergeEnv returns the current process environment with overrides applied
// on top, in the `KEY=VALUE` form exec.Cmd.Env expects. Spawned processes
// inherit nothing else beyond this and their working directory.
func mergeEnv(overrides map[string]string) []string {
	base := os.Environ()
	out := make([]string, 0, len(base)+len(overrides))
	out = append(out, base...)
	for k, v := range overrides {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}
