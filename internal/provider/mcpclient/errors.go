package mcpclient

import "fmt"

// TransientlyUnavailableError is returned by CallTool while a restart or
// reconnect is pending: the provider is known, just not reachable yet.
type TransientlyUnavailableError struct {
	Slug string
}

func (e *TransientlyUnavailableError) Error() string {
	return fmt.Sprintf("provider %q is transiently unavailable (restart pending)", e.Slug)
}
