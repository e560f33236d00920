// Package banner prints the short startup banner porter writes to stderr
// before a gateway starts serving, with NO_COLOR and TTY detection so piped
// or redirected output never contains ANSI escapes.
package banner

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Info is the set of startup facts the banner reports.
type Info struct {
	Version   string
	Mode      string // "http" or "stdio"
	Address   string // "127.0.0.1:3000/mcp" for http, empty for stdio
	ConfigPath string
	ToolCount int
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(4)).Bold(true) // blue
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8))            // bright black
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(2))            // green
)

// Print writes Info to w as a short banner. Colors are rendered only when w
// is a terminal and NO_COLOR is unset; otherwise Print writes the same
// content with no ANSI codes.
func Print(w io.Writer, info Info) {
	renderer := lipgloss.NewRenderer(w)
	if !colorEnabled(w) {
		renderer.SetColorProfile(termenv.Ascii)
	}

	title := titleStyle.Renderer(renderer).Render(fmt.Sprintf("porter %s", info.Version))
	label := func(s string) string { return labelStyle.Renderer(renderer).Render(s) }
	value := func(s string) string { return valueStyle.Renderer(renderer).Render(s) }

	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "%s %s\n", label("mode:"), value(info.Mode))
	if info.Address != "" {
		fmt.Fprintf(w, "%s %s\n", label("listening:"), value(info.Address))
	}
	fmt.Fprintf(w, "%s %s\n", label("config:"), value(info.ConfigPath))
	fmt.Fprintf(w, "%s %s\n", label("tools:"), value(fmt.Sprintf("%d", info.ToolCount)))
}

// colorEnabled reports whether w should receive ANSI styling: w must be a
// terminal, and neither NO_COLOR nor TERM=dumb may be set. NO_COLOR is
// honored per https://no-color.org/; TERM=dumb catches terminals that
// advertise no color support at all.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
