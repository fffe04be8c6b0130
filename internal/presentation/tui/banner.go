package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner with the agent name and state count.
func PrintBanner(w io.Writer, agent string, states int) {
	p := termenv.ColorProfile()
	title := termenv.String(" parlance ").Bold().Foreground(p.Color("#f8fafc")).Background(p.Color("#6366f1"))
	meta := termenv.String(fmt.Sprintf(" %s · %d states", agent, states)).Foreground(p.Color("#a78bfa"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title.String()+meta.String())
	fmt.Fprintln(w, termenv.String(strings.Repeat("─", 40)).Faint())
}

// NoticeStyler colors system notices: lines starting with "Error:" in red,
// everything else dimmed.
func NoticeStyler() func(string) string {
	p := termenv.ColorProfile()
	return func(s string) string {
		if strings.HasPrefix(s, "Error:") {
			return termenv.String(s).Foreground(p.Color("#f87171")).String()
		}
		return termenv.String(s).Faint().String()
	}
}
