package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color modes accepted by the color config key.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// ui writes status lines: success, error, warning and prompts. Styles are
// only applied when color is enabled.
type ui struct {
	out     io.Writer
	color   bool
	success lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	prompt  lipgloss.Style
	faint   lipgloss.Style
	heading lipgloss.Style
}

// useColor decides whether output to w gets ANSI styling.
func useColor(w io.Writer, mode string, disabled bool) bool {
	if disabled {
		return false
	}
	switch mode {
	case colorAlways:
		return true
	case colorNever:
		return false
	default:
		return isTTY(w)
	}
}

func newUI(w io.Writer, color bool) *ui {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &ui{
		out:     w,
		color:   color,
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		prompt:  r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		faint:   r.NewStyle().Faint(true),
		heading: r.NewStyle().Bold(true),
	}
}

func (u *ui) render(st lipgloss.Style, s string) string {
	if !u.color {
		return s
	}
	return st.Render(s)
}

func (u *ui) Success(format string, a ...any) {
	fmt.Fprintln(u.out, u.render(u.success, "✓ "+fmt.Sprintf(format, a...)))
}

func (u *ui) Error(format string, a ...any) {
	fmt.Fprintln(u.out, u.render(u.fail, "✗ "+fmt.Sprintf(format, a...)))
}

func (u *ui) Warn(format string, a ...any) {
	fmt.Fprintln(u.out, u.render(u.warn, "⚠ "+fmt.Sprintf(format, a...)))
}

// Heading prints a section title preceded by a blank line.
func (u *ui) Heading(title string) {
	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, u.render(u.heading, "--- "+title+" ---"))
}

// Faint returns s de-emphasized.
func (u *ui) Faint(s string) string {
	return u.render(u.faint, s)
}

// Prompt writes a prompt without a trailing newline.
func (u *ui) Prompt(s string) {
	fmt.Fprint(u.out, u.render(u.prompt, s))
}
