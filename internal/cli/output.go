package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Printer renders command output. Colors are only emitted when w is a
// terminal.
type Printer struct {
	w     io.Writer
	width int

	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	p := &Printer{
		w:     w,
		width: 60,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label: r.NewStyle().Width(22).Foreground(lipgloss.Color("8")),
		value: r.NewStyle().Bold(true),
		good:  r.NewStyle().Foreground(lipgloss.Color("10")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("9")),
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 && width < p.width {
			p.width = width
		}
	}
	return p
}

func (p *Printer) Title(s string) {
	fmt.Fprintln(p.w, p.title.Render(s))
	fmt.Fprintln(p.w, strings.Repeat("=", min(len(s), p.width)))
}

func (p *Printer) Row(label string, value any) {
	fmt.Fprintln(p.w, p.label.Render(label)+p.value.Render(fmt.Sprint(value)))
}

func (p *Printer) Check(label string, ok bool) {
	mark := p.good.Render("ok")
	if !ok {
		mark = p.bad.Render("failing")
	}
	fmt.Fprintln(p.w, p.label.Render(label)+mark)
}

func (p *Printer) Line(s string) {
	fmt.Fprintln(p.w, s)
}

func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

func enabled(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

func maskSecret(secret string) string {
	if len(secret) < 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
