package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Styler decorates report text. Rendering logic only talks to this
// interface so it can be tested without escape codes.
type Styler interface {
	Red(s string) string
	Green(s string) string
	Yellow(s string) string
	Blue(s string) string
}

type PlainStyler struct{}

func (PlainStyler) Red(s string) string    { return s }
func (PlainStyler) Green(s string) string  { return s }
func (PlainStyler) Yellow(s string) string { return s }
func (PlainStyler) Blue(s string) string   { return s }

// ANSIStyler renders with the bright 16-color palette through lipgloss.
type ANSIStyler struct {
	red    lipgloss.Style
	green  lipgloss.Style
	yellow lipgloss.Style
	blue   lipgloss.Style
}

func newANSIStyler(r *lipgloss.Renderer) *ANSIStyler {
	return &ANSIStyler{
		red:    r.NewStyle().Foreground(lipgloss.Color("9")),
		green:  r.NewStyle().Foreground(lipgloss.Color("10")),
		yellow: r.NewStyle().Foreground(lipgloss.Color("11")),
		blue:   r.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

func (s *ANSIStyler) Red(v string) string    { return s.red.Render(v) }
func (s *ANSIStyler) Green(v string) string  { return s.green.Render(v) }
func (s *ANSIStyler) Yellow(v string) string { return s.yellow.Render(v) }
func (s *ANSIStyler) Blue(v string) string   { return s.blue.Render(v) }

// NewStyler picks a styler for out. "always" forces ANSI colors, "never"
// disables them, and "auto" colors only terminals without NO_COLOR.
func NewStyler(mode string, out io.Writer) Styler {
	switch mode {
	case ColorNever:
		return PlainStyler{}
	case ColorAlways:
		r := lipgloss.NewRenderer(out)
		r.SetColorProfile(termenv.ANSI)
		return newANSIStyler(r)
	default:
		if termenv.EnvNoColor() {
			return PlainStyler{}
		}
		r := lipgloss.NewRenderer(out)
		if r.ColorProfile() == termenv.Ascii {
			return PlainStyler{}
		}
		return newANSIStyler(r)
	}
}
