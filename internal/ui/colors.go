package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/shelf/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title     lipgloss.Style
	ok        lipgloss.Style
	err       lipgloss.Style
	warn      lipgloss.Style
	help      lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
	modal     lipgloss.Style
	field     lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:     NewBold(t).MarginBottom(1),
		ok:        NewBold(s),
		err:       NewBold(e),
		warn:      NewStyle(w),
		help:      NewEm(h),
		tab:       NewStyle(h).Padding(0, 1),
		activeTab: NewBold(t).Padding(0, 1).Underline(true),
		modal:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(1, 2),
		field:     NewBold(h),
	}
}

func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// notification renders a toast in the color of its kind.
func (p *Palette) notification(n models.Notification) string {
	switch n.Kind {
	case models.NotifySuccess:
		return p.ok.Render("✓ " + n.Message)
	case models.NotifyError:
		return p.err.Render("✗ " + n.Message)
	default:
		return p.warn.Render("• " + n.Message)
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

var _ Painter = (*Palette)(nil)
