// Package output styles text written to the terminal.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// Styles renders styled strings for one writer. Colors are dropped when the
// writer is not a color terminal.
type Styles struct {
	output *termenv.Output
}

func NewStyles(w io.Writer) *Styles {
	return &Styles{output: termenv.NewOutput(w)}
}

func (s *Styles) fg(text, color string) termenv.Style {
	return s.output.String(text).Foreground(s.output.Color(color))
}

// Currency styles a currency code.
func (s *Styles) Currency(text string) string {
	return s.fg(text, "5").Bold().String()
}

// Amount colors a formatted amount by sign: red below zero, green above,
// plain at zero.
func (s *Styles) Amount(text string, sign int) string {
	switch {
	case sign < 0:
		return s.fg(text, "1").String()
	case sign > 0:
		return s.fg(text, "2").String()
	}
	return text
}

// Rate styles an exchange rate.
func (s *Styles) Rate(text string) string {
	return s.fg(text, "5").String()
}

func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing dims fast timings and turns slow ones red.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.fg(text, "1").String()
	}
	return s.Dim(text)
}
