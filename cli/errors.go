package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/kasboek/amount"
	"github.com/robinvdvleuten/kasboek/currency"
)

var (
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
	errHintStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
)

// ErrorRenderer renders errors with terminal styling and, for the typed
// errors of the amount and currency packages, a line of context.
type ErrorRenderer struct {
	registry *currency.Registry
}

// NewErrorRenderer creates a renderer. The registry, which may be nil, is
// used to list known currencies.
func NewErrorRenderer(registry *currency.Registry) *ErrorRenderer {
	return &ErrorRenderer{registry: registry}
}

func (r *ErrorRenderer) Render(err error) string {
	var buf strings.Builder
	buf.WriteString(errorStyle.Render(errorSymbol + " " + err.Error()))

	var (
		parseErr       *amount.ParseError
		unavailableErr *currency.RateUnavailableError
		unsupportedErr *currency.UnsupportedCurrencyError
	)
	switch {
	case errors.As(err, &parseErr):
		r.context(&buf, parseErr.Input)
		if errors.As(parseErr.Err, &unsupportedErr) {
			r.knownCodes(&buf)
		}

	case errors.As(err, &unavailableErr):
		r.hint(&buf, "record one with: kasboek rate set "+unavailableErr.Code+" "+
			unavailableErr.Date.Format("2006-01-02")+" RATE")

	case errors.As(err, &unsupportedErr):
		r.knownCodes(&buf)
	}

	return buf.String()
}

func (r *ErrorRenderer) context(buf *strings.Builder, line string) {
	buf.WriteString("\n\n   ")
	buf.WriteString(errContextStyle.Render(line))
}

func (r *ErrorRenderer) hint(buf *strings.Builder, text string) {
	buf.WriteString("\n   ")
	buf.WriteString(errHintStyle.Render(infoSymbol + " " + text))
}

func (r *ErrorRenderer) knownCodes(buf *strings.Builder) {
	if r.registry == nil {
		return
	}
	r.hint(buf, "known currencies: "+strings.Join(r.registry.Codes(), ", "))
}

// exitCodeOf returns 2 for input the user has to fix and 1 otherwise.
func exitCodeOf(err error) int {
	if errors.Is(err, amount.ErrUnparseable) || errors.Is(err, currency.ErrUnsupportedCurrency) {
		return 2
	}
	return 1
}
