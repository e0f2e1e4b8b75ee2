package cost

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatUSD renders v as US dollars with two decimals and digit grouping,
// e.g. "$1,234.50" or "-$3.00".
func FormatUSD(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// FormatPercent renders a difference for display, e.g. "+20.0%". Differences
// without a percentage render as [NotApplicable].
func FormatPercent(d Difference) string {
	if d.Percent == nil {
		return NotApplicable
	}
	return "+" + d.Value + "%"
}
