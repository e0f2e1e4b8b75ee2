package details

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is shown for null values.
const Placeholder = "—"

var (
	printer = message.NewPrinter(language.English)
	title   = cases.Title(language.English)
)

// Display renders v for a details panel: null as [Placeholder], booleans as
// Yes/No, numbers with thousands separators and at most three fraction digits,
// lists and maps as comma-separated items.
func (v Value) Display() string {
	switch v.kind {
	case KindNull:
		return Placeholder
	case KindBool:
		if v.b {
			return "Yes"
		}
		return "No"
	case KindNumber:
		return FormatNumber(v.num)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	case KindMap:
		parts := make([]string, 0, v.m.Len())
		for _, e := range v.m.Entries() {
			parts = append(parts, e.Key+": "+e.Value.String())
		}
		return strings.Join(parts, ", ")
	default:
		return v.str
	}
}

// FormatNumber formats f with English digit grouping, e.g. 1234.5678 as "1,234.568".
func FormatNumber(f float64) string {
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(3)))
}

// Label turns an attribute key into a display label. Keys are split on case
// changes, underscores and hyphens and every word is title-cased, so
// "instanceType" and "instance_type" both become "Instance Type".
func Label(key string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, title.String(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range key {
		switch {
		case r == '_' || r == '-':
			flush()
		case unicode.IsUpper(r):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return strings.Join(words, " ")
}

// Row is one labelled line of a [Panel].
type Row struct {
	Key   string
	Label string
	Value string
	Kind  Kind
}

// Panel is the display form of a payload.
type Panel struct {
	Title string
	Type  string
	Rows  []Row
}

// Keys that appear in the panel header instead of the rows.
var headerKeys = map[string]bool{"name": true, "type": true}

// NewPanel builds a panel for m. The "name" and "type" keys are lifted into the
// header and omitted from the rows.
func NewPanel(heading string, m *Map) Panel {
	p := Panel{Title: heading, Type: m.GetString("type")}
	for _, e := range m.Entries() {
		if headerKeys[e.Key] {
			continue
		}
		p.Rows = append(p.Rows, Row{
			Key:   e.Key,
			Label: Label(e.Key),
			Value: e.Value.Display(),
			Kind:  e.Value.Kind(),
		})
	}
	return p
}
