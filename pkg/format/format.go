// Package format holds the stateless helpers shared by the page views:
// money and date formatting, HTML escaping, match highlighting and
// fundraising progress.
package format

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DateLayout = "Mon, Jan 2, 2006"
	TimeLayout = "3:04 PM"
)

var (
	hundred = decimal.NewFromInt(100)
	printer = message.NewPrinter(language.English)
)

// ComputeProgress returns round(current/goal*100) clamped to [0,100], or 0
// when goal is not positive.
func ComputeProgress(current, goal decimal.Decimal) int {
	if !goal.IsPositive() {
		return 0
	}
	pct := current.Div(goal).Mul(hundred).Round(0).IntPart()
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}

// Currency renders an amount as dollars with grouping, e.g. "$1,250.00".
func Currency(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	if f < 0 {
		return printer.Sprintf("-$%.2f", -f)
	}
	return printer.Sprintf("$%.2f", f)
}

// Price is Currency, except that zero reads "Free".
func Price(amount decimal.Decimal) string {
	if amount.IsZero() {
		return "Free"
	}
	return Currency(amount)
}

func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// Highlight escapes text and wraps every case-insensitive occurrence of term
// in <mark>. The term is matched literally.
func Highlight(text, term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return EscapeHTML(text)
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(term))
	if err != nil {
		return EscapeHTML(text)
	}

	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		b.WriteString(EscapeHTML(text[last:loc[0]]))
		b.WriteString("<mark>")
		b.WriteString(EscapeHTML(text[loc[0]:loc[1]]))
		b.WriteString("</mark>")
		last = loc[1]
	}
	b.WriteString(EscapeHTML(text[last:]))
	return b.String()
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}
