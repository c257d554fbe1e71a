// Package i18n holds the English and Hindi string tables and the helpers
// that pick a locale and render localized amounts.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// Supported lists the locales with a string table, default first.
var Supported = []domain.Locale{domain.LocaleEN, domain.LocaleHI}

var tags = []language.Tag{language.English, language.Hindi}

// Catalog resolves keys per locale. It is read-only after construction
// and safe for concurrent use.
type Catalog struct {
	tables   map[domain.Locale]map[string]string
	matcher  language.Matcher
	printers map[domain.Locale]*message.Printer
}

// New returns the built-in catalog.
func New() *Catalog {
	return &Catalog{
		tables: map[domain.Locale]map[string]string{
			domain.LocaleEN: english,
			domain.LocaleHI: hindi,
		},
		matcher: language.NewMatcher(tags),
		printers: map[domain.Locale]*message.Printer{
			domain.LocaleEN: message.NewPrinter(language.English),
			domain.LocaleHI: message.NewPrinter(language.Hindi),
		},
	}
}

// IsSupported reports whether a string table exists for s.
func (c *Catalog) IsSupported(s string) bool {
	_, ok := c.tables[domain.Locale(strings.ToLower(s))]
	return ok
}

// Lookup returns the string for key in locale, falling back to English and
// then to the key itself.
func (c *Catalog) Lookup(locale domain.Locale, key string) (string, bool) {
	if v, ok := c.tables[locale][key]; ok {
		return v, true
	}
	if v, ok := c.tables[domain.LocaleEN][key]; ok {
		return v, true
	}
	return key, false
}

// T renders key for locale. With args the entry is used as a format string
// and numbers are printed with the locale's digit grouping.
func (c *Catalog) T(locale domain.Locale, key string, args ...any) string {
	s, _ := c.Lookup(locale, key)
	if len(args) == 0 {
		return s
	}
	return c.printer(locale).Sprintf(s, args...)
}

// Amount formats a rupee amount, e.g. ₹2,500.
func (c *Catalog) Amount(locale domain.Locale, v float64) string {
	p := c.printer(locale)
	if v == float64(int64(v)) {
		return "₹" + p.Sprintf("%d", int64(v))
	}
	return "₹" + p.Sprintf("%.2f", v)
}

// Status renders a job status label.
func (c *Catalog) Status(locale domain.Locale, s domain.JobStatus) string {
	return c.T(locale, string(s))
}

// Dictionary returns a copy of the full table for locale, English entries
// filling the gaps.
func (c *Catalog) Dictionary(locale domain.Locale) map[string]string {
	out := make(map[string]string, len(c.tables[domain.LocaleEN]))
	for k, v := range c.tables[domain.LocaleEN] {
		out[k] = v
	}
	for k, v := range c.tables[locale] {
		out[k] = v
	}
	return out
}

// Negotiate picks the best supported locale for an Accept-Language header.
func (c *Catalog) Negotiate(acceptLanguage string) domain.Locale {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return domain.LocaleEN
	}
	_, idx, conf := c.matcher.Match(prefs...)
	if conf == language.No {
		return domain.LocaleEN
	}
	return Supported[idx]
}

func (c *Catalog) printer(locale domain.Locale) *message.Printer {
	if p, ok := c.printers[locale]; ok {
		return p
	}
	return c.printers[domain.LocaleEN]
}
