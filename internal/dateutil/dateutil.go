// Package dateutil turns ISO-8601 timestamps from the catalog into display dates.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// LongLayout renders dates like "November 3, 2022".
const LongLayout = "January 2, 2006"

var (
	// ErrUnsupportedLocale is returned when the requested locale has no date layout.
	ErrUnsupportedLocale = errors.New("dateutil: unsupported locale")

	supportedLocales = []language.Tag{language.AmericanEnglish}
	localeMatcher    = language.NewMatcher(supportedLocales)

	defaultFormatter = &Formatter{loc: time.UTC, layout: LongLayout, locale: language.AmericanEnglish}
)

// input layouts accepted besides RFC 3339; they are read in the formatter's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Formatter formats timestamps in a fixed locale, time zone and prefix.
type Formatter struct {
	loc    *time.Location
	layout string
	prefix string
	locale language.Tag
}

// Option configures a Formatter.
type Option func(*Formatter) error

// WithLocale selects the output locale by BCP 47 tag. Only English is supported.
func WithLocale(tag string) Option {
	return func(f *Formatter) error {
		parsed, err := language.Parse(strings.TrimSpace(tag))
		if err != nil {
			return fmt.Errorf("dateutil: parse locale %q: %w", tag, err)
		}
		matched, _, confidence := localeMatcher.Match(parsed)
		if confidence == language.No {
			return fmt.Errorf("%w: %s", ErrUnsupportedLocale, parsed)
		}
		f.locale = matched
		return nil
	}
}

// WithTimeZone sets the IANA zone dates are displayed in (default UTC).
func WithTimeZone(name string) Option {
	return func(f *Formatter) error {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return fmt.Errorf("dateutil: load time zone %q: %w", name, err)
		}
		f.loc = loc
		return nil
	}
}

// WithLocation sets the display zone directly.
func WithLocation(loc *time.Location) Option {
	return func(f *Formatter) error {
		if loc == nil {
			return errors.New("dateutil: nil location")
		}
		f.loc = loc
		return nil
	}
}

// WithPrefix prepends text such as "Updated: " to every non-empty result.
func WithPrefix(prefix string) Option {
	return func(f *Formatter) error {
		f.prefix = prefix
		return nil
	}
}

// New builds a Formatter. Defaults: en-US long form, UTC, no prefix.
func New(opts ...Option) (*Formatter, error) {
	f := &Formatter{loc: time.UTC, layout: LongLayout, locale: language.AmericanEnglish}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Default returns the shared en-US/UTC formatter without prefix.
func Default() *Formatter { return defaultFormatter }

// Format formats iso with the default formatter.
func Format(iso string) string { return defaultFormatter.Format(iso) }

// Format returns the display form of iso behind the configured prefix, or "" when iso is
// empty or not a timestamp.
func (f *Formatter) Format(iso string) string {
	return f.Label(f.Date(iso), "")
}

// Date returns the display form of iso without any prefix, or "" when iso is not a timestamp.
func (f *Formatter) Date(iso string) string {
	if f == nil {
		f = defaultFormatter
	}
	t, ok := f.Parse(iso)
	if !ok {
		return ""
	}
	return t.In(f.loc).Format(f.layout)
}

// Label puts text behind the configured prefix. Without a prefix the caller's fallback
// label is used, so a view never shows two labels. Empty text stays empty.
func (f *Formatter) Label(text, fallback string) string {
	if f == nil {
		f = defaultFormatter
	}
	if text == "" {
		return ""
	}
	if f.prefix != "" {
		return f.prefix + text
	}
	return fallback + text
}

// Prefix returns the label set with WithPrefix.
func (f *Formatter) Prefix() string {
	if f == nil {
		return ""
	}
	return f.prefix
}

// Parse reads iso as RFC 3339 or one of the zone-less layouts.
func (f *Formatter) Parse(iso string) (time.Time, bool) {
	if f == nil {
		f = defaultFormatter
	}
	value := strings.TrimSpace(iso)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, f.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Locale reports the matched locale tag.
func (f *Formatter) Locale() language.Tag {
	if f == nil {
		return defaultFormatter.locale
	}
	return f.locale
}
