package main

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	parenthesizedText = regexp.MustCompile(`\(([^)]+)\)`)
	ordinalSuffix     = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	septAbbrev        = regexp.MustCompile(`(?i)\bsept\b\.?`)
	monthName         = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
)

// Layouts seen on vendor release-note pages, tried before the permissive parser
var versionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
}

// inferDate returns the date in the first parenthesized group of label, or
// now() in UTC when there is none or it does not parse. Dates without a zone
// are taken as UTC.
func inferDate(label string, now func() time.Time) time.Time {
	m := parenthesizedText.FindStringSubmatch(label)
	if m == nil {
		return now().UTC()
	}
	if t, ok := parseVersionDate(m[1], now); ok {
		return t
	}
	debugLog("no date in %q, using current time", label)
	return now().UTC()
}

// parseVersionDate parses the candidate text of a heading. A month and day
// without a year take the current year; a bare "3.2" is not a date.
func parseVersionDate(text string, now func() time.Time) (time.Time, bool) {
	text = strings.Join(strings.Fields(text), " ")
	text = ordinalSuffix.ReplaceAllString(text, "$1")
	text = septAbbrev.ReplaceAllString(text, "Sep")
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range versionDateLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return t, true
		}
	}

	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	if t.Year() == 0 {
		if !monthName.MatchString(text) {
			return time.Time{}, false
		}
		t = time.Date(now().UTC().Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return t, true
}
