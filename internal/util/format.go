package util

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName returns the breed key with its first character upper-cased
// using the casing rules of tag. The rest of the key is left untouched, so
// "hound/afghan" becomes "Hound/afghan".
func DisplayName(key string, tag language.Tag) string {
	if key == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return cases.Upper(tag).String(string(r)) + key[size:]
}

// ParseLocale parses a BCP 47 tag, falling back to English.
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return language.English
	}
	return tag
}

// FormatLastViewed formats a last-viewed timestamp relative to now, or "—"
// when the breed was never opened.
func FormatLastViewed(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "—"
	}
	return humanize.Time(*t)
}

// FormatViewCount formats a view count, using "—" for zero.
func FormatViewCount(n int) string {
	if n <= 0 {
		return "—"
	}
	return humanize.Comma(int64(n))
}

// FormatImageCount formats "N image(s)".
func FormatImageCount(n int) string {
	if n == 1 {
		return "1 image"
	}
	return strconv.Itoa(n) + " images"
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
