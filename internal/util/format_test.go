package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		key  string
		tag  language.Tag
		want string
	}{
		{key: "hound", tag: language.English, want: "Hound"},
		{key: "hound/afghan", tag: language.English, want: "Hound/afghan"},
		{key: "", tag: language.English, want: ""},
		{key: "Akita", tag: language.English, want: "Akita"},
		{key: "istanbul", tag: language.Turkish, want: "İstanbul"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			require.Equal(t, tt.want, DisplayName(tt.key, tt.tag))
		})
	}
}

func TestParseLocale(t *testing.T) {
	require.Equal(t, language.English, ParseLocale("not a tag!"))
	require.Equal(t, language.Turkish, ParseLocale("tr"))
}

func TestFormatLastViewed(t *testing.T) {
	require.Equal(t, "—", FormatLastViewed(nil))
	ts := time.Now().Add(-3 * time.Hour)
	require.Equal(t, "3 hours ago", FormatLastViewed(&ts))
}

func TestFormatCounts(t *testing.T) {
	require.Equal(t, "—", FormatViewCount(0))
	require.Equal(t, "1,234", FormatViewCount(1234))
	require.Equal(t, "1 image", FormatImageCount(1))
	require.Equal(t, "10 images", FormatImageCount(10))
}

func TestTruncateString(t *testing.T) {
	require.Equal(t, "short", TruncateString("short", 10))
	require.Equal(t, "abcdefg...", TruncateString("abcdefghijklmnop", 10))
	require.Equal(t, "ab", TruncateString("abcdef", 2))
}
