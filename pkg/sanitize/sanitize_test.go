package sanitize

import (
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "accented french phrase",
			in:   "Été à Paris!",
			want: "ete-a-paris",
		},
		{
			name: "already sanitized",
			in:   "ete-a-paris",
			want: "ete-a-paris",
		},
		{
			name: "uppercase and punctuation",
			in:   "Kortel Design / Sellettes",
			want: "kortel-design-sellettes",
		},
		{
			name: "leading and trailing separators",
			in:   "--hello world--",
			want: "hello-world",
		},
		{
			name: "digits preserved",
			in:   "Kruyer 3",
			want: "kruyer-3",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "only symbols",
			in:   "!!!",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slug(tt.in)
			if got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugIdempotent(t *testing.T) {
	inputs := []string{
		"Été à Paris!",
		"GIN Yeti Tandem 2021",
		"déjà-vu",
		"",
		"ALREADY-UPPER",
	}
	for _, in := range inputs {
		once := Slug(in)
		twice := Slug(once)
		if once != twice {
			t.Errorf("Slug not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{
			name: "shorter than limit unchanged",
			in:   "short text",
			max:  255,
			want: "short text",
		},
		{
			name: "cuts at word boundary",
			in:   "the quick brown fox jumps",
			max:  13,
			want: "the quick",
		},
		{
			name: "exact limit unchanged",
			in:   "abcde",
			max:  5,
			want: "abcde",
		},
		{
			name: "no space in window hard cuts",
			in:   strings.Repeat("x", 30),
			max:  10,
			want: strings.Repeat("x", 10),
		},
		{
			name: "empty input",
			in:   "",
			max:  10,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if len([]rune(got)) > tt.max {
				t.Errorf("Truncate(%q, %d) = %q exceeds limit", tt.in, tt.max, got)
			}
		})
	}
}

func TestTruncateNeverSplitsWords(t *testing.T) {
	in := "un deux trois quatre cinq six sept huit neuf dix"
	for max := 3; max < len(in); max++ {
		got := Truncate(in, max)
		if got == in {
			continue
		}
		// The character following the cut point in the original must not
		// extend a word that the result ends with.
		if len(got) > 0 && got[len(got)-1] != ' ' && in[len(got)] != ' ' {
			t.Errorf("Truncate(%q, %d) = %q cut mid-word", in, max, got)
		}
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "removes tags keeps text",
			in:   "<p>Hello <strong>world</strong></p>",
			want: "Hello world",
		},
		{
			name: "collapses whitespace",
			in:   "<div>a\n\n  b\t c</div>",
			want: "a b c",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "plain text untouched",
			in:   "no markup here",
			want: "no markup here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTags(tt.in); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"l&#8217;aventure", "l’aventure"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DecodeEntities(tt.in); got != tt.want {
			t.Errorf("DecodeEntities(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMetaField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{
			name: "strips tags and disallowed characters",
			in:   "<p>Price = 100 {promo}</p>",
			max:  512,
			want: "Price 100 promo",
		},
		{
			name: "decodes entities",
			in:   "Sellettes &amp; accessoires",
			max:  512,
			want: "Sellettes & accessoires",
		},
		{
			name: "truncates on word boundary",
			in:   "one two three four",
			max:  12,
			want: "one two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MetaField(tt.in, tt.max); got != tt.want {
				t.Errorf("MetaField(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
