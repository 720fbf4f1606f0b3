package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncatePath fuzzes TruncatePath with random names and widths.
func FuzzTruncatePath(f *testing.F) {
	seeds := []struct {
		path  string
		width int
	}{
		{"btc-usd", 4},
		{"", 0},
		{"日本語のシリーズ", 5},
		{"very/long/series/name", -1},
	}
	for _, seed := range seeds {
		f.Add(seed.path, seed.width)
	}

	f.Fuzz(func(t *testing.T, path string, width int) {
		out := TruncatePath(path, width)
		if width > 3 && utf8.RuneCountInString(out) > width && utf8.ValidString(path) {
			t.Errorf("TruncatePath(%q, %d) = %q exceeds width", path, width, out)
		}
	})
}
