package storage

import "testing"

func TestHashURLDeterministicAndDistinct(t *testing.T) {
	url1 := "https://example.com/a.html"
	url2 := "https://example.com/b.html"

	h1a := hashURL(url1)
	h1b := hashURL(url1)
	h2 := hashURL(url2)

	if h1a != h1b {
		t.Fatalf("hashURL not deterministic: %q vs %q", h1a, h1b)
	}
	if h1a == h2 {
		t.Fatalf("hashURL should differ for different URLs: %q", h1a)
	}
	if len(h1a) != 40 {
		t.Fatalf("hashURL length = %d, want 40 hex chars", len(h1a))
	}
}

func TestTruncateRunesDBLimits(t *testing.T) {
	s := "economía española y más texto de relleno"
	out := truncateRunesDB(s, 9)
	if got := len([]rune(out)); got != 9 {
		t.Fatalf("truncateRunesDB runes = %d, want 9: %q", got, out)
	}

	// limit 大于长度时不应截断
	if full := truncateRunesDB("corto", 10); full != "corto" {
		t.Fatalf("truncateRunesDB should keep original when under limit: %q", full)
	}
	if empty := truncateRunesDB("lo que sea", 0); empty != "" {
		t.Fatalf("zero limit should yield empty string: %q", empty)
	}
}

func TestToValidUTF8ReplacesBadBytes(t *testing.T) {
	bad := string([]byte{0xff, 0xfe}) + "texto"
	out := toValidUTF8(bad)
	if out == bad {
		t.Fatalf("invalid bytes should be replaced")
	}
	if toValidUTF8("texto válido") != "texto válido" {
		t.Fatalf("valid UTF-8 must pass through unchanged")
	}
}
