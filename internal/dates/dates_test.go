package dates

import (
	"testing"
	"time"
)

func TestNormalizeAssumesUTCWhenNoOffset(t *testing.T) {
	got := Normalize("2024-06-01 12:00:00", "Europe/Madrid")
	if got == nil {
		t.Fatalf("Normalize returned nil for valid date")
	}
	// 无偏移 → 按 UTC 解析，马德里夏令时为 UTC+2
	if got.Hour() != 14 {
		t.Fatalf("hour = %d, want 14 (UTC 12:00 in Europe/Madrid DST)", got.Hour())
	}
}

func TestNormalizePreservesInstantWithExplicitOffset(t *testing.T) {
	raw := "2024-06-01T12:00:00+00:00"
	got := Normalize(raw, "Europe/Madrid")
	if got == nil {
		t.Fatalf("Normalize returned nil for %q", raw)
	}

	ref, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Fatalf("reference parse: %v", err)
	}
	// 换时区不应改变绝对时刻
	if !got.Equal(ref) {
		t.Fatalf("instant changed across zones: got %v, want %v", got, ref)
	}
	if got.UTC().Hour() != 12 {
		t.Fatalf("round-trip UTC hour = %d, want 12", got.UTC().Hour())
	}
}

func TestNormalizeInvalidInputs(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		tzname string
	}{
		{"empty", "", "Europe/Madrid"},
		{"garbage", "no es una fecha", "Europe/Madrid"},
		{"bad tz", "2024-06-01", "Mars/Olympus"},
	}
	for _, c := range cases {
		if got := Normalize(c.raw, c.tzname); got != nil {
			t.Fatalf("%s: Normalize(%q, %q) = %v, want nil", c.name, c.raw, c.tzname, got)
		}
	}
}

func TestIsRecentWindowBoundaries(t *testing.T) {
	fixed := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	old := fixed.Add(-25 * time.Hour)
	if IsRecent(&old, "Europe/Madrid", 24) {
		t.Fatalf("25h old article should not be recent with 24h window")
	}

	fresh := fixed.Add(-23 * time.Hour)
	if !IsRecent(&fresh, "Europe/Madrid", 24) {
		t.Fatalf("23h old article should be recent with 24h window")
	}
}

func TestIsRecentNilAndBadZone(t *testing.T) {
	if IsRecent(nil, "Europe/Madrid", 24) {
		t.Fatalf("nil time should never be recent")
	}
	tt := time.Now()
	if IsRecent(&tt, "Mars/Olympus", 24) {
		t.Fatalf("invalid timezone should return false")
	}
}
