package lrc

import (
	"errors"
	"math"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "[00:00.00]"},
		{0.5, "[00:00.50]"},
		{3.2, "[00:03.20]"},
		{59.99, "[00:59.99]"},
		{60, "[01:00.00]"},
		{75.25, "[01:15.25]"},
		{3599.5, "[59:59.50]"},
		{5999.99, "[99:59.99]"},
		// Minutes are not capped at two digits.
		{6000, "[100:00.00]"},
	}

	for _, c := range cases {
		got, err := FormatTimestamp(c.seconds)
		if err != nil {
			t.Errorf("FormatTimestamp(%v) returned error: %v", c.seconds, err)
			continue
		}
		if got != c.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestFormatTimestampNegative(t *testing.T) {
	_, err := FormatTimestamp(-0.01)
	if !errors.Is(err, ErrNegativeTime) {
		t.Errorf("expected ErrNegativeTime, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Run("Hundredths", func(t *testing.T) {
		got, err := ParseTimestamp("[01:15.25]")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 75.25 {
			t.Errorf("got %v, want 75.25", got)
		}
	})

	t.Run("Milliseconds", func(t *testing.T) {
		got, err := ParseTimestamp("[00:10.490]")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(got-10.49) > 1e-9 {
			t.Errorf("got %v, want 10.49", got)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, s := range []string{"", "[1:15.25]", "[01:15]", "[01:15.2]", "01:15.25", "[01:15.25] extra", "[ti:title]"} {
			if _, err := ParseTimestamp(s); err == nil {
				t.Errorf("ParseTimestamp(%q) succeeded, want error", s)
			}
		}
	})
}

func TestCodecInverse(t *testing.T) {
	// Sweep [0, 5999.99] at hundredths precision with a coarse step.
	for cs := 0; cs <= 599999; cs += 37 {
		s := float64(cs) / 100
		encoded, err := FormatTimestamp(s)
		if err != nil {
			t.Fatalf("FormatTimestamp(%v): %v", s, err)
		}
		decoded, err := ParseTimestamp(encoded)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", encoded, err)
		}
		if math.Abs(decoded-s) > 0.01 {
			t.Fatalf("round trip %v -> %q -> %v exceeds tolerance", s, encoded, decoded)
		}
	}
}

func TestFormatSRTTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.2, "00:00:01,200"},
		{63.5, "00:01:03,500"},
		{3661.042, "01:01:01,042"},
		// Millisecond rounding must carry instead of emitting ",1000".
		{1.9996, "00:00:02,000"},
	}
	for _, c := range cases {
		if got := formatSRTTime(c.seconds); got != c.want {
			t.Errorf("formatSRTTime(%v) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(225); got != "03:45" {
		t.Errorf("FormatDuration(225) = %q, want %q", got, "03:45")
	}
	if got := FormatDuration(0); got != "00:00" {
		t.Errorf("FormatDuration(0) = %q, want %q", got, "00:00")
	}
}
