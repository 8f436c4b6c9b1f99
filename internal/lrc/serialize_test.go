package lrc

import (
	"errors"
	"strings"
	"testing"
)

func TestMarshalLRC(t *testing.T) {
	t.Run("NoMetadata", func(t *testing.T) {
		doc := Document{Lines: []Line{{Time: 0.5, Text: "Hello"}, {Time: 3.2, Text: "World"}}}
		out, err := MarshalLRC(doc)
		if err != nil {
			t.Fatalf("MarshalLRC: %v", err)
		}
		want := "[00:00.50]Hello\n[00:03.20]World"
		if out != want {
			t.Errorf("MarshalLRC() = %q, want %q", out, want)
		}
	})

	t.Run("WithMetadata", func(t *testing.T) {
		doc := Document{
			Lines: []Line{{Time: 1.2, Text: "line"}},
			Metadata: Metadata{
				Title:           "Hosanna",
				Artist:          "Ronn The Voice",
				Album:           "Adorons",
				DurationSeconds: 225,
			},
		}
		out, err := MarshalLRC(doc)
		if err != nil {
			t.Fatalf("MarshalLRC: %v", err)
		}
		want := strings.Join([]string{
			"[ti:Hosanna]",
			"[ar:Ronn The Voice]",
			"[al:Adorons]",
			"[length:03:45]",
			"[by:LyricSync]",
			"",
			"[00:01.20]line",
		}, "\n")
		if out != want {
			t.Errorf("MarshalLRC() = %q, want %q", out, want)
		}
	})

	t.Run("PartialMetadata", func(t *testing.T) {
		doc := Document{
			Lines:    []Line{{Time: 0, Text: "line"}},
			Metadata: Metadata{Title: "Only Title"},
		}
		out, err := MarshalLRC(doc)
		if err != nil {
			t.Fatalf("MarshalLRC: %v", err)
		}
		want := "[ti:Only Title]\n[by:LyricSync]\n\n[00:00.00]line"
		if out != want {
			t.Errorf("MarshalLRC() = %q, want %q", out, want)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		doc := Document{Lines: []Line{{Time: 12.34, Text: "again"}}}
		a, _ := MarshalLRC(doc)
		b, _ := MarshalLRC(doc)
		if a != b {
			t.Errorf("same document produced different output: %q vs %q", a, b)
		}
	})

	t.Run("NegativeTime", func(t *testing.T) {
		doc := Document{Lines: []Line{{Time: -1, Text: "bad"}}}
		if _, err := MarshalLRC(doc); !errors.Is(err, ErrNegativeTime) {
			t.Errorf("expected ErrNegativeTime, got %v", err)
		}
	})
}

func TestMarshalSRT(t *testing.T) {
	t.Run("Cues", func(t *testing.T) {
		doc := Document{Lines: []Line{
			{Time: 1.2, Text: "first"},
			{Time: 5.5, Text: "second"},
		}}
		out, err := MarshalSRT(doc)
		if err != nil {
			t.Fatalf("MarshalSRT: %v", err)
		}
		want := "1\n00:00:01,200 --> 00:00:05,500\nfirst\n\n" +
			"2\n00:00:05,500 --> 00:00:08,500\nsecond\n\n"
		if out != want {
			t.Errorf("MarshalSRT() = %q, want %q", out, want)
		}
	})

	t.Run("LastCueFallback", func(t *testing.T) {
		// A lone final line ends exactly three seconds after it starts.
		doc := Document{Lines: []Line{{Time: 63.5, Text: "only"}}}
		out, err := MarshalSRT(doc)
		if err != nil {
			t.Fatalf("MarshalSRT: %v", err)
		}
		if !strings.Contains(out, "00:01:03,500 --> 00:01:06,500") {
			t.Errorf("missing +3s fallback end time, got %q", out)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		out, err := MarshalSRT(Document{})
		if err != nil {
			t.Fatalf("MarshalSRT: %v", err)
		}
		if out != "" {
			t.Errorf("empty document should serialize to empty string, got %q", out)
		}
	})
}
