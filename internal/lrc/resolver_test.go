package lrc

import "testing"

func TestLineIndexAt(t *testing.T) {
	lines := []Line{
		{Time: 0, Text: "a"},
		{Time: 5, Text: "b"},
		{Time: 10, Text: "c"},
	}

	cases := []struct {
		name string
		t    float64
		want int
	}{
		{"BeforeFirst", -1, -1},
		{"AtFirst", 0, 0},
		{"BeforeSecond", 4.9, 0},
		{"AtBoundary", 5, 1},
		{"BetweenSecondAndThird", 5.9, 1},
		{"AtLast", 10, 2},
		{"PastEnd", 100, 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := LineIndexAt(lines, c.t); got != c.want {
				t.Errorf("LineIndexAt(lines, %v) = %d, want %d", c.t, got, c.want)
			}
		})
	}
}

func TestLineIndexAtEmpty(t *testing.T) {
	if got := LineIndexAt(nil, 3); got != -1 {
		t.Errorf("empty document should resolve to -1, got %d", got)
	}
}

func TestLineIndexAtNonMonotonicFeed(t *testing.T) {
	// Seeking backwards must resolve correctly with no carried state.
	lines := []Line{{Time: 0, Text: "a"}, {Time: 5, Text: "b"}}
	if got := LineIndexAt(lines, 7); got != 1 {
		t.Fatalf("forward resolve = %d, want 1", got)
	}
	if got := LineIndexAt(lines, 2); got != 0 {
		t.Errorf("backward resolve = %d, want 0", got)
	}
}
