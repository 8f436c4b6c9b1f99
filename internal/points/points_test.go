package points

import "testing"

func TestForContribution(t *testing.T) {
	cases := map[string]int{
		TypeSync:       10,
		TypeCorrection: 5,
		TypeValidation: 3,
		"unknown":      0,
	}
	for contribType, want := range cases {
		if got := ForContribution(contribType); got != want {
			t.Errorf("ForContribution(%q) = %d, want %d", contribType, got, want)
		}
	}
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		total int
		want  int
	}{
		{0, 1}, {49, 1}, {50, 2}, {199, 2}, {200, 3}, {499, 3}, {500, 4}, {10000, 4},
	}
	for _, c := range cases {
		if got := LevelFor(c.total); got != c.want {
			t.Errorf("LevelFor(%d) = %d, want %d", c.total, got, c.want)
		}
	}
}
