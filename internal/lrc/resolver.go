package lrc

// LineIndexAt resolves the active line for a playback position: the greatest
// index whose time is <= t. Returns -1 when t precedes the first line. The
// last line stays active past its nominal end since no successor bounds it.
//
// The time feed is not assumed monotonic (manual seeking moves it backward),
// so this is a pure binary search over the sorted lines with no carried
// state.
func LineIndexAt(lines []Line, t float64) int {
	if len(lines) == 0 || t < lines[0].Time {
		return -1
	}

	left, right := 0, len(lines)-1
	result := -1
	for left <= right {
		mid := (left + right) / 2
		if lines[mid].Time <= t {
			result = mid
			left = mid + 1
		} else {
			right = mid - 1
		}
	}
	return result
}
