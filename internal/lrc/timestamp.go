package lrc

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ErrNegativeTime is returned when a negative seconds value is passed to
// FormatTimestamp. Negative input is a contract violation, not something to
// clamp silently.
var ErrNegativeTime = errors.New("negative timestamp")

// timestampExactRe matches a full bracket timestamp and nothing else.
// Two fractional digits are hundredths, three are milliseconds.
var timestampExactRe = regexp.MustCompile(`^\[(\d{2}):(\d{2})\.(\d{2,3})\]$`)

// FormatTimestamp renders seconds as the LRC bracket notation [MM:SS.CC].
// Minutes are not capped: values of 100 minutes and up render with more than
// two digits.
func FormatTimestamp(seconds float64) (string, error) {
	if seconds < 0 {
		return "", fmt.Errorf("format timestamp %.2f: %w", seconds, ErrNegativeTime)
	}
	mins := int(seconds / 60)
	rem := seconds - float64(mins)*60
	return fmt.Sprintf("[%02d:%05.2f]", mins, rem), nil
}

// ParseTimestamp decodes a bracket timestamp produced by FormatTimestamp or
// found in hand-authored LRC text. The input must be exactly one bracketed
// timestamp, otherwise an error is returned.
func ParseTimestamp(s string) (float64, error) {
	m := timestampExactRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid LRC timestamp %q", s)
	}
	return timestampSeconds(m[1], m[2], m[3]), nil
}

// timestampSeconds converts already-validated digit groups to seconds.
func timestampSeconds(minStr, secStr, fracStr string) float64 {
	mins, _ := strconv.Atoi(minStr)
	secs, _ := strconv.Atoi(secStr)
	frac, _ := strconv.Atoi(fracStr)

	div := 100.0
	if len(fracStr) == 3 {
		div = 1000.0
	}
	return float64(mins*60+secs) + float64(frac)/div
}

// formatSRTTime renders seconds in the fixed-width SRT cue format
// HH:MM:SS,mmm. Unlike the LRC notation, hours are explicit and padded.
func formatSRTTime(seconds float64) string {
	total := int(math.Round(seconds * 1000))
	if total < 0 {
		total = 0
	}
	ms := total % 1000
	secs := total / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", secs/3600, (secs%3600)/60, secs%60, ms)
}

// FormatDuration renders a track duration as mm:ss for the [length:] tag.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
