package lrc

import (
	"fmt"
	"strings"
)

// byMarker is the fixed creator tag written into every LRC header.
const byMarker = "LyricSync"

// srtFallbackSeconds is the cue duration given to the final line, which has
// no successor to bound it.
const srtFallbackSeconds = 3

// MarshalLRC renders a document as LRC text. When any metadata field is set,
// a tag header and a separating blank line are emitted first; a document
// without metadata serializes to the timestamped lines alone. The output is
// a pure function of the document, so serializing the same document twice
// yields byte-identical text.
func MarshalLRC(doc Document) (string, error) {
	var b strings.Builder

	if !doc.Metadata.empty() {
		if doc.Metadata.Title != "" {
			fmt.Fprintf(&b, "[ti:%s]\n", doc.Metadata.Title)
		}
		if doc.Metadata.Artist != "" {
			fmt.Fprintf(&b, "[ar:%s]\n", doc.Metadata.Artist)
		}
		if doc.Metadata.Album != "" {
			fmt.Fprintf(&b, "[al:%s]\n", doc.Metadata.Album)
		}
		if doc.Metadata.DurationSeconds > 0 {
			fmt.Fprintf(&b, "[length:%s]\n", FormatDuration(doc.Metadata.DurationSeconds))
		}
		fmt.Fprintf(&b, "[by:%s]\n", byMarker)
		b.WriteString("\n")
	}

	for i, line := range doc.Lines {
		ts, err := FormatTimestamp(line.Time)
		if err != nil {
			return "", fmt.Errorf("marshal LRC line %d: %w", i, err)
		}
		b.WriteString(ts)
		b.WriteString(line.Text)
		if i < len(doc.Lines)-1 {
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

// MarshalSRT renders a document as SRT subtitle cues. Each cue ends where
// the next line starts; the final cue gets a fixed three-second duration
// since no audio analysis is available to bound it.
func MarshalSRT(doc Document) (string, error) {
	var b strings.Builder

	for i, line := range doc.Lines {
		if line.Time < 0 {
			return "", fmt.Errorf("marshal SRT cue %d: %w", i+1, ErrNegativeTime)
		}
		end := line.Time + srtFallbackSeconds
		if i+1 < len(doc.Lines) {
			end = doc.Lines[i+1].Time
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, formatSRTTime(line.Time), formatSRTTime(end), line.Text)
	}

	return b.String(), nil
}
