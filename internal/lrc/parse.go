package lrc

import (
	"regexp"
	"sort"
	"strings"
)

// timestampRe finds bracket timestamps anywhere inside a lyric line. A line
// may carry several consecutive timestamps (repeated chorus convention);
// Parse keeps only the first one per line.
var timestampRe = regexp.MustCompile(`\[(\d{2}):(\d{2})\.(\d{2,3})\]`)

// metadataPrefixes are ID tags that must never be treated as lyric lines,
// even when malformed. Checked before any timestamp extraction.
var metadataPrefixes = []string{"[ti:", "[ar:", "[al:", "[by:", "[offset:", "[length:"}

func isMetadataLine(line string) bool {
	for _, p := range metadataPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Parse turns raw LRC text into an ordered sequence of synced lines.
//
// Individual malformed lines are skipped, never surfaced: lines without a
// valid timestamp, metadata tag lines, and lines whose text is empty after
// stripping markers are all dropped. The result is stable-sorted by time, so
// equal timestamps preserve their original order. An empty result on
// non-empty input is a normal outcome here; callers that require synced
// content report ErrNoSyncedContent.
func Parse(text string) []Line {
	result := []Line{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isMetadataLine(line) {
			continue
		}

		m := timestampRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		// Lyric text is everything after the last bracket, which also
		// strips any repeated timestamps beyond the first.
		idx := strings.LastIndex(line, "]")
		lyric := strings.TrimSpace(line[idx+1:])
		if lyric == "" {
			continue
		}

		result = append(result, Line{
			Time: timestampSeconds(m[1], m[2], m[3]),
			Text: lyric,
		})
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Time < result[j].Time })
	return result
}

// ParseDocument wraps Parse with a source tag for imported LRC files.
func ParseDocument(text string) Document {
	return Document{
		Lines:  Parse(text),
		Source: SourceLRCImport,
	}
}

// IsSynced reports whether text contains at least one timestamped lyric line.
// Used to detect an LRC file submitted in place of plain lyrics.
func IsSynced(text string) bool {
	return len(Parse(text)) > 0
}

// PlainText extracts a display-only lyric transcript from LRC text: the same
// line set with timestamps stripped, newline-joined. Metadata tags and lines
// that are empty after stripping are dropped.
func PlainText(text string) string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isMetadataLine(line) {
			continue
		}
		if idx := strings.LastIndex(line, "]"); idx >= 0 {
			line = strings.TrimSpace(line[idx+1:])
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
