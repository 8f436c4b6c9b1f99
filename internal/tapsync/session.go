// Package tapsync implements the manual tap-to-sync alignment session: one
// operator walks a fixed list of lyric lines during playback and records the
// onset time of each line.
package tapsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lyricsync/lyricsync/internal/lrc"
)

// Session states.
const (
	StateNotStarted = "NOT_STARTED"
	StateSyncing    = "SYNCING"
	StateCompleted  = "COMPLETED"
)

// saveTimeout bounds the persistence call made by Finalize.
const saveTimeout = 10 * time.Second

var (
	// ErrNoLines is returned when a session is created over lyrics with no
	// non-blank lines.
	ErrNoLines = errors.New("no lyric lines to synchronize")

	// ErrSaveTimeout means the persistence collaborator did not answer
	// within the save deadline. Retryable by the operator.
	ErrSaveTimeout = errors.New("save timed out")

	// ErrSaveRejected means the persistence collaborator explicitly
	// refused the document. Retryable by the operator.
	ErrSaveRejected = errors.New("save rejected")
)

// Transport controls the audio playback the operator synchronizes against.
// Implementations are external collaborators (a browser player driven over a
// websocket, a test double); the session only issues commands.
type Transport interface {
	Play()
	Pause()
	Seek(seconds float64)
}

// Store persists a finished document.
type Store interface {
	SaveDocument(ctx context.Context, songID string, doc lrc.Document) error
}

// Session is the tap-to-sync state machine. It is owned by a single
// operator connection and is not safe for concurrent use; all transitions
// are driven synchronously by discrete UI events.
type Session struct {
	songID    string
	lines     []string
	transport Transport
	store     Store

	state            string
	currentLineIndex int
	recorded         []lrc.Line
	playbackTime     float64
}

// New creates a session over the raw (unsynced) lyrics of a song. The text
// is split on line breaks and blank lines are dropped; the resulting list is
// immutable for the lifetime of the session.
func New(songID, rawLyrics string, transport Transport, store Store) (*Session, error) {
	lines := SplitLines(rawLyrics)
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	return &Session{
		songID:    songID,
		lines:     lines,
		transport: transport,
		store:     store,
		state:     StateNotStarted,
	}, nil
}

// SplitLines turns raw lyric text into the ordered non-blank line list a
// session walks through.
func SplitLines(rawLyrics string) []string {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(rawLyrics, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// SetPlaybackTime records the most recent position reported by the playback
// transport. Tap uses whatever value was last reported; feed jitter is
// accepted as inherent to manual synchronization.
func (s *Session) SetPlaybackTime(t float64) {
	if t < 0 {
		t = 0
	}
	s.playbackTime = t
}

// Start begins a sync pass: clears anything previously recorded, rewinds the
// line cursor and starts playback. Ignored unless the session is idle.
func (s *Session) Start() {
	if s.state != StateNotStarted {
		return
	}
	s.recorded = nil
	s.currentLineIndex = 0
	s.state = StateSyncing
	s.transport.Play()
}

// Tap binds the current line to the last reported playback time and advances
// to the next line. The final tap completes the session. A stray tap outside
// the syncing state, or after all lines are consumed, is ignored rather than
// treated as an error.
func (s *Session) Tap() bool {
	if s.state != StateSyncing || s.currentLineIndex >= len(s.lines) {
		return false
	}
	s.recorded = append(s.recorded, lrc.Line{
		Time: s.playbackTime,
		Text: s.lines[s.currentLineIndex],
	})
	s.currentLineIndex++
	if s.currentLineIndex == len(s.lines) {
		s.state = StateCompleted
	}
	return true
}

// Undo removes the most recently recorded line and steps the cursor back.
// Undoing out of a just-completed session returns it to syncing. No-op when
// nothing has been recorded.
func (s *Session) Undo() bool {
	if len(s.recorded) == 0 {
		return false
	}
	s.recorded = s.recorded[:len(s.recorded)-1]
	if s.currentLineIndex > 0 {
		s.currentLineIndex--
	}
	if s.state == StateCompleted {
		s.state = StateSyncing
	}
	return true
}

// AdjustLast nudges the newest recorded timestamp by delta seconds. The
// result is clamped at zero and at the previous line's time, so the recorded
// sequence stays monotonic by construction. No-op when nothing has been
// recorded.
func (s *Session) AdjustLast(delta float64) bool {
	n := len(s.recorded)
	if n == 0 {
		return false
	}
	t := s.recorded[n-1].Time + delta
	if t < 0 {
		t = 0
	}
	if n > 1 && t < s.recorded[n-2].Time {
		t = s.recorded[n-2].Time
	}
	s.recorded[n-1].Time = t
	return true
}

// Reset abandons the pass from any state: recorded lines are dropped, the
// cursor rewinds and playback is sought to zero and paused.
func (s *Session) Reset() {
	s.recorded = nil
	s.currentLineIndex = 0
	s.state = StateNotStarted
	s.transport.Seek(0)
	s.transport.Pause()
}

// Finalize hands the completed document to the persistence collaborator.
// Returns (false, nil) when the session has lines left to sync; a stray save
// click is ignored the same way a stray tap is. A timeout is distinguished
// from an explicit remote rejection so the operator can be told which
// happened; no automatic retry is performed.
func (s *Session) Finalize(ctx context.Context) (bool, error) {
	if s.state != StateCompleted {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	if err := s.store.SaveDocument(ctx, s.songID, s.Document()); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, fmt.Errorf("%w: %v", ErrSaveTimeout, err)
		}
		return false, fmt.Errorf("%w: %v", ErrSaveRejected, err)
	}
	return true, nil
}

// Document snapshots the recorded lines as a manual-source document.
func (s *Session) Document() lrc.Document {
	lines := make([]lrc.Line, len(s.recorded))
	copy(lines, s.recorded)
	return lrc.Document{Lines: lines, Source: lrc.SourceManual}
}

// State reports the coarse session state.
func (s *Session) State() string { return s.state }

// CurrentLineIndex reports how many lines have been consumed so far.
func (s *Session) CurrentLineIndex() int { return s.currentLineIndex }

// LineCount reports the fixed number of lines in the session.
func (s *Session) LineCount() int { return len(s.lines) }

// CurrentLine returns the next line awaiting a tap, or false once all lines
// are consumed.
func (s *Session) CurrentLine() (string, bool) {
	if s.currentLineIndex >= len(s.lines) {
		return "", false
	}
	return s.lines[s.currentLineIndex], true
}

// Recorded returns a copy of the lines recorded so far.
func (s *Session) Recorded() []lrc.Line {
	out := make([]lrc.Line, len(s.recorded))
	copy(out, s.recorded)
	return out
}
