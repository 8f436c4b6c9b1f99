package tapsync

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/lyricsync/lyricsync/internal/lrc"
)

// fakeTransport records the playback commands issued by a session.
type fakeTransport struct {
	playing bool
	seekTo  float64
	seeked  bool
}

func (f *fakeTransport) Play()  { f.playing = true }
func (f *fakeTransport) Pause() { f.playing = false }
func (f *fakeTransport) Seek(sec float64) {
	f.seekTo = sec
	f.seeked = true
}

// fakeStore captures the saved document or fails on demand.
type fakeStore struct {
	saved  *lrc.Document
	songID string
	err    error
	block  bool
}

func (f *fakeStore) SaveDocument(ctx context.Context, songID string, doc lrc.Document) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	f.songID = songID
	f.saved = &doc
	return nil
}

func newTestSession(t *testing.T, lyrics string) (*Session, *fakeTransport, *fakeStore) {
	t.Helper()
	transport := &fakeTransport{}
	store := &fakeStore{}
	s, err := New("song-1", lyrics, transport, store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, transport, store
}

func TestNewRequiresLines(t *testing.T) {
	if _, err := New("song-1", "\n  \n\n", &fakeTransport{}, &fakeStore{}); !errors.Is(err, ErrNoLines) {
		t.Errorf("expected ErrNoLines, got %v", err)
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("first\r\n\nsecond\n   \nthird\n")
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines() = %v, want %v", got, want)
	}
}

func TestTapInvariant(t *testing.T) {
	s, transport, _ := newTestSession(t, "one\ntwo\nthree")

	// Taps before Start are stray events, not errors.
	if s.Tap() {
		t.Error("tap before start should be ignored")
	}

	s.Start()
	if !transport.playing {
		t.Error("start should begin playback")
	}
	if s.State() != StateSyncing {
		t.Fatalf("state = %s, want SYNCING", s.State())
	}

	times := []float64{1.5, 4.2, 9.8}
	for i, at := range times {
		s.SetPlaybackTime(at)
		if !s.Tap() {
			t.Fatalf("tap %d rejected", i)
		}
		if s.CurrentLineIndex() != i+1 {
			t.Errorf("after %d taps currentLineIndex = %d", i+1, s.CurrentLineIndex())
		}
	}

	rec := s.Recorded()
	if len(rec) != 3 {
		t.Fatalf("recorded %d lines, want 3", len(rec))
	}
	for i, want := range []lrc.Line{{Time: 1.5, Text: "one"}, {Time: 4.2, Text: "two"}, {Time: 9.8, Text: "three"}} {
		if rec[i] != want {
			t.Errorf("recorded[%d] = %v, want %v", i, rec[i], want)
		}
	}

	if s.State() != StateCompleted {
		t.Errorf("state after final tap = %s, want COMPLETED", s.State())
	}
	if s.Tap() {
		t.Error("tap after completion should be ignored")
	}
}

func TestUndoInverse(t *testing.T) {
	s, _, _ := newTestSession(t, "one\ntwo")
	s.Start()

	s.SetPlaybackTime(1)
	s.Tap()

	before := s.Recorded()
	beforeIdx := s.CurrentLineIndex()

	s.SetPlaybackTime(2)
	s.Tap()
	if !s.Undo() {
		t.Fatal("undo rejected")
	}

	if s.CurrentLineIndex() != beforeIdx {
		t.Errorf("currentLineIndex = %d, want %d", s.CurrentLineIndex(), beforeIdx)
	}
	if got := s.Recorded(); !reflect.DeepEqual(got, before) {
		t.Errorf("recorded = %v, want %v", got, before)
	}
}

func TestUndoEmpty(t *testing.T) {
	s, _, _ := newTestSession(t, "one")
	s.Start()
	if s.Undo() {
		t.Error("undo with nothing recorded should be a no-op")
	}
}

func TestUndoReopensCompletedSession(t *testing.T) {
	s, _, _ := newTestSession(t, "one")
	s.Start()
	s.SetPlaybackTime(1)
	s.Tap()
	if s.State() != StateCompleted {
		t.Fatalf("state = %s, want COMPLETED", s.State())
	}
	s.Undo()
	if s.State() != StateSyncing {
		t.Errorf("state after undo = %s, want SYNCING", s.State())
	}
}

func TestAdjustLast(t *testing.T) {
	t.Run("AppliesDelta", func(t *testing.T) {
		s, _, _ := newTestSession(t, "one\ntwo")
		s.Start()
		s.SetPlaybackTime(2)
		s.Tap()
		s.SetPlaybackTime(6)
		s.Tap()

		s.AdjustLast(-1.5)
		if got := s.Recorded()[1].Time; got != 4.5 {
			t.Errorf("adjusted time = %v, want 4.5", got)
		}
	})

	t.Run("FloorsAtZero", func(t *testing.T) {
		s, _, _ := newTestSession(t, "one")
		s.Start()
		s.SetPlaybackTime(0.5)
		s.Tap()

		s.AdjustLast(-10)
		if got := s.Recorded()[0].Time; got != 0 {
			t.Errorf("adjusted time = %v, want 0", got)
		}
	})

	t.Run("ClampsAtPredecessor", func(t *testing.T) {
		// Pushing the last line before its predecessor would break the
		// monotonic invariant, so the adjustment clamps there.
		s, _, _ := newTestSession(t, "one\ntwo")
		s.Start()
		s.SetPlaybackTime(3)
		s.Tap()
		s.SetPlaybackTime(7)
		s.Tap()

		s.AdjustLast(-6)
		if got := s.Recorded()[1].Time; got != 3 {
			t.Errorf("adjusted time = %v, want clamp at 3", got)
		}
	})

	t.Run("NoopWhenEmpty", func(t *testing.T) {
		s, _, _ := newTestSession(t, "one")
		if s.AdjustLast(1) {
			t.Error("adjust with nothing recorded should be a no-op")
		}
	})
}

func TestReset(t *testing.T) {
	s, transport, _ := newTestSession(t, "one\ntwo")
	s.Start()
	s.SetPlaybackTime(1)
	s.Tap()

	s.Reset()

	if s.State() != StateNotStarted {
		t.Errorf("state = %s, want NOT_STARTED", s.State())
	}
	if s.CurrentLineIndex() != 0 || len(s.Recorded()) != 0 {
		t.Error("reset should clear recorded lines and cursor")
	}
	if !transport.seeked || transport.seekTo != 0 {
		t.Error("reset should seek playback to zero")
	}
	if transport.playing {
		t.Error("reset should pause playback")
	}
}

func TestFinalize(t *testing.T) {
	t.Run("SavesCompletedDocument", func(t *testing.T) {
		s, _, store := newTestSession(t, "one\ntwo")
		s.Start()
		s.SetPlaybackTime(1)
		s.Tap()
		s.SetPlaybackTime(2)
		s.Tap()

		saved, err := s.Finalize(context.Background())
		if err != nil || !saved {
			t.Fatalf("Finalize = (%v, %v), want (true, nil)", saved, err)
		}
		if store.songID != "song-1" {
			t.Errorf("saved song id = %q", store.songID)
		}
		if store.saved == nil || store.saved.Source != lrc.SourceManual {
			t.Errorf("saved document = %+v, want manual source", store.saved)
		}
		if len(store.saved.Lines) != 2 {
			t.Errorf("saved %d lines, want 2", len(store.saved.Lines))
		}
	})

	t.Run("NoopBeforeCompletion", func(t *testing.T) {
		s, _, _ := newTestSession(t, "one\ntwo")
		s.Start()
		s.Tap()

		saved, err := s.Finalize(context.Background())
		if saved || err != nil {
			t.Errorf("Finalize = (%v, %v), want (false, nil)", saved, err)
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		s, _, store := newTestSession(t, "one")
		store.err = errors.New("constraint violation")
		s.Start()
		s.Tap()

		_, err := s.Finalize(context.Background())
		if !errors.Is(err, ErrSaveRejected) {
			t.Errorf("expected ErrSaveRejected, got %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		s, _, store := newTestSession(t, "one")
		store.block = true
		s.Start()
		s.Tap()

		ctx, cancel := context.WithTimeout(context.Background(), 0)
		defer cancel()

		_, err := s.Finalize(ctx)
		if !errors.Is(err, ErrSaveTimeout) {
			t.Errorf("expected ErrSaveTimeout, got %v", err)
		}
	})
}
