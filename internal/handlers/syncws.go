package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"

	"github.com/lyricsync/lyricsync/internal/lrc"
	"github.com/lyricsync/lyricsync/internal/points"
	"github.com/lyricsync/lyricsync/internal/storage"
	"github.com/lyricsync/lyricsync/internal/tapsync"
)

// SyncHandler drives a tap-to-sync session over a websocket connection. One
// connection owns one session; every state transition is triggered by a
// client message, so the session needs no locking.
type SyncHandler struct {
	store *storage.Store
	cache *storage.Cache
}

// NewSyncHandler creates a new sync websocket handler. The cache may be nil.
func NewSyncHandler(store *storage.Store, cache *storage.Cache) *SyncHandler {
	return &SyncHandler{store: store, cache: cache}
}

// syncMessage is a client command.
type syncMessage struct {
	Action string  `json:"action"`
	Time   float64 `json:"time"`
	Delta  float64 `json:"delta"`
	UserID string  `json:"user_id"`
}

// wsTransport relays playback commands to the client player, which owns the
// actual audio element.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) send(v interface{}) {
	if err := t.conn.WriteJSON(v); err != nil {
		log.Debug().Err(err).Msg("websocket transport write failed")
	}
}

func (t *wsTransport) Play() {
	t.send(map[string]string{"event": "transport", "command": "play"})
}

func (t *wsTransport) Pause() {
	t.send(map[string]string{"event": "transport", "command": "pause"})
}

func (t *wsTransport) Seek(seconds float64) {
	t.send(map[string]interface{}{"event": "transport", "command": "seek", "time": seconds})
}

// Handle runs the session loop for one connection.
func (h *SyncHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	songID := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	song, err := h.store.GetSong(ctx, songID)
	cancel()
	if err != nil {
		writeError(c, "ERR_NOT_FOUND", "Song not found")
		return
	}

	transport := &wsTransport{conn: c}
	session, err := tapsync.New(songID, song.LyricsText, transport, h.store)
	if err != nil {
		writeError(c, "ERR_NO_LINES", err.Error())
		return
	}

	log.Info().Str("song_id", songID).Msg("sync session opened")
	h.writeState(c, session)

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			log.Debug().Str("song_id", songID).Err(err).Msg("sync session closed")
			return
		}

		var msg syncMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			writeError(c, "ERR_INVALID_MESSAGE", "Invalid message")
			continue
		}

		switch msg.Action {
		case "time":
			session.SetPlaybackTime(msg.Time)
			// Live highlight: the active line among those recorded so far.
			transport.send(map[string]interface{}{
				"event": "active_line",
				"index": lrc.LineIndexAt(session.Recorded(), msg.Time),
			})
			continue

		case "start":
			session.Start()
			h.markSyncing(songID)

		case "tap":
			session.Tap()

		case "undo":
			session.Undo()

		case "adjust":
			session.AdjustLast(msg.Delta)

		case "reset":
			session.Reset()

		case "save":
			h.save(c, session, songID, msg.UserID)

		default:
			writeError(c, "ERR_UNKNOWN_ACTION", "Unknown action")
			continue
		}

		h.writeState(c, session)
	}
}

func (h *SyncHandler) save(c *websocket.Conn, session *tapsync.Session, songID, userID string) {
	saved, err := session.Finalize(context.Background())
	if err != nil {
		reason := "rejected"
		if errors.Is(err, tapsync.ErrSaveTimeout) {
			reason = "timeout"
		}
		log.Error().Str("song_id", songID).Str("reason", reason).Err(err).Msg("sync save failed")
		if werr := c.WriteJSON(map[string]string{
			"event":   "save_failed",
			"reason":  reason,
			"message": "Save failed, you can retry",
		}); werr != nil {
			log.Debug().Err(werr).Msg("websocket write failed")
		}
		return
	}
	if !saved {
		// Stray save click mid-session; ignored like a stray tap.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if h.cache != nil {
		h.cache.InvalidateDocument(ctx, songID)
	}

	result := map[string]interface{}{"event": "saved", "song_id": songID}
	if userID != "" {
		if contrib, err := h.store.AddContribution(ctx, userID, songID, points.TypeSync); err != nil {
			log.Error().Str("user_id", userID).Err(err).Msg("failed to record contribution")
		} else {
			if h.cache != nil {
				if err := h.cache.AddPoints(ctx, userID, contrib.PointsEarned); err != nil {
					log.Warn().Err(err).Msg("failed to update leaderboard")
				}
			}
			result["points_earned"] = contrib.PointsEarned
		}
	}
	if err := c.WriteJSON(result); err != nil {
		log.Debug().Err(err).Msg("websocket write failed")
	}
}

func (h *SyncHandler) markSyncing(songID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.store.UpdateSongStatus(ctx, songID, storage.StatusSyncing); err != nil {
		log.Warn().Str("song_id", songID).Err(err).Msg("failed to mark song syncing")
	}
}

func (h *SyncHandler) writeState(c *websocket.Conn, session *tapsync.Session) {
	line, _ := session.CurrentLine()
	state := map[string]interface{}{
		"event":              "state",
		"state":              session.State(),
		"current_line_index": session.CurrentLineIndex(),
		"line_count":         session.LineCount(),
		"current_line":       line,
		"recorded":           session.Recorded(),
	}
	if err := c.WriteJSON(state); err != nil {
		log.Debug().Err(err).Msg("websocket write failed")
	}
}

func writeError(c *websocket.Conn, code, message string) {
	if err := c.WriteJSON(map[string]string{
		"event":   "error",
		"code":    code,
		"message": message,
	}); err != nil {
		log.Debug().Err(err).Msg("websocket write failed")
	}
}
