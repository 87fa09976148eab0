package subscribers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
)

// JournalConfig controls rotation of a game journal file.
type JournalConfig struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

// JournalSubscriber appends every event of one game to a JSON-lines journal.
// Each line carries the bus sequence number, the event type, round and player,
// and the full event payload, so a finished game can be replayed offline.
type JournalSubscriber struct {
	id     string
	gameID string
	mu     sync.Mutex
	w      io.Writer
	logger zerolog.Logger
	lines  int
}

// NewJournalSubscriber writes the journal of gameID to w.
func NewJournalSubscriber(gameID string, w io.Writer) *JournalSubscriber {
	return &JournalSubscriber{
		id:     "journal-" + gameID,
		gameID: gameID,
		w:      w,
		logger: zerolog.New(w).With().Timestamp().Logger(),
	}
}

// OpenJournal creates <dir>/<gameID>.jsonl behind a rotating writer.
func OpenJournal(gameID string, cfg JournalConfig) (*JournalSubscriber, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("journal directory is empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory %s: %w", cfg.Dir, err)
	}
	w := &lumberjack.Logger{
		Filename:   JournalPath(cfg.Dir, gameID),
		MaxSize:    max(1, cfg.MaxSizeMB),
		MaxBackups: max(0, cfg.MaxBackups),
		Compress:   cfg.Compress,
	}
	return NewJournalSubscriber(gameID, w), nil
}

// JournalPath is where OpenJournal writes the journal for gameID.
func JournalPath(dir, gameID string) string {
	return filepath.Join(dir, gameID+".jsonl")
}

// ID returns the subscriber's unique identifier
func (js *JournalSubscriber) ID() string {
	return js.id
}

// InterestedIn returns true for every event type
func (js *JournalSubscriber) InterestedIn(string) bool {
	return true
}

// HandleEvent appends one line for the event. Events from other games are ignored.
func (js *JournalSubscriber) HandleEvent(event events.Event) {
	if event.GameID() != js.gameID {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		payload = []byte(`null`)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	entry := js.logger.Log().
		Uint64("seq", event.Sequence()).
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("event_time", event.Timestamp())
	if meta, ok := metadataOf(event); ok {
		entry.Int("round", meta.Round)
		if meta.PlayerID != "" {
			entry.Str("player_id", meta.PlayerID)
		}
	}
	entry.RawJSON("event", payload).Send()
	js.lines++
}

// Lines is the number of events written so far.
func (js *JournalSubscriber) Lines() int {
	js.mu.Lock()
	defer js.mu.Unlock()
	return js.lines
}

// Close closes the underlying writer if it can be closed.
func (js *JournalSubscriber) Close() error {
	js.mu.Lock()
	defer js.mu.Unlock()
	if c, ok := js.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func metadataOf(event events.Event) (events.EventMetadata, bool) {
	switch e := event.(type) {
	case *events.GameStartedEvent:
		return e.Metadata, true
	case *events.GameEndedEvent:
		return e.Metadata, true
	case *events.RoundStartedEvent:
		return e.Metadata, true
	case *events.IncomeAppliedEvent:
		return e.Metadata, true
	case *events.UpkeepAppliedEvent:
		return e.Metadata, true
	case *events.TurnStartedEvent:
		return e.Metadata, true
	case *events.TurnEndedEvent:
		return e.Metadata, true
	case *events.ActionAppliedEvent:
		return e.Metadata, true
	case *events.ActionRejectedEvent:
		return e.Metadata, true
	case *events.CombatStartedEvent:
		return e.Metadata, true
	case *events.CombatResolvedEvent:
		return e.Metadata, true
	case *events.HoldingCapturedEvent:
		return e.Metadata, true
	case *events.CardDrawnEvent:
		return e.Metadata, true
	case *events.TitleChangedEvent:
		return e.Metadata, true
	case *events.PhaseChangedEvent:
		return e.Metadata, true
	case *events.GameLockedEvent:
		return e.Metadata, true
	}
	return events.EventMetadata{}, false
}
