package summary

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bra3n/bra3n/internal/models"
)

// Fetcher loads the persisted summary for a note. A nil result with nil error
// means no summary has been saved, which is not an error.
type Fetcher interface {
	GetNoteSummary(ctx context.Context, noteID, brainID uuid.UUID) (*models.NoteSummary, error)
}

// Snapshot is the externally visible summary state for the current note.
type Snapshot struct {
	NoteID         uuid.UUID `json:"note_id"`
	Summary        string    `json:"summary"`
	SavedSummary   string    `json:"saved_summary"`
	HasSummary     bool      `json:"has_summary"`
	IsLoadingSaved bool      `json:"is_loading_saved"`
}

// Store caches the lazily fetched AI summary for the note currently being
// viewed. Switching notes bumps a generation counter and clears the cache
// synchronously, so a fetch still in flight for the previous note can never
// overwrite the newer note's state when it finally resolves.
type Store struct {
	fetcher Fetcher
	log     *zap.Logger

	mu           sync.Mutex
	gen          uint64
	noteID       uuid.UUID
	brainID      uuid.UUID
	summary      string
	savedSummary string
	hasSummary   bool
	loadingSaved bool
}

// NewStore creates an empty summary store.
func NewStore(fetcher Fetcher, log *zap.Logger) *Store {
	return &Store{fetcher: fetcher, log: log}
}

// SetNote switches the store to a different note, synchronously clearing the
// cached summary before any new fetch is issued. Setting the same note again
// is a no-op so an in-flight fetch for it is not discarded.
func (s *Store) SetNote(noteID, brainID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.noteID == noteID && s.brainID == brainID {
		return
	}
	s.gen++
	s.noteID = noteID
	s.brainID = brainID
	s.summary = ""
	s.savedSummary = ""
	s.hasSummary = false
	s.loadingSaved = false
}

// Snapshot returns the current summary state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		NoteID:         s.noteID,
		Summary:        s.summary,
		SavedSummary:   s.savedSummary,
		HasSummary:     s.hasSummary,
		IsLoadingSaved: s.loadingSaved,
	}
}

// SetSummary records a freshly generated (not yet saved) summary for the
// current note.
func (s *Store) SetSummary(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = text
	s.hasSummary = text != ""
}

// FetchSaved loads the persisted summary for the current note. It is a no-op
// when no note is set. Safe to call from its own goroutine: results are
// applied only if the store still points at the note the fetch was issued
// for; a late result for a superseded note is discarded. Fetch errors are
// logged, never surfaced — the store simply reports no saved summary.
func (s *Store) FetchSaved(ctx context.Context) {
	s.mu.Lock()
	noteID, brainID := s.noteID, s.brainID
	gen := s.gen
	if noteID == uuid.Nil || brainID == uuid.Nil {
		s.mu.Unlock()
		return
	}
	s.loadingSaved = true
	s.mu.Unlock()

	saved, err := s.fetcher.GetNoteSummary(ctx, noteID, brainID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// The note changed while the fetch was in flight.
		return
	}
	s.loadingSaved = false
	if err != nil {
		s.log.Warn("summary_fetch_failed",
			zap.String("note_id", noteID.String()),
			zap.Error(err),
		)
		return
	}
	if saved == nil || saved.Summary == "" {
		return
	}
	s.summary = saved.Summary
	s.savedSummary = saved.Summary
	s.hasSummary = true
}
