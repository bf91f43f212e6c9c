package summary

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bra3n/bra3n/internal/models"
)

// blockingFetcher holds fetches until released, to simulate in-flight requests.
type blockingFetcher struct {
	mu      sync.Mutex
	results map[uuid.UUID]*models.NoteSummary
	err     error
	gate    chan struct{}
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{
		results: make(map[uuid.UUID]*models.NoteSummary),
		gate:    make(chan struct{}),
	}
}

func (f *blockingFetcher) GetNoteSummary(ctx context.Context, noteID, brainID uuid.UUID) (*models.NoteSummary, error) {
	<-f.gate
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[noteID], nil
}

func (f *blockingFetcher) release() {
	close(f.gate)
}

type immediateFetcher struct {
	result *models.NoteSummary
	err    error
}

func (f *immediateFetcher) GetNoteSummary(ctx context.Context, noteID, brainID uuid.UUID) (*models.NoteSummary, error) {
	return f.result, f.err
}

func TestStore_FetchSavedPopulatesState(t *testing.T) {
	t.Parallel()

	noteID, brainID := uuid.New(), uuid.New()
	fetcher := &immediateFetcher{result: &models.NoteSummary{
		NoteID:  noteID,
		BrainID: brainID,
		Summary: "Key points from the meeting.",
	}}
	s := NewStore(fetcher, zap.NewNop())

	s.SetNote(noteID, brainID)
	s.FetchSaved(context.Background())

	snap := s.Snapshot()
	if !snap.HasSummary {
		t.Error("Expected HasSummary=true after a saved summary was found")
	}
	if snap.Summary != "Key points from the meeting." || snap.SavedSummary != snap.Summary {
		t.Errorf("Unexpected summary state: %+v", snap)
	}
	if snap.IsLoadingSaved {
		t.Error("Expected loading flag cleared after fetch")
	}
}

func TestStore_NoSavedSummaryIsNotAnError(t *testing.T) {
	t.Parallel()

	s := NewStore(&immediateFetcher{result: nil}, zap.NewNop())
	s.SetNote(uuid.New(), uuid.New())
	s.FetchSaved(context.Background())

	snap := s.Snapshot()
	if snap.HasSummary || snap.Summary != "" {
		t.Errorf("Expected empty state when no summary saved, got %+v", snap)
	}
}

func TestStore_FetchErrorDegradesToEmpty(t *testing.T) {
	t.Parallel()

	s := NewStore(&immediateFetcher{err: errors.New("connection refused")}, zap.NewNop())
	s.SetNote(uuid.New(), uuid.New())
	s.FetchSaved(context.Background())

	snap := s.Snapshot()
	if snap.HasSummary || snap.Summary != "" {
		t.Errorf("Expected fetch error to leave empty state, got %+v", snap)
	}
	if snap.IsLoadingSaved {
		t.Error("Expected loading flag cleared after failed fetch")
	}
}

func TestStore_FetchWithoutNoteIsNoop(t *testing.T) {
	t.Parallel()

	s := NewStore(&immediateFetcher{result: &models.NoteSummary{Summary: "x"}}, zap.NewNop())
	s.FetchSaved(context.Background())

	if snap := s.Snapshot(); snap.HasSummary {
		t.Error("Expected fetch with no note set to be a no-op")
	}
}

func TestStore_SetNoteClearsSynchronously(t *testing.T) {
	t.Parallel()

	s := NewStore(&immediateFetcher{}, zap.NewNop())
	s.SetNote(uuid.New(), uuid.New())
	s.SetSummary("old note summary")

	s.SetNote(uuid.New(), uuid.New())
	snap := s.Snapshot()
	if snap.Summary != "" || snap.HasSummary {
		t.Error("Switching notes must clear the summary before any new fetch")
	}
}

func TestStore_StaleFetchIsDiscarded(t *testing.T) {
	t.Parallel()

	noteA, noteB := uuid.New(), uuid.New()
	brainID := uuid.New()
	fetcher := newBlockingFetcher()
	fetcher.results[noteA] = &models.NoteSummary{NoteID: noteA, Summary: "summary for A"}

	s := NewStore(fetcher, zap.NewNop())
	s.SetNote(noteA, brainID)

	done := make(chan struct{})
	go func() {
		s.FetchSaved(context.Background())
		close(done)
	}()

	// Navigate to note B while A's fetch is still in flight.
	s.SetNote(noteB, brainID)

	fetcher.release()
	<-done

	snap := s.Snapshot()
	if snap.NoteID != noteB {
		t.Fatalf("Expected store to point at note B, got %s", snap.NoteID)
	}
	if snap.Summary != "" || snap.HasSummary {
		t.Errorf("Stale fetch for note A must not overwrite note B's state, got %+v", snap)
	}
}

func TestStore_SetSameNoteKeepsInFlightFetch(t *testing.T) {
	t.Parallel()

	noteID, brainID := uuid.New(), uuid.New()
	fetcher := newBlockingFetcher()
	fetcher.results[noteID] = &models.NoteSummary{NoteID: noteID, Summary: "kept"}

	s := NewStore(fetcher, zap.NewNop())
	s.SetNote(noteID, brainID)

	done := make(chan struct{})
	go func() {
		s.FetchSaved(context.Background())
		close(done)
	}()

	// Re-setting the same note must not invalidate the pending fetch.
	s.SetNote(noteID, brainID)
	fetcher.release()
	<-done

	if snap := s.Snapshot(); !snap.HasSummary || snap.Summary != "kept" {
		t.Errorf("Expected in-flight fetch for the same note to apply, got %+v", snap)
	}
}
