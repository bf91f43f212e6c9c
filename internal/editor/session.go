package editor

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bra3n/bra3n/internal/dialog"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/notes"
	"github.com/bra3n/bra3n/internal/summary"
)

// DraftView is a read-only snapshot of the session's draft state.
type DraftView struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Tags     []string       `json:"tags"`
	TagInput string         `json:"tag_input"`
	AIModel  models.AIModel `json:"ai_model"`
}

// Session is one user's note-editing context: a shared draft, the dialog
// lifecycle coordinator supervising it, and the summary cache for the note
// being viewed.
type Session struct {
	mu    sync.Mutex
	draft notes.Draft

	dialogs   *dialog.Coordinator
	summaries *summary.Store
}

// draftResetter adapts the session's locked draft to dialog.DraftResetter.
type draftResetter struct {
	s *Session
}

func (r draftResetter) Reset() {
	r.s.mu.Lock()
	r.s.draft.Reset()
	r.s.mu.Unlock()
}

// NewSession creates a session with all dialogs closed and an empty draft.
func NewSession(presenter dialog.Presenter, fetcher summary.Fetcher, log *zap.Logger, opts ...dialog.Option) *Session {
	s := &Session{
		summaries: summary.NewStore(fetcher, log),
	}
	s.draft = *notes.NewDraft()
	s.dialogs = dialog.NewCoordinator(presenter, draftResetter{s}, log, opts...)
	return s
}

// OpenCreate opens the create dialog over an empty draft.
func (s *Session) OpenCreate() bool {
	return s.dialogs.Open(dialog.KindCreate)
}

// OpenEdit loads the note into the draft and opens the edit dialog. The
// note's saved summary is fetched in the background.
func (s *Session) OpenEdit(ctx context.Context, note *models.Note) bool {
	return s.openWithNote(ctx, dialog.KindEdit, note)
}

// OpenView loads the note into the draft and opens the read-only view
// dialog; view teardown never clears the draft.
func (s *Session) OpenView(ctx context.Context, note *models.Note) bool {
	return s.openWithNote(ctx, dialog.KindView, note)
}

func (s *Session) openWithNote(ctx context.Context, kind dialog.Kind, note *models.Note) bool {
	if note == nil {
		return false
	}
	if !s.dialogs.Open(kind) {
		return false
	}
	s.mu.Lock()
	s.draft.Load(note)
	s.mu.Unlock()

	s.summaries.SetNote(note.ID, note.BrainID)
	go s.summaries.FetchSaved(ctx)
	return true
}

// Close requests the dialog kind be closed; teardown runs after its delay.
func (s *Session) Close(kind dialog.Kind) {
	s.dialogs.Close(kind)
}

// Unmount tears down the whole session synchronously.
func (s *Session) Unmount() {
	s.dialogs.Unmount()
}

// DialogState returns the lifecycle state of the given dialog kind.
func (s *Session) DialogState(kind dialog.Kind) dialog.State {
	return s.dialogs.State(kind)
}

// Draft returns a snapshot of the current draft.
func (s *Session) Draft() DraftView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DraftView{
		Title:    s.draft.Title,
		Content:  s.draft.Content,
		Tags:     append([]string(nil), s.draft.Tags...),
		TagInput: s.draft.TagInput,
		AIModel:  s.draft.AIModel,
	}
}

// SetFields updates the editable draft fields. Nil pointers leave the
// corresponding field untouched.
func (s *Session) SetFields(title, content, tagInput *string, model *models.AIModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if title != nil {
		s.draft.Title = *title
	}
	if content != nil {
		s.draft.Content = *content
	}
	if tagInput != nil {
		s.draft.TagInput = *tagInput
	}
	if model != nil {
		s.draft.AIModel = *model
	}
}

// CommitTag commits the pending tag input into the draft tag set.
func (s *Session) CommitTag() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.CommitTag()
}

// HandleTagKey feeds a keystroke to the draft's tag input.
func (s *Session) HandleTagKey(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.HandleTagKey(key)
}

// RemoveTag removes an exact tag from the draft.
func (s *Session) RemoveTag(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.RemoveTag(tag)
}

// ApplyDraft writes the draft onto note (for save flows).
func (s *Session) ApplyDraft(note *models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.ApplyTo(note)
}

// Summary returns the summary cache state for the note being viewed.
func (s *Session) Summary() summary.Snapshot {
	return s.summaries.Snapshot()
}

// Manager hands out one editing session per user.
type Manager struct {
	presenter dialog.Presenter
	fetcher   summary.Fetcher
	log       *zap.Logger
	opts      []dialog.Option

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a session manager.
func NewManager(presenter dialog.Presenter, fetcher summary.Fetcher, log *zap.Logger, opts ...dialog.Option) *Manager {
	return &Manager{
		presenter: presenter,
		fetcher:   fetcher,
		log:       log,
		opts:      opts,
		sessions:  make(map[uuid.UUID]*Session),
	}
}

// Session returns the user's editing session, creating it on first use.
func (m *Manager) Session(userID uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := NewSession(m.presenter, m.fetcher, m.log, m.opts...)
	m.sessions[userID] = s
	return s
}

// Drop unmounts and forgets the user's session.
func (m *Manager) Drop(userID uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		s.Unmount()
	}
}

// NopPresenter is a Presenter that resets nothing; the real presentation
// reset happens client-side, the server only sequences it.
type NopPresenter struct{}

// ResetPresentationState implements dialog.Presenter.
func (NopPresenter) ResetPresentationState() error { return nil }
