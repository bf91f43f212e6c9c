package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bra3n/bra3n/internal/dialog"
	"github.com/bra3n/bra3n/internal/editor"
	"github.com/bra3n/bra3n/internal/models"
)

func newEditorHandler(noteRepo *fakeNoteRepo, summaryRepo *fakeSummaryRepo) *EditorHandler {
	manager := editor.NewManager(
		editor.NopPresenter{},
		summaryRepo,
		zap.NewNop(),
		dialog.WithDelays(time.Millisecond, time.Millisecond),
	)
	return NewEditorHandler(manager, noteRepo)
}

func editorState(t *testing.T, rec *httptest.ResponseRecorder) EditorStateResponse {
	t.Helper()

	var resp struct {
		Data EditorStateResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode editor state: %v", err)
	}
	return resp.Data
}

func TestOpenCreateDialog(t *testing.T) {
	t.Parallel()

	handler := newEditorHandler(newFakeNoteRepo(), newFakeSummaryRepo())
	router := routerFor("/editor", handler.RegisterRoutes)
	user := testUser(models.PlanTypeStarter)

	req := authedRequest(t, "POST", "/editor/dialogs/create/open", nil, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	state := editorState(t, rec)
	if got := state.Dialogs["create"]; got != "preparing" && got != "open" {
		t.Errorf("Expected create dialog preparing or open, got %q", got)
	}
	if state.Draft.Title != "" || len(state.Draft.Tags) != 0 {
		t.Error("Expected a fresh draft for the create dialog")
	}
}

func TestOpenEditDialog_LoadsNote(t *testing.T) {
	t.Parallel()

	user := testUser(models.PlanTypeStarter)
	note := &models.Note{
		ID:      uuid.New(),
		BrainID: uuid.New(),
		UserID:  user.ID,
		Title:   "Architecture notes",
		Content: "Event-driven, mostly",
		Tags:    []string{"architecture"},
		AIModel: models.AIModelOpenAI,
	}
	handler := newEditorHandler(newFakeNoteRepo(note), newFakeSummaryRepo())
	router := routerFor("/editor", handler.RegisterRoutes)

	noteID := note.ID.String()
	req := authedRequest(t, "POST", "/editor/dialogs/edit/open", OpenDialogRequest{NoteID: &noteID}, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	state := editorState(t, rec)
	if state.Draft.Title != "Architecture notes" {
		t.Errorf("Expected draft loaded from note, got title %q", state.Draft.Title)
	}
	if state.Draft.AIModel != models.AIModelOpenAI {
		t.Errorf("Expected draft model openai, got %s", state.Draft.AIModel)
	}
}

func TestOpenEditDialog_RequiresNoteID(t *testing.T) {
	t.Parallel()

	handler := newEditorHandler(newFakeNoteRepo(), newFakeSummaryRepo())
	router := routerFor("/editor", handler.RegisterRoutes)

	req := authedRequest(t, "POST", "/editor/dialogs/edit/open", map[string]string{}, testUser(models.PlanTypeStarter))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without note_id, got %d", rec.Code)
	}
}

func TestOpenDialog_OtherUsersNoteHidden(t *testing.T) {
	t.Parallel()

	owner := testUser(models.PlanTypeStarter)
	note := &models.Note{ID: uuid.New(), BrainID: uuid.New(), UserID: owner.ID, Title: "Private"}
	handler := newEditorHandler(newFakeNoteRepo(note), newFakeSummaryRepo())
	router := routerFor("/editor", handler.RegisterRoutes)

	noteID := note.ID.String()
	req := authedRequest(t, "POST", "/editor/dialogs/view/open", OpenDialogRequest{NoteID: &noteID}, testUser(models.PlanTypeStarter))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for another user's note, got %d", rec.Code)
	}
}

func TestOpenDialog_UnknownKind(t *testing.T) {
	t.Parallel()

	handler := newEditorHandler(newFakeNoteRepo(), newFakeSummaryRepo())
	router := routerFor("/editor", handler.RegisterRoutes)

	req := authedRequest(t, "POST", "/editor/dialogs/settings/open", nil, testUser(models.PlanTypeStarter))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown dialog kind, got %d", rec.Code)
	}
}

func TestDraftFieldAndTagFlow(t *testing.T) {
	t.Parallel()

	handler := newEditorHandler(newFakeNoteRepo(), newFakeSummaryRepo())
	router := routerFor("/editor", handler.RegisterRoutes)
	user := testUser(models.PlanTypeStarter)

	do := func(method, target string, body any) *httptest.ResponseRecorder {
		req := authedRequest(t, method, target, body, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	title := "Draft title"
	tagInput := "golang"
	rec := do("PATCH", "/editor/draft", UpdateDraftRequest{Title: &title, TagInput: &tagInput})
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH /draft: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	// Enter commits the pending tag input
	rec = do("POST", "/editor/draft/tags/key", TagKeyRequest{Key: "Enter"})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /draft/tags/key: expected 200, got %d", rec.Code)
	}
	var keyResp struct {
		Data struct {
			Committed bool             `json:"committed"`
			Draft     editor.DraftView `json:"draft"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&keyResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !keyResp.Data.Committed {
		t.Error("Expected Enter to commit the tag")
	}
	if len(keyResp.Data.Draft.Tags) != 1 || keyResp.Data.Draft.Tags[0] != "golang" {
		t.Fatalf("Expected tags [golang], got %v", keyResp.Data.Draft.Tags)
	}
	if keyResp.Data.Draft.TagInput != "" {
		t.Error("Expected tag input cleared after commit")
	}

	// Removing the tag empties the set again
	rec = do("DELETE", "/editor/draft/tags/golang", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE /draft/tags/golang: expected 200, got %d", rec.Code)
	}
	var draftResp struct {
		Data editor.DraftView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&draftResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(draftResp.Data.Tags) != 0 {
		t.Errorf("Expected no tags after removal, got %v", draftResp.Data.Tags)
	}
	if draftResp.Data.Title != "Draft title" {
		t.Errorf("Expected title preserved, got %q", draftResp.Data.Title)
	}
}

func TestUpdateDraft_RejectsUnknownModel(t *testing.T) {
	t.Parallel()

	handler := newEditorHandler(newFakeNoteRepo(), newFakeSummaryRepo())
	router := routerFor("/editor", handler.RegisterRoutes)

	bad := "gemini"
	req := authedRequest(t, "PATCH", "/editor/draft", UpdateDraftRequest{AIModel: &bad}, testUser(models.PlanTypeStarter))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown ai_model, got %d", rec.Code)
	}
}

func TestCloseSession(t *testing.T) {
	t.Parallel()

	handler := newEditorHandler(newFakeNoteRepo(), newFakeSummaryRepo())
	router := routerFor("/editor", handler.RegisterRoutes)
	user := testUser(models.PlanTypeStarter)

	title := "Scratch"
	req := authedRequest(t, "PATCH", "/editor/draft", UpdateDraftRequest{Title: &title}, user)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = authedRequest(t, "DELETE", "/editor/session", nil, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	// A new session starts from a clean draft
	req = authedRequest(t, "GET", "/editor/state", nil, user)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	state := editorState(t, rec)
	if state.Draft.Title != "" {
		t.Errorf("Expected fresh draft after session close, got title %q", state.Draft.Title)
	}
}
