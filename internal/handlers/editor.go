package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/dialog"
	"github.com/bra3n/bra3n/internal/editor"
	"github.com/bra3n/bra3n/internal/middleware"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/summary"
)

// EditorHandler exposes the per-user note editing session: dialog lifecycle,
// shared draft, and the summary cache for the note being viewed
type EditorHandler struct {
	sessions *editor.Manager
	noteRepo database.NoteRepositoryInterface
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(sessions *editor.Manager, noteRepo database.NoteRepositoryInterface) *EditorHandler {
	return &EditorHandler{sessions: sessions, noteRepo: noteRepo}
}

// RegisterRoutes registers editor routes on the given router
// The router should already have the /editor prefix
func (h *EditorHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/state", h.GetState).Methods("GET")
	r.HandleFunc("/dialogs/{kind}/open", h.OpenDialog).Methods("POST")
	r.HandleFunc("/dialogs/{kind}/close", h.CloseDialog).Methods("POST")
	r.HandleFunc("/draft", h.UpdateDraft).Methods("PATCH")
	r.HandleFunc("/draft/tags", h.CommitTag).Methods("POST")
	r.HandleFunc("/draft/tags/key", h.TagKey).Methods("POST")
	r.HandleFunc("/draft/tags/{tag}", h.RemoveTag).Methods("DELETE")
	r.HandleFunc("/session", h.CloseSession).Methods("DELETE")
}

// OpenDialogRequest optionally names the note an edit or view dialog targets
type OpenDialogRequest struct {
	NoteID *string `json:"note_id,omitempty"`
}

// UpdateDraftRequest carries partial draft field updates
type UpdateDraftRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	TagInput *string `json:"tag_input,omitempty"`
	AIModel  *string `json:"ai_model,omitempty" validate:"omitempty,ai_model"`
}

// TagKeyRequest carries a single keystroke for the tag input
type TagKeyRequest struct {
	Key string `json:"key" validate:"required"`
}

// EditorStateResponse is the full editor session snapshot
type EditorStateResponse struct {
	Dialogs map[string]string `json:"dialogs"`
	Draft   editor.DraftView  `json:"draft"`
	Summary summary.Snapshot  `json:"summary"`
}

// GetState returns the current session state
func (h *EditorHandler) GetState(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	respondJSON(w, http.StatusOK, h.stateFor(h.sessions.Session(user.ID)))
}

// OpenDialog opens a dialog of the given kind. Edit and view dialogs require
// a note_id; create starts from a fresh draft.
func (h *EditorHandler) OpenDialog(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	kind, ok := pathDialogKind(w, r)
	if !ok {
		return
	}

	session := h.sessions.Session(user.ID)

	var opened bool
	switch kind {
	case dialog.KindCreate:
		opened = session.OpenCreate()

	case dialog.KindEdit, dialog.KindView:
		var req OpenDialogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NoteID == nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "note_id is required")
			return
		}
		noteID, err := uuid.Parse(*req.NoteID)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid note_id")
			return
		}
		note, err := h.noteRepo.GetByID(r.Context(), noteID)
		if err != nil || note.UserID != user.ID {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Note not found")
			return
		}
		if kind == dialog.KindEdit {
			opened = session.OpenEdit(r.Context(), note)
		} else {
			opened = session.OpenView(r.Context(), note)
		}
	}

	if !opened {
		respondJSONError(w, http.StatusConflict, "Conflict", "Dialog cannot open in its current state")
		return
	}

	respondJSON(w, http.StatusOK, h.stateFor(session))
}

// CloseDialog requests the dialog be closed; teardown completes asynchronously
func (h *EditorHandler) CloseDialog(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	kind, ok := pathDialogKind(w, r)
	if !ok {
		return
	}

	session := h.sessions.Session(user.ID)
	session.Close(kind)

	respondJSON(w, http.StatusOK, h.stateFor(session))
}

// UpdateDraft applies partial field updates to the shared draft
func (h *EditorHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req UpdateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	var model *models.AIModel
	if req.AIModel != nil {
		m := models.AIModel(*req.AIModel)
		if m != models.AIModelClaude && m != models.AIModelOpenAI {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid ai_model")
			return
		}
		model = &m
	}

	session := h.sessions.Session(user.ID)
	session.SetFields(req.Title, req.Content, req.TagInput, model)

	respondJSON(w, http.StatusOK, session.Draft())
}

// CommitTag commits the pending tag input into the draft's tag set
func (h *EditorHandler) CommitTag(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	session := h.sessions.Session(user.ID)
	session.CommitTag()

	respondJSON(w, http.StatusOK, session.Draft())
}

// TagKey feeds a keystroke to the tag input; Enter and comma commit
func (h *EditorHandler) TagKey(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req TagKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "key is required")
		return
	}

	session := h.sessions.Session(user.ID)
	committed := session.HandleTagKey(req.Key)

	respondJSON(w, http.StatusOK, map[string]any{
		"committed": committed,
		"draft":     session.Draft(),
	})
}

// RemoveTag removes an exact tag from the draft
func (h *EditorHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	session := h.sessions.Session(user.ID)
	session.RemoveTag(mux.Vars(r)["tag"])

	respondJSON(w, http.StatusOK, session.Draft())
}

// CloseSession tears the whole editing session down synchronously
func (h *EditorHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	h.sessions.Drop(user.ID)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Session closed"})
}

func (h *EditorHandler) stateFor(session *editor.Session) EditorStateResponse {
	dialogs := make(map[string]string, len(dialog.Kinds))
	for _, kind := range dialog.Kinds {
		dialogs[string(kind)] = session.DialogState(kind).String()
	}
	return EditorStateResponse{
		Dialogs: dialogs,
		Draft:   session.Draft(),
		Summary: session.Summary(),
	}
}

func pathDialogKind(w http.ResponseWriter, r *http.Request) (dialog.Kind, bool) {
	raw := mux.Vars(r)["kind"]
	for _, kind := range dialog.Kinds {
		if string(kind) == raw {
			return kind, true
		}
	}
	respondJSONError(w, http.StatusBadRequest, "Bad Request", "Unknown dialog kind: "+raw)
	return "", false
}
