package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/queue"
)

func TestListNotes_TagFilterAndSearch(t *testing.T) {
	t.Parallel()

	user := testUser(models.PlanTypeStarter)
	brain := &models.Brain{ID: uuid.New(), UserID: user.ID, Name: "Work"}

	noteRepo := newFakeNoteRepo(
		&models.Note{ID: uuid.New(), BrainID: brain.ID, UserID: user.ID, Title: "Quarterly roadmap", Tags: []string{"planning"}},
		&models.Note{ID: uuid.New(), BrainID: brain.ID, UserID: user.ID, Title: "Roadmap retro", Tags: []string{"retro"}},
		&models.Note{ID: uuid.New(), BrainID: brain.ID, UserID: user.ID, Title: "Grocery list", Tags: []string{"planning"}},
	)
	handler := NewNoteHandler(noteRepo, newFakeBrainRepo(brain), &fakeJobQueue{})
	router := routerFor("/brains/{brain_id}/notes", handler.RegisterRoutes)

	base := "/brains/" + brain.ID.String() + "/notes"

	tests := []struct {
		name      string
		target    string
		wantCount int
	}{
		{name: "no filters", target: base, wantCount: 3},
		{name: "tag filter", target: base + "?tag=planning", wantCount: 2},
		{name: "search query", target: base + "?q=roadmap", wantCount: 2},
		{name: "tag and search combined", target: base + "?tag=planning&q=roadmap", wantCount: 1},
		{name: "no matches", target: base + "?q=nonexistent", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := authedRequest(t, "GET", tt.target, nil, user)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
			}

			var body struct {
				Data []json.RawMessage `json:"data"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if len(body.Data) != tt.wantCount {
				t.Errorf("Expected %d notes, got %d", tt.wantCount, len(body.Data))
			}
		})
	}
}

func TestCreateNote_QueuesSummaryJob(t *testing.T) {
	t.Parallel()

	user := testUser(models.PlanTypeStarter)
	brain := &models.Brain{ID: uuid.New(), UserID: user.ID, Name: "Work"}
	jobQueue := &fakeJobQueue{}
	handler := NewNoteHandler(newFakeNoteRepo(), newFakeBrainRepo(brain), jobQueue)
	router := routerFor("/brains/{brain_id}/notes", handler.RegisterRoutes)

	body := CreateNoteRequest{
		Title:   "Meeting notes",
		Content: "Discussed the launch plan",
		Tags:    []string{"meetings", "meetings", "launch"},
	}
	req := authedRequest(t, "POST", "/brains/"+brain.ID.String()+"/notes", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	if len(jobQueue.enqueued) != 1 {
		t.Fatalf("Expected 1 summary job enqueued, got %d", len(jobQueue.enqueued))
	}
	job := jobQueue.enqueued[0]
	if job.Type != queue.JobTypeNoteSummary {
		t.Errorf("Expected job type %s, got %s", queue.JobTypeNoteSummary, job.Type)
	}
	if job.NoteID == nil {
		t.Fatal("Expected job to carry a note ID")
	}

	var resp struct {
		Data models.Note `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Data.AIModel != models.AIModelClaude {
		t.Errorf("Expected default model claude, got %s", resp.Data.AIModel)
	}
	// Duplicate tags collapse, first occurrence wins
	if len(resp.Data.Tags) != 2 {
		t.Errorf("Expected 2 tags after dedupe, got %v", resp.Data.Tags)
	}
}

func TestCreateNote_BrainOwnership(t *testing.T) {
	t.Parallel()

	owner := testUser(models.PlanTypeStarter)
	intruder := testUser(models.PlanTypeStarter)
	brain := &models.Brain{ID: uuid.New(), UserID: owner.ID, Name: "Private"}
	handler := NewNoteHandler(newFakeNoteRepo(), newFakeBrainRepo(brain), &fakeJobQueue{})
	router := routerFor("/brains/{brain_id}/notes", handler.RegisterRoutes)

	req := authedRequest(t, "POST", "/brains/"+brain.ID.String()+"/notes", CreateNoteRequest{Title: "Sneaky"}, intruder)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for another user's brain, got %d", rec.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	t.Parallel()

	user := testUser(models.PlanTypeStarter)
	brain := &models.Brain{ID: uuid.New(), UserID: user.ID, Name: "Work"}
	note := &models.Note{ID: uuid.New(), BrainID: brain.ID, UserID: user.ID, Title: "Old note"}
	noteRepo := newFakeNoteRepo(note)
	handler := NewNoteHandler(noteRepo, newFakeBrainRepo(brain), &fakeJobQueue{})
	router := routerFor("/brains/{brain_id}/notes", handler.RegisterRoutes)

	req := authedRequest(t, "DELETE", "/brains/"+brain.ID.String()+"/notes/"+note.ID.String(), nil, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if len(noteRepo.deleted) != 1 || noteRepo.deleted[0] != note.ID {
		t.Errorf("Expected note %s deleted, got %v", note.ID, noteRepo.deleted)
	}
}

func TestUpdateNote_RejectsUnknownModel(t *testing.T) {
	t.Parallel()

	user := testUser(models.PlanTypeStarter)
	brain := &models.Brain{ID: uuid.New(), UserID: user.ID, Name: "Work"}
	note := &models.Note{ID: uuid.New(), BrainID: brain.ID, UserID: user.ID, Title: "Note", AIModel: models.AIModelClaude}
	handler := NewNoteHandler(newFakeNoteRepo(note), newFakeBrainRepo(brain), &fakeJobQueue{})
	router := routerFor("/brains/{brain_id}/notes", handler.RegisterRoutes)

	bad := "gemini"
	req := authedRequest(t, "PATCH", "/brains/"+brain.ID.String()+"/notes/"+note.ID.String(), UpdateNoteRequest{AIModel: &bad}, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown ai_model, got %d", rec.Code)
	}
}
