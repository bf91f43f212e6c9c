package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/plans"
	"github.com/bra3n/bra3n/internal/queue"
)

func newDocumentHandler(docRepo *fakeDocumentRepo, brainRepo *fakeBrainRepo, stage *fakeTextStage, jobQueue *fakeJobQueue) *DocumentHandler {
	features := NewFeatureHandler(plans.DefaultTable(), &fakeUsageRepo{})
	return NewDocumentHandler(docRepo, brainRepo, features, stage, jobQueue)
}

func TestUploadDocument(t *testing.T) {
	t.Parallel()

	user := testUser(models.PlanTypePro)
	brain := &models.Brain{ID: uuid.New(), UserID: user.ID, Name: "Research"}
	docRepo := newFakeDocumentRepo()
	stage := newFakeTextStage()
	jobQueue := &fakeJobQueue{}
	handler := newDocumentHandler(docRepo, newFakeBrainRepo(brain), stage, jobQueue)
	router := routerFor("/brains/{brain_id}/documents", handler.RegisterRoutes)

	body := UploadDocumentRequest{
		Name:        "paper.pdf",
		ContentType: "application/pdf",
		Text:        "Extracted text of the research paper",
	}
	req := authedRequest(t, "POST", "/brains/"+brain.ID.String()+"/documents", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.Document `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Data.Status != models.DocumentStatusPending {
		t.Errorf("Expected status pending, got %s", resp.Data.Status)
	}
	if resp.Data.SizeBytes != int64(len(body.Text)) {
		t.Errorf("Expected size %d, got %d", len(body.Text), resp.Data.SizeBytes)
	}

	if text := stage.texts[resp.Data.ID]; text != body.Text {
		t.Error("Expected document text staged for the worker")
	}

	if len(jobQueue.enqueued) != 1 {
		t.Fatalf("Expected 1 job enqueued, got %d", len(jobQueue.enqueued))
	}
	job := jobQueue.enqueued[0]
	if job.Type != queue.JobTypeDocumentSummary {
		t.Errorf("Expected job type %s, got %s", queue.JobTypeDocumentSummary, job.Type)
	}
	if job.DocumentID == nil || *job.DocumentID != resp.Data.ID {
		t.Error("Expected job to reference the uploaded document")
	}
}

func TestUploadDocument_GatedByPlan(t *testing.T) {
	t.Parallel()

	table := plans.DefaultTable()
	// A plan without upload capability
	table.Plans["free"] = plans.Template{CanCreateBrains: true}

	user := testUser(models.PlanType("free"))
	brain := &models.Brain{ID: uuid.New(), UserID: user.ID, Name: "Research"}
	docRepo := newFakeDocumentRepo()
	stage := newFakeTextStage()
	features := NewFeatureHandler(table, &fakeUsageRepo{})
	handler := NewDocumentHandler(docRepo, newFakeBrainRepo(brain), features, stage, &fakeJobQueue{})
	router := routerFor("/brains/{brain_id}/documents", handler.RegisterRoutes)

	body := UploadDocumentRequest{Name: "paper.pdf", ContentType: "application/pdf", Text: "text"}
	req := authedRequest(t, "POST", "/brains/"+brain.ID.String()+"/documents", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if len(docRepo.docs) != 0 {
		t.Error("Expected nothing stored when the plan forbids uploads")
	}
	if len(stage.texts) != 0 {
		t.Error("Expected no text staged when the plan forbids uploads")
	}
}

func TestDeleteDocument_CleansStagedText(t *testing.T) {
	t.Parallel()

	user := testUser(models.PlanTypePro)
	brain := &models.Brain{ID: uuid.New(), UserID: user.ID, Name: "Research"}
	doc := &models.Document{ID: uuid.New(), BrainID: brain.ID, UserID: user.ID, Name: "paper.pdf", Status: models.DocumentStatusPending}
	docRepo := newFakeDocumentRepo()
	docRepo.docs[doc.ID] = doc
	stage := newFakeTextStage()
	stage.texts[doc.ID] = "staged text"
	handler := newDocumentHandler(docRepo, newFakeBrainRepo(brain), stage, &fakeJobQueue{})
	router := routerFor("/brains/{brain_id}/documents", handler.RegisterRoutes)

	req := authedRequest(t, "DELETE", "/brains/"+brain.ID.String()+"/documents/"+doc.ID.String(), nil, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if _, ok := docRepo.docs[doc.ID]; ok {
		t.Error("Expected document removed")
	}
	if _, ok := stage.texts[doc.ID]; ok {
		t.Error("Expected staged text removed")
	}
}
