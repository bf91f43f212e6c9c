package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/middleware"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/queue"
)

func testUser(plan models.PlanType) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Email:    "user@example.com",
		PlanType: plan,
	}
}

// authedRequest builds a request with the user already in context, the way
// the auth middleware would leave it
func authedRequest(t *testing.T, method, target string, body any, user *models.User) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if user != nil {
		req = req.WithContext(middleware.SetUserInContext(req.Context(), user))
	}
	return req
}

// decodeEnvelope unwraps the standard success envelope and returns the data
// payload decoded into a generic map
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

type fakeBrainRepo struct {
	database.BrainRepositoryInterface
	brains  map[uuid.UUID]*models.Brain
	created []*models.Brain
}

func newFakeBrainRepo(brains ...*models.Brain) *fakeBrainRepo {
	repo := &fakeBrainRepo{brains: make(map[uuid.UUID]*models.Brain)}
	for _, b := range brains {
		repo.brains[b.ID] = b
	}
	return repo
}

func (r *fakeBrainRepo) Create(ctx context.Context, brain *models.Brain) error {
	r.created = append(r.created, brain)
	r.brains[brain.ID] = brain
	return nil
}

func (r *fakeBrainRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Brain, error) {
	brain, ok := r.brains[id]
	if !ok {
		return nil, fmt.Errorf("brain not found: %s", id)
	}
	return brain, nil
}

func (r *fakeBrainRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Brain, error) {
	var out []*models.Brain
	for _, b := range r.brains {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBrainRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	list, _ := r.GetByUserID(ctx, userID)
	return len(list), nil
}

func (r *fakeBrainRepo) Update(ctx context.Context, brain *models.Brain) error {
	r.brains[brain.ID] = brain
	return nil
}

func (r *fakeBrainRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.brains, id)
	return nil
}

type fakeNoteRepo struct {
	database.NoteRepositoryInterface
	notes   map[uuid.UUID]*models.Note
	deleted []uuid.UUID
}

func newFakeNoteRepo(notes ...*models.Note) *fakeNoteRepo {
	repo := &fakeNoteRepo{notes: make(map[uuid.UUID]*models.Note)}
	for _, n := range notes {
		repo.notes[n.ID] = n
	}
	return repo
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *models.Note) error {
	r.notes[note.ID] = note
	return nil
}

func (r *fakeNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	note, ok := r.notes[id]
	if !ok {
		return nil, fmt.Errorf("note not found: %s", id)
	}
	return note, nil
}

func (r *fakeNoteRepo) GetByBrainID(ctx context.Context, brainID uuid.UUID, tag *string) ([]*models.Note, error) {
	var out []*models.Note
	for _, n := range r.notes {
		if n.BrainID != brainID {
			continue
		}
		if tag != nil && !hasTag(n, *tag) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func hasTag(n *models.Note, tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *models.Note) error {
	r.notes[note.ID] = note
	return nil
}

func (r *fakeNoteRepo) DeleteNote(ctx context.Context, id uuid.UUID) error {
	delete(r.notes, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeUsageRepo struct {
	database.UsageRepositoryInterface
	usage models.Usage
}

func (r *fakeUsageRepo) GetUsage(ctx context.Context, userID uuid.UUID) (models.Usage, error) {
	return r.usage, nil
}

func (r *fakeUsageRepo) RecordAPICall(ctx context.Context, userID uuid.UUID) error {
	r.usage.APICalls++
	return nil
}

type fakeDocumentRepo struct {
	database.DocumentRepositoryInterface
	docs map[uuid.UUID]*models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uuid.UUID]*models.Document)}
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return doc, nil
}

func (r *fakeDocumentRepo) GetByBrainID(ctx context.Context, brainID uuid.UUID) ([]*models.Document, error) {
	var out []*models.Document
	for _, d := range r.docs {
		if d.BrainID == brainID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error {
	if doc, ok := r.docs[id]; ok {
		doc.Status = status
	}
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.docs, id)
	return nil
}

type fakeSummaryRepo struct {
	database.SummaryRepositoryInterface
	summaries map[uuid.UUID]*models.NoteSummary
}

func newFakeSummaryRepo(summaries ...*models.NoteSummary) *fakeSummaryRepo {
	repo := &fakeSummaryRepo{summaries: make(map[uuid.UUID]*models.NoteSummary)}
	for _, s := range summaries {
		repo.summaries[s.NoteID] = s
	}
	return repo
}

func (r *fakeSummaryRepo) GetNoteSummary(ctx context.Context, noteID, brainID uuid.UUID) (*models.NoteSummary, error) {
	s, ok := r.summaries[noteID]
	if !ok || s.BrainID != brainID {
		return nil, nil
	}
	return s, nil
}

type fakeConnectionRepo struct {
	database.ConnectionRepositoryInterface
	connections map[string]*models.Connection
	deletes     []models.ConnectionProvider
}

func newFakeConnectionRepo(conns ...*models.Connection) *fakeConnectionRepo {
	repo := &fakeConnectionRepo{connections: make(map[string]*models.Connection)}
	for _, c := range conns {
		repo.connections[connKey(c.UserID, c.Provider)] = c
	}
	return repo
}

func connKey(userID uuid.UUID, provider models.ConnectionProvider) string {
	return userID.String() + "/" + string(provider)
}

func (r *fakeConnectionRepo) Upsert(ctx context.Context, conn *models.Connection) error {
	r.connections[connKey(conn.UserID, conn.Provider)] = conn
	return nil
}

func (r *fakeConnectionRepo) GetByUserAndProvider(ctx context.Context, userID uuid.UUID, provider models.ConnectionProvider) (*models.Connection, error) {
	return r.connections[connKey(userID, provider)], nil
}

func (r *fakeConnectionRepo) DeleteByUserAndProvider(ctx context.Context, userID uuid.UUID, provider models.ConnectionProvider) error {
	delete(r.connections, connKey(userID, provider))
	r.deletes = append(r.deletes, provider)
	return nil
}

type fakeJobQueue struct {
	enqueued []*queue.Job
}

func (q *fakeJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	q.enqueued = append(q.enqueued, job)
	return nil
}

func (q *fakeJobQueue) Dequeue(ctx context.Context) (*queue.Message, error) { return nil, nil }

func (q *fakeJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}

func (q *fakeJobQueue) Close() error { return nil }

func (q *fakeJobQueue) HealthCheck(ctx context.Context) error { return nil }

type fakeTextStage struct {
	texts map[uuid.UUID]string
}

func newFakeTextStage() *fakeTextStage {
	return &fakeTextStage{texts: make(map[uuid.UUID]string)}
}

func (s *fakeTextStage) Put(ctx context.Context, documentID uuid.UUID, text string) error {
	s.texts[documentID] = text
	return nil
}

func (s *fakeTextStage) Delete(ctx context.Context, documentID uuid.UUID) error {
	delete(s.texts, documentID)
	return nil
}

// routerFor mounts a handler's routes under the given prefix, mirroring the
// server wiring
func routerFor(prefix string, register func(*mux.Router)) *mux.Router {
	r := mux.NewRouter()
	register(r.PathPrefix(prefix).Subrouter())
	return r
}
