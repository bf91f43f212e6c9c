package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/queue"
	"github.com/bra3n/bra3n/internal/services/ai"
)

// DocumentTextSource provides staged text for uploaded documents
type DocumentTextSource interface {
	Get(ctx context.Context, documentID uuid.UUID) (string, error)
	Delete(ctx context.Context, documentID uuid.UUID) error
}

// Summarizer processes note and document summary jobs
type Summarizer struct {
	providers   map[models.AIModel]ai.Summarizer
	noteRepo    database.NoteRepositoryInterface
	docRepo     database.DocumentRepositoryInterface
	summaryRepo database.SummaryRepositoryInterface
	docText     DocumentTextSource
	jobQueue    queue.JobQueue // For re-enqueueing jobs with delays
}

// NewSummarizer creates a new summarizer worker
func NewSummarizer(
	providers map[models.AIModel]ai.Summarizer,
	noteRepo database.NoteRepositoryInterface,
	docRepo database.DocumentRepositoryInterface,
	summaryRepo database.SummaryRepositoryInterface,
	docText DocumentTextSource,
	jobQueue queue.JobQueue,
) *Summarizer {
	return &Summarizer{
		providers:   providers,
		noteRepo:    noteRepo,
		docRepo:     docRepo,
		summaryRepo: summaryRepo,
		docText:     docText,
		jobQueue:    jobQueue,
	}
}

func (s *Summarizer) providerFor(model models.AIModel) (ai.Summarizer, error) {
	provider, ok := s.providers[model]
	if !ok {
		return nil, fmt.Errorf("no summarization provider for model %s", model)
	}
	return provider, nil
}

// ProcessNoteSummaryJob summarizes a note and saves the result
func (s *Summarizer) ProcessNoteSummaryJob(ctx context.Context, job *queue.Job) error {
	if job.NoteID == nil {
		return fmt.Errorf("note_id is required for note summary job")
	}

	// Load note
	note, err := s.noteRepo.GetByID(ctx, *job.NoteID)
	if err != nil {
		return fmt.Errorf("failed to get note: %w", err)
	}

	// Verify note belongs to user
	if note.UserID != job.UserID {
		return fmt.Errorf("note does not belong to user")
	}

	provider, err := s.providerFor(note.AIModel)
	if err != nil {
		return err
	}

	summary, err := provider.SummarizeNote(ctx, note)
	if err != nil {
		return fmt.Errorf("failed to summarize note: %w", err)
	}

	saved := &models.NoteSummary{
		NoteID:  note.ID,
		BrainID: note.BrainID,
		UserID:  note.UserID,
		Summary: summary,
		Model:   note.AIModel,
	}
	if err := s.summaryRepo.Save(ctx, saved); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	log.Printf("Summarized note %s (model=%s, %d chars)", note.ID, note.AIModel, len(summary))
	return nil
}

// ProcessDocumentSummaryJob processes an uploaded document: pulls the staged
// text, summarizes it, and records the document as processed
func (s *Summarizer) ProcessDocumentSummaryJob(ctx context.Context, job *queue.Job) error {
	if job.DocumentID == nil {
		return fmt.Errorf("document_id is required for document summary job")
	}

	doc, err := s.docRepo.GetByID(ctx, *job.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if doc.UserID != job.UserID {
		return fmt.Errorf("document does not belong to user")
	}

	// Mark processing before starting; continue even if the transition fails
	if doc.Status == models.DocumentStatusPending {
		if err := s.docRepo.UpdateStatus(ctx, doc.ID, models.DocumentStatusProcessing); err != nil {
			log.Printf("Failed to update document status to processing: %v", err)
		}
	}

	text, err := s.docText.Get(ctx, doc.ID)
	if err != nil {
		if statusErr := s.docRepo.UpdateStatus(ctx, doc.ID, models.DocumentStatusFailed); statusErr != nil {
			log.Printf("Failed to mark document failed: %v", statusErr)
		}
		return fmt.Errorf("failed to load document text: %w", err)
	}

	provider, err := s.providerFor(models.AIModelClaude)
	if err != nil {
		return err
	}

	summary, err := provider.SummarizeDocument(ctx, doc.Name, text)
	if err != nil {
		// Leave status as processing so a retry can pick it up
		return fmt.Errorf("failed to summarize document: %w", err)
	}

	saved := &models.NoteSummary{
		NoteID:  doc.ID,
		BrainID: doc.BrainID,
		UserID:  doc.UserID,
		Summary: summary,
		Model:   models.AIModelClaude,
	}
	if err := s.summaryRepo.Save(ctx, saved); err != nil {
		return fmt.Errorf("failed to save document summary: %w", err)
	}

	if err := s.docRepo.UpdateStatus(ctx, doc.ID, models.DocumentStatusProcessed); err != nil {
		return fmt.Errorf("failed to mark document processed: %w", err)
	}

	if err := s.docText.Delete(ctx, doc.ID); err != nil {
		log.Printf("Failed to clean up staged document text: %v", err)
	}

	log.Printf("Processed document %s (%d chars of text)", doc.ID, len(text))
	return nil
}

// ProcessJob processes a job based on its type
func (s *Summarizer) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		log.Printf("Job %s not ready yet (NotBefore: %v), skipping", job.ID, job.NotBefore)
		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job for later processing: %v", ackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeNoteSummary:
		if err := s.ProcessNoteSummaryJob(ctx, job); err != nil {
			return s.handleJobError(ctx, msg, job, err, "note summary")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeDocumentSummary:
		if err := s.ProcessDocumentSummaryJob(ctx, job); err != nil {
			return s.handleJobError(ctx, msg, job, err, "document summary")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError handles errors from job processing with intelligent retry logic
func (s *Summarizer) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error, jobType string) error {
	// Quota errors get a long delayed retry instead of hammering the API
	if ai.IsQuotaError(err) {
		log.Printf("Quota exceeded for %s job %s: %v", jobType, job.ID, err)

		retryDelay := ai.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		delayedJob := *job
		delayedJob.NotBefore = &notBefore
		delayedJob.RetryCount = job.RetryCount + 1

		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job before re-enqueue: %v", ackErr)
		}

		if s.jobQueue != nil {
			if enqueueErr := s.jobQueue.Enqueue(ctx, &delayedJob); enqueueErr != nil {
				log.Printf("Failed to re-enqueue job %s with delay: %v", job.ID, enqueueErr)
				return fmt.Errorf("quota exhausted, failed to re-enqueue: %w", enqueueErr)
			}
			log.Printf("Re-enqueued %s job %s for retry at %v", jobType, job.ID, notBefore)
			return nil
		}

		return fmt.Errorf("quota exhausted (job %s): %w", job.ID, err)
	}

	// Rate limit errors retry with backoff via the delayed exchange
	if ai.IsRateLimitError(err) {
		log.Printf("Rate limited for %s job %s: %v", jobType, job.ID, err)

		if job.CanRetry() && s.jobQueue != nil {
			retryDelay := ai.GetRetryDelay(err, job.RetryCount)
			notBefore := time.Now().Add(retryDelay)

			delayedJob := *job
			delayedJob.NotBefore = &notBefore
			delayedJob.RetryCount = job.RetryCount + 1

			if ackErr := msg.Ack(); ackErr != nil {
				log.Printf("Failed to ack rate limited job: %v", ackErr)
			}

			if enqueueErr := s.jobQueue.Enqueue(ctx, &delayedJob); enqueueErr != nil {
				log.Printf("Failed to re-enqueue rate limited job %s: %v", job.ID, enqueueErr)
				if nackErr := msg.Nack(true); nackErr != nil {
					log.Printf("Failed to nack rate limited job: %v", nackErr)
				}
				return fmt.Errorf("rate limited, failed to re-enqueue: %w", enqueueErr)
			}

			log.Printf("Rate limited: re-enqueued %s job %s for retry at %v", jobType, job.ID, notBefore)
			return nil
		}

		if job.CanRetry() {
			job.IncrementRetry()
			if nackErr := msg.Nack(true); nackErr != nil {
				log.Printf("Failed to nack rate limited job: %v", nackErr)
			}
			return fmt.Errorf("rate limited (will retry): %w", err)
		}
	}

	// For other errors, use standard retry logic
	if job.CanRetry() {
		job.IncrementRetry()
		log.Printf("%s job %s failed (attempt %d/%d): %v, will retry", jobType, job.ID, job.RetryCount, job.MaxRetries, err)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job: %v", nackErr)
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ
	log.Printf("%s job %s failed after %d retries: %v, sending to DLQ", jobType, job.ID, job.MaxRetries, err)
	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack job to DLQ: %v", nackErr)
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
