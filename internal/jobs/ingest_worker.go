package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/doclens-ai/doclens/internal/domain"
)

// DefaultConcurrency bounds how many documents ingest in parallel.
const DefaultConcurrency = 4

// IngestJobRepository defines the interface for ingest job persistence
type IngestJobRepository interface {
	// ClaimPending retrieves and claims pending ingest jobs
	ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error)

	// UpdateStatus updates the status of an ingest job
	UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error
}

// Ingestor runs the extract-chunk-index path for one document.
type Ingestor interface {
	Ingest(ctx context.Context, documentID string) error
}

// IngestWorker processes ingest jobs. Distinct documents run in parallel up
// to the concurrency bound; a failed job is terminal and never requeued.
type IngestWorker struct {
	repo        IngestJobRepository
	ingestor    Ingestor
	concurrency int
}

// NewIngestWorker creates a new IngestWorker instance
func NewIngestWorker(repo IngestJobRepository, ingestor Ingestor, concurrency int) *IngestWorker {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &IngestWorker{
		repo:        repo,
		ingestor:    ingestor,
		concurrency: concurrency,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IngestWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, w.concurrency*2)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending ingest jobs", len(jobs))

	sem := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(job *domain.IngestJob) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := w.processJob(ctx, job); err != nil {
				log.Printf("Error processing job %s: %v", job.ID, err)
			}
		}(job)
	}
	wg.Wait()

	return nil
}

func (w *IngestWorker) processJob(ctx context.Context, job *domain.IngestJob) error {
	log.Printf("Processing job %s for document %s", job.ID, job.DocumentID)

	if err := w.ingestor.Ingest(ctx, job.DocumentID); err != nil {
		if uerr := w.repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusFailed, err.Error()); uerr != nil {
			return fmt.Errorf("failed to update job status to failed: %w", uerr)
		}
		return err
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}
