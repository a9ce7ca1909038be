package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockIngestJobRepository is a mock implementation of IngestJobRepository
type MockIngestJobRepository struct {
	mock.Mock
}

func (m *MockIngestJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.IngestJob), args.Error(1)
}

func (m *MockIngestJobRepository) UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

// MockIngestor is a mock implementation of Ingestor
type MockIngestor struct {
	mock.Mock
}

func (m *MockIngestor) Ingest(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func TestIngestWorker_ProcessJobs_NoPendingJobs(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngestor := new(MockIngestor)

	mockRepo.On("ClaimPending", mock.Anything, 8).Return([]*domain.IngestJob{}, nil)

	worker := NewIngestWorker(mockRepo, mockIngestor, 4)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIngestor.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
}

func TestIngestWorker_ProcessJobs_Success(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngestor := new(MockIngestor)

	job := &domain.IngestJob{
		ID:         "job-1",
		DocumentID: "doc-1",
		Status:     domain.IngestJobStatusProcessing,
	}

	mockRepo.On("ClaimPending", mock.Anything, 8).Return([]*domain.IngestJob{job}, nil)
	mockIngestor.On("Ingest", mock.Anything, "doc-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusCompleted, "").Return(nil)

	worker := NewIngestWorker(mockRepo, mockIngestor, 4)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIngestor.AssertExpectations(t)
}

func TestIngestWorker_ProcessJobs_FailureIsTerminal(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngestor := new(MockIngestor)

	job := &domain.IngestJob{
		ID:         "job-1",
		DocumentID: "doc-1",
		Status:     domain.IngestJobStatusProcessing,
	}

	mockRepo.On("ClaimPending", mock.Anything, 8).Return([]*domain.IngestJob{job}, nil)
	mockIngestor.On("Ingest", mock.Anything, "doc-1").Return(errors.New("extraction failed"))
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusFailed, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker := NewIngestWorker(mockRepo, mockIngestor, 4)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIngestor.AssertExpectations(t)
}

func TestIngestWorker_ProcessJobs_MultipleJobs(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngestor := new(MockIngestor)

	jobs := []*domain.IngestJob{
		{ID: "job-1", DocumentID: "doc-1", Status: domain.IngestJobStatusProcessing},
		{ID: "job-2", DocumentID: "doc-2", Status: domain.IngestJobStatusProcessing},
	}

	mockRepo.On("ClaimPending", mock.Anything, 8).Return(jobs, nil)

	mockIngestor.On("Ingest", mock.Anything, "doc-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusCompleted, "").Return(nil)

	mockIngestor.On("Ingest", mock.Anything, "doc-2").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-2", domain.IngestJobStatusCompleted, "").Return(nil)

	worker := NewIngestWorker(mockRepo, mockIngestor, 4)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIngestor.AssertExpectations(t)
}

func TestIngestWorker_ProcessJobs_ClaimError(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngestor := new(MockIngestor)

	mockRepo.On("ClaimPending", mock.Anything, 8).Return(nil, errors.New("database error"))

	worker := NewIngestWorker(mockRepo, mockIngestor, 4)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to claim pending jobs")
	mockRepo.AssertExpectations(t)
}

func TestNewIngestWorker_DefaultConcurrency(t *testing.T) {
	worker := NewIngestWorker(new(MockIngestJobRepository), new(MockIngestor), 0)

	assert.Equal(t, DefaultConcurrency, worker.concurrency)
}
