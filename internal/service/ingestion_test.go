package service

import (
	"context"
	"testing"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/extract"
	"github.com/doclens-ai/doclens/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocumentStore mocks document persistence
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentStore) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentStore) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.Document, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentStore) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockDocumentStore) CountByStatus(ctx context.Context) (map[domain.DocumentStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.DocumentStatus]int64), args.Error(1)
}

// MockChunkIndex mocks the embedding index surface used by ingestion
type MockChunkIndex struct {
	mock.Mock
}

func (m *MockChunkIndex) Add(ctx context.Context, documentID string, chunks []domain.Chunk) ([]string, error) {
	args := m.Called(ctx, documentID, chunks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockChunkIndex) Delete(ctx context.Context, documentID string) (int64, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChunkIndex) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

// stubExtractor returns a fixed result or error
type stubExtractor struct {
	result *extract.Result
	err    error
	called bool
}

func (s *stubExtractor) Extract(ctx context.Context, path string, format extract.Format) (*extract.Result, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func processingUpdate() interface{} {
	return mock.MatchedBy(func(upd StatusUpdate) bool {
		return upd.Status == domain.DocumentStatusProcessing
	})
}

func TestIngestionService_Ingest_Success(t *testing.T) {
	docs := new(MockDocumentStore)
	index := new(MockChunkIndex)
	extractor := &stubExtractor{result: &extract.Result{
		Text:        "First paragraph of the report.\n\nSecond paragraph of the report.",
		PageCount:   2,
		PageOffsets: []int{0, 32},
		WordCount:   10,
	}}
	svc := NewIngestionService(docs, extractor, index, DefaultChunkConfig())

	doc := &domain.Document{
		ID:          "doc-1",
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		StoragePath: "/uploads/doc-1_report.pdf",
		Status:      domain.DocumentStatusUploaded,
	}
	docs.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
	docs.On("UpdateStatus", mock.Anything, "doc-1", processingUpdate()).Return(nil)
	index.On("Add", mock.Anything, "doc-1", mock.MatchedBy(func(chunks []domain.Chunk) bool {
		return len(chunks) == 1 && chunks[0].PageNumber == 1
	})).Return([]string{"chunk-1"}, nil)
	docs.On("UpdateStatus", mock.Anything, "doc-1", mock.MatchedBy(func(upd StatusUpdate) bool {
		return upd.Status == domain.DocumentStatusIndexed &&
			upd.PageCount == 2 && upd.WordCount == 10 && upd.ChunkCount == 1
	})).Return(nil)

	err := svc.Ingest(context.Background(), "doc-1")

	assert.NoError(t, err)
	docs.AssertExpectations(t)
	index.AssertExpectations(t)
}

func TestIngestionService_Ingest_TerminalDocumentSkipped(t *testing.T) {
	docs := new(MockDocumentStore)
	index := new(MockChunkIndex)
	extractor := &stubExtractor{}
	svc := NewIngestionService(docs, extractor, index, DefaultChunkConfig())

	doc := &domain.Document{ID: "doc-1", Status: domain.DocumentStatusIndexed}
	docs.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)

	err := svc.Ingest(context.Background(), "doc-1")

	assert.NoError(t, err)
	assert.False(t, extractor.called)
	docs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestionService_Ingest_ExtractionFailureMarksFailed(t *testing.T) {
	docs := new(MockDocumentStore)
	index := new(MockChunkIndex)
	extractor := &stubExtractor{err: domain.ErrDocumentTooLarge}
	svc := NewIngestionService(docs, extractor, index, DefaultChunkConfig())

	doc := &domain.Document{
		ID:          "doc-1",
		Filename:    "huge.pdf",
		ContentType: "application/pdf",
		Status:      domain.DocumentStatusUploaded,
	}
	docs.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
	docs.On("UpdateStatus", mock.Anything, "doc-1", processingUpdate()).Return(nil)
	docs.On("UpdateStatus", mock.Anything, "doc-1", mock.MatchedBy(func(upd StatusUpdate) bool {
		return upd.Status == domain.DocumentStatusFailed && upd.Error != ""
	})).Return(nil)

	err := svc.Ingest(context.Background(), "doc-1")

	assert.ErrorIs(t, err, domain.ErrDocumentTooLarge)
	docs.AssertExpectations(t)
	index.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestionService_Ingest_EmptyTextMarksFailed(t *testing.T) {
	docs := new(MockDocumentStore)
	index := new(MockChunkIndex)
	extractor := &stubExtractor{result: &extract.Result{Text: "   \n  "}}
	svc := NewIngestionService(docs, extractor, index, DefaultChunkConfig())

	doc := &domain.Document{
		ID:          "doc-1",
		Filename:    "blank.txt",
		ContentType: "text/plain",
		Status:      domain.DocumentStatusUploaded,
	}
	docs.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
	docs.On("UpdateStatus", mock.Anything, "doc-1", processingUpdate()).Return(nil)
	docs.On("UpdateStatus", mock.Anything, "doc-1", mock.MatchedBy(func(upd StatusUpdate) bool {
		return upd.Status == domain.DocumentStatusFailed
	})).Return(nil)

	err := svc.Ingest(context.Background(), "doc-1")

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	index.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestionService_Ingest_IndexFailureMarksFailed(t *testing.T) {
	docs := new(MockDocumentStore)
	index := new(MockChunkIndex)
	extractor := &stubExtractor{result: &extract.Result{Text: "some extractable content", WordCount: 3}}
	svc := NewIngestionService(docs, extractor, index, DefaultChunkConfig())

	doc := &domain.Document{
		ID:          "doc-1",
		Filename:    "doc.txt",
		ContentType: "text/plain",
		Status:      domain.DocumentStatusUploaded,
	}
	docs.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
	docs.On("UpdateStatus", mock.Anything, "doc-1", processingUpdate()).Return(nil)
	index.On("Add", mock.Anything, "doc-1", mock.Anything).Return(nil, domain.ErrIndexUnavailable)
	docs.On("UpdateStatus", mock.Anything, "doc-1", mock.MatchedBy(func(upd StatusUpdate) bool {
		return upd.Status == domain.DocumentStatusFailed
	})).Return(nil)

	err := svc.Ingest(context.Background(), "doc-1")

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	docs.AssertExpectations(t)
}

func TestIngestionService_Ingest_UnsupportedContentTypeMarksFailed(t *testing.T) {
	docs := new(MockDocumentStore)
	index := new(MockChunkIndex)
	extractor := &stubExtractor{}
	svc := NewIngestionService(docs, extractor, index, DefaultChunkConfig())

	doc := &domain.Document{
		ID:          "doc-1",
		Filename:    "archive.zip",
		ContentType: "application/zip",
		Status:      domain.DocumentStatusUploaded,
	}
	docs.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
	docs.On("UpdateStatus", mock.Anything, "doc-1", processingUpdate()).Return(nil)
	docs.On("UpdateStatus", mock.Anything, "doc-1", mock.MatchedBy(func(upd StatusUpdate) bool {
		return upd.Status == domain.DocumentStatusFailed
	})).Return(nil)

	err := svc.Ingest(context.Background(), "doc-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.False(t, extractor.called)
}
