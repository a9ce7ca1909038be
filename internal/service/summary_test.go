package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSummarizer(maxChunks int) (*DocumentSummarizer, *MockDocumentStore, *MockChunkIndex, *MockGenerator) {
	docs := new(MockDocumentStore)
	index := new(MockChunkIndex)
	generator := new(MockGenerator)
	generator.On("Provider").Return("openai")
	return NewDocumentSummarizer(docs, index, generator, maxChunks), docs, index, generator
}

func TestBuildSummaryPrompt_IncludesChunksInOrder(t *testing.T) {
	chunks := []domain.Chunk{
		{ChunkIndex: 0, Content: "opening section"},
		{ChunkIndex: 1, Content: "closing section"},
	}

	prompt := BuildSummaryPrompt("report.pdf", chunks)

	assert.Contains(t, prompt, "Document: report.pdf")
	assert.Contains(t, prompt, "opening section")
	assert.Contains(t, prompt, "closing section")
	assert.Less(t, strings.Index(prompt, "opening section"), strings.Index(prompt, "closing section"))
}

func TestDocumentSummarizer_Summarize_Success(t *testing.T) {
	svc, docs, index, generator := newTestSummarizer(0)
	ctx := context.Background()

	docs.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{ID: "doc-1", Filename: "report.pdf"}, nil)
	index.On("Chunks", mock.Anything, "doc-1").Return([]domain.Chunk{
		{ChunkIndex: 0, Content: "quarterly revenue grew"},
	}, nil)
	generator.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "quarterly revenue grew")
	})).Return("Revenue grew in the quarter.", nil)

	result, err := svc.Summarize(ctx, "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Equal(t, "report.pdf", result.Filename)
	assert.Equal(t, "Revenue grew in the quarter.", result.Summary)
	assert.Equal(t, 1, result.ChunksUsed)
	assert.Equal(t, "openai", result.Provider)
}

func TestDocumentSummarizer_Summarize_TruncatesToChunkLimit(t *testing.T) {
	svc, docs, index, generator := newTestSummarizer(2)
	ctx := context.Background()

	docs.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{ID: "doc-1", Filename: "long.pdf"}, nil)
	index.On("Chunks", mock.Anything, "doc-1").Return([]domain.Chunk{
		{ChunkIndex: 0, Content: "part one"},
		{ChunkIndex: 1, Content: "part two"},
		{ChunkIndex: 2, Content: "part three"},
	}, nil)
	generator.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "part two") && !strings.Contains(prompt, "part three")
	})).Return("A summary.", nil)

	result, err := svc.Summarize(ctx, "doc-1")

	require.NoError(t, err)
	assert.Equal(t, 2, result.ChunksUsed)
	generator.AssertExpectations(t)
}

func TestDocumentSummarizer_Summarize_NotFound(t *testing.T) {
	svc, docs, index, generator := newTestSummarizer(0)

	docs.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrDocumentNotFound)

	_, err := svc.Summarize(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	index.AssertNotCalled(t, "Chunks", mock.Anything, mock.Anything)
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestDocumentSummarizer_Summarize_NoIndexedContent(t *testing.T) {
	svc, docs, index, generator := newTestSummarizer(0)

	docs.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{ID: "doc-1", Filename: "empty.txt"}, nil)
	index.On("Chunks", mock.Anything, "doc-1").Return([]domain.Chunk{}, nil)

	_, err := svc.Summarize(context.Background(), "doc-1")

	require.Error(t, err)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrCodeValidation, derr.Code)
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestDocumentSummarizer_Summarize_GenerationTimeout(t *testing.T) {
	svc, docs, index, generator := newTestSummarizer(0)

	docs.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{ID: "doc-1", Filename: "slow.pdf"}, nil)
	index.On("Chunks", mock.Anything, "doc-1").Return([]domain.Chunk{{Content: "text"}}, nil)
	generator.On("Generate", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)

	_, err := svc.Summarize(context.Background(), "doc-1")

	assert.ErrorIs(t, err, domain.ErrGenerationTimeout)
}

func TestDocumentSummarizer_Summarize_GenerationFailure(t *testing.T) {
	svc, docs, index, generator := newTestSummarizer(0)

	docs.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{ID: "doc-1", Filename: "doc.pdf"}, nil)
	index.On("Chunks", mock.Anything, "doc-1").Return([]domain.Chunk{{Content: "text"}}, nil)
	generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("backend unavailable"))

	_, err := svc.Summarize(context.Background(), "doc-1")

	assert.ErrorIs(t, err, domain.ErrGenerationFailure)
}
