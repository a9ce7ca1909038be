package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGenerator mocks the generation backend
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) Provider() string {
	args := m.Called()
	return args.String(0)
}

func TestBuildPrompt_TagsSourcesInOrder(t *testing.T) {
	matches := []domain.ChunkMatch{
		{Content: "first excerpt", Filename: "a.pdf"},
		{Content: "second excerpt", Filename: "b.docx"},
	}

	prompt := BuildPrompt("what happened?", matches)

	assert.Contains(t, prompt, "[Source 1] (a.pdf)\nfirst excerpt")
	assert.Contains(t, prompt, "[Source 2] (b.docx)\nsecond excerpt")
	assert.Contains(t, prompt, "Question: what happened?")
	assert.Contains(t, prompt, "ONLY the information in the context")
	assert.Less(t, strings.Index(prompt, "[Source 1]"), strings.Index(prompt, "[Source 2]"))
}

func TestCollectSources_DedupesByDocumentFirstSeen(t *testing.T) {
	matches := []domain.ChunkMatch{
		{DocumentID: "doc-a", Filename: "a.pdf", Similarity: 0.9, PageNumber: 2},
		{DocumentID: "doc-b", Filename: "b.pdf", Similarity: 0.85},
		{DocumentID: "doc-a", Filename: "a.pdf", Similarity: 0.95, PageNumber: 7},
	}

	sources := CollectSources(matches)

	require.Len(t, sources, 2)
	assert.Equal(t, 1, sources[0].Index)
	assert.Equal(t, "doc-a", sources[0].DocumentID)
	assert.Equal(t, float32(0.95), sources[0].Similarity)
	assert.Equal(t, 7, sources[0].PageNumber)
	assert.Equal(t, 2, sources[1].Index)
	assert.Equal(t, "doc-b", sources[1].DocumentID)
}

func TestCollectSources_Empty(t *testing.T) {
	sources := CollectSources(nil)
	assert.Empty(t, sources)
	assert.NotNil(t, sources)
}

func TestSynthesize_Success(t *testing.T) {
	gen := new(MockGenerator)
	s := NewAnswerSynthesizer(gen)
	ctx := context.Background()

	matches := []domain.ChunkMatch{
		{DocumentID: "doc-1", Filename: "report.pdf", Content: "revenue grew 10%", Similarity: 0.88},
	}
	gen.On("Generate", ctx, mock.MatchedBy(func(prompt string) bool {
		return len(prompt) > 0
	})).Return("Revenue grew 10% [Source 1].", nil)

	result := s.Synthesize(ctx, "how did revenue change?", matches)

	assert.True(t, result.Success)
	assert.Equal(t, "Revenue grew 10% [Source 1].", result.Answer)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "doc-1", result.Sources[0].DocumentID)
	assert.Empty(t, result.ErrorCode)
}

func TestSynthesize_BackendFailure(t *testing.T) {
	gen := new(MockGenerator)
	s := NewAnswerSynthesizer(gen)
	ctx := context.Background()

	gen.On("Generate", ctx, mock.Anything).Return("", errors.New("model overloaded"))

	result := s.Synthesize(ctx, "question", []domain.ChunkMatch{{Content: "x"}})

	assert.False(t, result.Success)
	assert.Equal(t, domain.ErrCodeGenerationFailure, result.ErrorCode)
	assert.NotEmpty(t, result.Answer)
	assert.Empty(t, result.Sources)
}

func TestSynthesize_Timeout(t *testing.T) {
	gen := new(MockGenerator)
	s := NewAnswerSynthesizer(gen)
	ctx := context.Background()

	gen.On("Generate", ctx, mock.Anything).
		Return("", fmt.Errorf("generate: %w", context.DeadlineExceeded))

	result := s.Synthesize(ctx, "question", []domain.ChunkMatch{{Content: "x"}})

	assert.False(t, result.Success)
	assert.Equal(t, domain.ErrCodeGenerationTimeout, result.ErrorCode)
}

func TestAnswerSynthesizer_Provider(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Provider").Return("openai")

	s := NewAnswerSynthesizer(gen)

	assert.Equal(t, "openai", s.Provider())
}
