package qa

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nurseaid/internal/answer"
	"nurseaid/internal/corpus"
	"nurseaid/internal/index"
)

type MockLoader struct{ mock.Mock }

func (m *MockLoader) Load(ctx context.Context, root string) (*corpus.Snapshot, error) {
	args := m.Called(ctx, root)
	if snap := args.Get(0); snap != nil {
		return snap.(*corpus.Snapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockBuilder struct {
	mock.Mock
	name string
}

func (m *MockBuilder) Name() string { return m.name }

func (m *MockBuilder) Build(ctx context.Context, chunks []corpus.Chunk) (index.Retriever, error) {
	args := m.Called(ctx, chunks)
	if r := args.Get(0); r != nil {
		return r.(index.Retriever), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRetriever struct{ mock.Mock }

func (m *MockRetriever) Query(ctx context.Context, question string, k int) ([]index.Result, error) {
	args := m.Called(ctx, question, k)
	if r := args.Get(0); r != nil {
		return r.([]index.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockGenerator struct{ mock.Mock }

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func testSnapshot() *corpus.Snapshot {
	return &corpus.Snapshot{
		Chunks: []corpus.Chunk{
			{ID: 0, Content: "Flush the line with saline.", SourceFile: "guide.pdf", SourceType: "pdf"},
		},
		Counts: map[string]int{"pdf": 1},
	}
}

func testPhones(t *testing.T) *answer.PhoneDirectory {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.txt")
	require.NoError(t, os.WriteFile(path, []byte("Radiology: 6294-4050\n"), 0o600))
	return answer.NewPhoneDirectory(path)
}

func TestAskValidation(t *testing.T) {
	s := NewService("docs", new(MockLoader), nil, new(MockGenerator), testPhones(t), 3, nil)

	_, err := s.Ask(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = s.Ask(context.Background(), "   \t ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAskVideoMenu(t *testing.T) {
	// The video branch must never touch the pipeline; no mock expectations set.
	s := NewService("docs", new(MockLoader), nil, new(MockGenerator), testPhones(t), 3, nil)

	for _, q := range []string{"show me a video", "I want a demonstration", "Procedure VIDEO please"} {
		resp, err := s.Ask(context.Background(), q)
		require.NoError(t, err, q)
		assert.True(t, resp.VideoPrompt, q)
		assert.True(t, resp.Success, q)
		assert.Contains(t, resp.Answer, "1. Administering of urokinase")
		assert.Contains(t, resp.Answer, "2. Urinary catherisation")
		assert.Contains(t, resp.Answer, "3. Administering insulin")
	}
}

func TestAskVideoSelection(t *testing.T) {
	s := NewService("docs", new(MockLoader), nil, new(MockGenerator), testPhones(t), 3, nil)

	resp, err := s.Ask(context.Background(), "2")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.VideoPrompt)
	assert.Equal(t, "Here are 3 videos for urinary catheterisation procedure:", resp.Answer)
	assert.Len(t, resp.VideoURLs, 3)
	for _, u := range resp.VideoURLs {
		assert.True(t, strings.HasPrefix(u, "https://youtu.be/"))
	}
}

func TestAskDocumentQuestion(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(testSnapshot(), nil).Once()

	retriever := new(MockRetriever)
	retriever.On("Query", mock.Anything, "how do I flush the line", 3).
		Return([]index.Result{{Content: "Flush the line with saline.", Score: 0.9}}, nil)

	builder := &MockBuilder{name: "memory"}
	builder.On("Build", mock.Anything, mock.Anything).Return(retriever, nil).Once()

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Flush the line with saline.") &&
			strings.Contains(prompt, "how do I flush the line")
	})).Return("Answer: Flush with saline. Flush with saline.", nil)

	s := NewService("docs", loader, []index.Builder{builder}, generator, testPhones(t), 3, nil)

	resp, err := s.Ask(context.Background(), "how do I flush the line")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Flush with saline.", resp.Answer)

	// Second question reuses the pipeline: Load and Build ran once.
	_, err = s.Ask(context.Background(), "how do I flush the line")
	require.NoError(t, err)
	loader.AssertExpectations(t)
	builder.AssertExpectations(t)
}

func TestAskPhoneQuestion(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(testSnapshot(), nil)

	retriever := new(MockRetriever)
	retriever.On("Query", mock.Anything, mock.Anything, 3).Return([]index.Result{}, nil)

	builder := &MockBuilder{name: "memory"}
	builder.On("Build", mock.Anything, mock.Anything).Return(retriever, nil)

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("I am not sure.", nil)

	s := NewService("docs", loader, []index.Builder{builder}, generator, testPhones(t), 3, nil)

	resp, err := s.Ask(context.Background(), "what is the phone number for radiology")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "6294-4050", resp.Answer)
}

func TestAskEmptyCorpus(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(&corpus.Snapshot{Counts: map[string]int{}}, nil)

	s := NewService("docs", loader, nil, new(MockGenerator), testPhones(t), 3, nil)

	resp, err := s.Ask(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "No documents found. Please add CSV or PDF files to the 'docs' folder.", resp.Answer)
	assert.False(t, s.Initialized())
}

func TestAskFailedInitRetried(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(nil, errors.New("disk error")).Once()
	loader.On("Load", mock.Anything, "docs").Return(testSnapshot(), nil).Once()

	retriever := new(MockRetriever)
	retriever.On("Query", mock.Anything, mock.Anything, 3).Return([]index.Result{}, nil)

	builder := &MockBuilder{name: "memory"}
	builder.On("Build", mock.Anything, mock.Anything).Return(retriever, nil)

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("Keep the site dry.", nil)

	s := NewService("docs", loader, []index.Builder{builder}, generator, testPhones(t), 3, nil)

	resp, err := s.Ask(context.Background(), "first try")
	require.NoError(t, err)
	assert.False(t, resp.Success)

	resp, err = s.Ask(context.Background(), "second try")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	loader.AssertExpectations(t)
}

func TestAskBuilderFallback(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(testSnapshot(), nil)

	primary := &MockBuilder{name: "weaviate"}
	primary.On("Build", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	retriever := new(MockRetriever)
	retriever.On("Query", mock.Anything, mock.Anything, 3).Return([]index.Result{}, nil)

	fallback := &MockBuilder{name: "memory"}
	fallback.On("Build", mock.Anything, mock.Anything).Return(retriever, nil)

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("Answer from fallback index.", nil)

	s := NewService("docs", loader, []index.Builder{primary, fallback}, generator, testPhones(t), 3, nil)

	resp, err := s.Ask(context.Background(), "does fallback work")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}

func TestAskGenerationFailure(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(testSnapshot(), nil)

	retriever := new(MockRetriever)
	retriever.On("Query", mock.Anything, mock.Anything, 3).Return([]index.Result{}, nil)

	builder := &MockBuilder{name: "memory"}
	builder.On("Build", mock.Anything, mock.Anything).Return(retriever, nil)

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	s := NewService("docs", loader, []index.Builder{builder}, generator, testPhones(t), 3, nil)

	resp, err := s.Ask(context.Background(), "any question")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Sorry, I encountered an error while processing your question.", resp.Answer)
}

func TestConcurrentFirstUseBuildsOnce(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(testSnapshot(), nil).Once()

	retriever := new(MockRetriever)
	retriever.On("Query", mock.Anything, mock.Anything, 3).Return([]index.Result{}, nil)

	builder := &MockBuilder{name: "memory"}
	builder.On("Build", mock.Anything, mock.Anything).Return(retriever, nil).Once()

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("Concurrent answer.", nil)

	s := NewService("docs", loader, []index.Builder{builder}, generator, testPhones(t), 3, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.Ask(context.Background(), "parallel question")
			assert.NoError(t, err)
			assert.True(t, resp.Success)
		}()
	}
	wg.Wait()

	loader.AssertExpectations(t)
	builder.AssertExpectations(t)
	assert.True(t, s.Initialized())
	assert.Equal(t, 1, s.ChunkCount())
}

func TestWarmup(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(testSnapshot(), nil).Once()

	retriever := new(MockRetriever)
	builder := &MockBuilder{name: "memory"}
	builder.On("Build", mock.Anything, mock.Anything).Return(retriever, nil).Once()

	s := NewService("docs", loader, []index.Builder{builder}, new(MockGenerator), testPhones(t), 3, nil)

	assert.False(t, s.Initialized())
	require.NoError(t, s.Warmup(context.Background()))
	assert.True(t, s.Initialized())
	assert.Equal(t, 1, s.ChunkCount())
}
