package qa

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nurseaid/internal/corpus"
	"nurseaid/internal/index"
)

func TestQuiz(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(testSnapshot(), nil).Once()

	retriever := new(MockRetriever)
	retriever.On("Query", mock.Anything, mock.Anything, 3).
		Return([]index.Result{{Content: "Flush the line with saline.", Score: 0.9}}, nil)

	builder := &MockBuilder{name: "memory"}
	builder.On("Build", mock.Anything, mock.Anything).Return(retriever, nil).Once()

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("Check the five rights first.", nil)

	s := NewService("docs", loader, []index.Builder{builder}, generator, testPhones(t), 3, nil)

	q, err := s.Quiz(context.Background())
	require.NoError(t, err)

	assert.Contains(t, quizQuestions, q.Question)
	assert.Len(t, q.Options, 4)
	assert.Contains(t, q.Options, q.Answer)
	for _, d := range quizDistractors {
		assert.Contains(t, q.Options, d)
	}
	assert.Equal(t, "Check the five rights first.", q.Answer)

	// A second round reuses the pipeline.
	_, err = s.Quiz(context.Background())
	require.NoError(t, err)
	loader.AssertExpectations(t)
	builder.AssertExpectations(t)
}

func TestQuizTruncatesLongAnswer(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(testSnapshot(), nil)

	retriever := new(MockRetriever)
	retriever.On("Query", mock.Anything, mock.Anything, 3).Return([]index.Result{}, nil)

	builder := &MockBuilder{name: "memory"}
	builder.On("Build", mock.Anything, mock.Anything).Return(retriever, nil)

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return(strings.Repeat("x", 80), nil)

	s := NewService("docs", loader, []index.Builder{builder}, generator, testPhones(t), 3, nil)

	q, err := s.Quiz(context.Background())
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 50)+"...", q.Answer)
	assert.Contains(t, q.Options, q.Answer)
}

func TestQuizEmptyCorpus(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(&corpus.Snapshot{Counts: map[string]int{}}, nil)

	s := NewService("docs", loader, nil, new(MockGenerator), testPhones(t), 3, nil)

	_, err := s.Quiz(context.Background())
	assert.ErrorIs(t, err, ErrQuizUnavailable)
}

func TestQuizGenerationFailure(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "docs").Return(testSnapshot(), nil)

	retriever := new(MockRetriever)
	retriever.On("Query", mock.Anything, mock.Anything, 3).Return([]index.Result{}, nil)

	builder := &MockBuilder{name: "memory"}
	builder.On("Build", mock.Anything, mock.Anything).Return(retriever, nil)

	generator := new(MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	s := NewService("docs", loader, []index.Builder{builder}, generator, testPhones(t), 3, nil)

	_, err := s.Quiz(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuizUnavailable)
}

func TestTruncateOption(t *testing.T) {
	assert.Equal(t, "short", truncateOption("short"))

	long := truncateOption(strings.Repeat("é", 60))
	assert.True(t, utf8.ValidString(long))
	assert.Equal(t, strings.Repeat("é", 50)+"...", long)
}
