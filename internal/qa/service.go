package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"nurseaid/internal/answer"
	"nurseaid/internal/corpus"
	"nurseaid/internal/index"
	"nurseaid/internal/middleware"
)

// ErrEmptyQuestion marks a client error: no pipeline work has happened yet.
var ErrEmptyQuestion = errors.New("question cannot be empty")

const promptTemplate = "You are NurseAid, a clinical assistant for pediatric nurses. " +
	"Answer the question using only the provided context. " +
	"Be concise and helpful.\n\n" +
	"Context: %s\n\n" +
	"Question: %s\n\n" +
	"Answer:"

const (
	noDocumentsAnswer = "No documents found. Please add CSV or PDF files to the 'docs' folder."
	apologyAnswer     = "Sorry, I encountered an error while processing your question."
)

// Response is the answer envelope returned for every handled question.
type Response struct {
	Answer      string   `json:"answer"`
	Success     bool     `json:"success"`
	VideoPrompt bool     `json:"video_prompt,omitempty"`
	VideoURLs   []string `json:"video_urls,omitempty"`
}

type Loader interface {
	Load(ctx context.Context, root string) (*corpus.Snapshot, error)
}

// Generator is the external text-generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service classifies questions and drives retrieval + generation for
// document questions. The expensive pipeline (corpus load, index build) is
// built lazily exactly once even under concurrent first use; a failed build
// is retried on the next question.
type Service struct {
	docsRoot  string
	loader    Loader
	builders  []index.Builder
	generator Generator
	phones    *answer.PhoneDirectory
	topK      int
	qlog      *QueryLogger

	mu     sync.RWMutex
	pipe   *pipeline
	flight singleflight.Group
}

type pipeline struct {
	snapshot  *corpus.Snapshot
	retriever index.Retriever
}

func NewService(docsRoot string, loader Loader, builders []index.Builder, generator Generator, phones *answer.PhoneDirectory, topK int, qlog *QueryLogger) *Service {
	if topK <= 0 {
		topK = 3
	}
	return &Service{
		docsRoot:  docsRoot,
		loader:    loader,
		builders:  builders,
		generator: generator,
		phones:    phones,
		topK:      topK,
		qlog:      qlog,
	}
}

// Ask evaluates a question in fixed priority order: video menu trigger,
// video selection, then document question.
func (s *Service) Ask(ctx context.Context, question string) (Response, error) {
	if strings.TrimSpace(question) == "" {
		return Response{}, ErrEmptyQuestion
	}

	normalized := strings.ToLower(strings.TrimSpace(question))

	if wantsVideo(normalized) {
		return menuResponse(), nil
	}
	if isSelection(normalized) {
		return selectionResponse(normalized), nil
	}

	return s.askDocuments(ctx, question, normalized)
}

func (s *Service) askDocuments(ctx context.Context, question, normalized string) (Response, error) {
	pipe := s.pipeline(ctx)
	if pipe == nil {
		return Response{Answer: noDocumentsAnswer, Success: false}, nil
	}

	start := time.Now()
	results, err := pipe.retriever.Query(ctx, question, s.topK)
	if err != nil {
		slog.ErrorContext(ctx, "retrieval failed", "error", err)
		return Response{Answer: apologyAnswer, Success: false}, nil
	}
	if s.qlog != nil {
		s.qlog.Log(QueryLogEntry{
			Question:      question,
			NumResults:    len(results),
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}

	contexts := make([]string, 0, len(results))
	for _, r := range results {
		contexts = append(contexts, r.Content)
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n\n"), question)

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "error", err)
		return Response{Answer: apologyAnswer, Success: false}, nil
	}

	cleaned := answer.CleanModelOutput(raw)

	if strings.Contains(normalized, "phone number") {
		text, ok := s.phones.Lookup(normalized, cleaned)
		return Response{Answer: text, Success: ok}, nil
	}

	return Response{Answer: answer.DedupeSentences(cleaned), Success: true}, nil
}

// pipeline returns the initialized pipeline, building it single-flight on
// first use. Nil means the build failed or the corpus is empty; the next
// call retries.
func (s *Service) pipeline(ctx context.Context) *pipeline {
	s.mu.RLock()
	p := s.pipe
	s.mu.RUnlock()
	if p != nil {
		return p
	}

	v, err, _ := s.flight.Do("pipeline", func() (interface{}, error) {
		// Re-check inside the flight: a caller arriving after a completed
		// build must not trigger another one.
		s.mu.RLock()
		built := s.pipe
		s.mu.RUnlock()
		if built != nil {
			return built, nil
		}
		built, err := s.buildPipeline(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.pipe = built
		s.mu.Unlock()
		return built, nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "pipeline initialization failed", "error", err)
		return nil
	}
	return v.(*pipeline)
}

func (s *Service) buildPipeline(ctx context.Context) (*pipeline, error) {
	snapshot, err := s.loader.Load(ctx, s.docsRoot)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	if snapshot.Empty() {
		return nil, errors.New("corpus is empty")
	}

	var lastErr error
	for _, builder := range s.builders {
		retriever, err := builder.Build(ctx, snapshot.Chunks)
		if err != nil {
			slog.WarnContext(ctx, "index build failed, trying next", "index", builder.Name(), "error", err)
			lastErr = err
			continue
		}
		slog.InfoContext(ctx, "pipeline initialized", "index", builder.Name(), "chunks", len(snapshot.Chunks))
		return &pipeline{snapshot: snapshot, retriever: retriever}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no index builders configured")
	}
	return nil, fmt.Errorf("build index: %w", lastErr)
}

// DocsRoot is the corpus directory the pipeline loads from.
func (s *Service) DocsRoot() string {
	return s.docsRoot
}

// Initialized reports whether the pipeline has been built. It never triggers
// a build.
func (s *Service) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pipe != nil
}

// Warmup forces pipeline initialization, for the manual trigger endpoint.
func (s *Service) Warmup(ctx context.Context) error {
	if s.pipeline(ctx) == nil {
		return errors.New("pipeline initialization failed")
	}
	return nil
}

// ChunkCount reports the size of the current snapshot, zero before first
// build.
func (s *Service) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pipe == nil {
		return 0
	}
	return len(s.pipe.snapshot.Chunks)
}
