package qa

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"nurseaid/internal/answer"
)

// ErrQuizUnavailable means the pipeline could not be built, so there is no
// corpus to draw quiz material from.
var ErrQuizUnavailable = errors.New("no documents loaded for quiz generation")

// quizQuestions is the pool a quiz round draws from at random.
var quizQuestions = []string{
	"What are the main steps in administering medication?",
	"What safety protocols should be followed?",
	"What are the key nursing procedures?",
	"What documentation is required?",
	"What are the emergency procedures?",
}

// quizDistractors pad the option set around the generated answer.
var quizDistractors = []string{
	"Follow standard protocol",
	"Consult with supervisor",
	"Document all procedures",
}

// quizOptionLength caps an option for display; longer answers are cut with an
// ellipsis.
const quizOptionLength = 50

// Quiz is one multiple-choice practice question. Options are shuffled and the
// correct answer always appears among them.
type Quiz struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Quiz draws a random question from the pool, answers it against the corpus
// through the usual retrieval and generation path, and packs the cleaned
// answer into a shuffled multiple-choice set.
func (s *Service) Quiz(ctx context.Context) (Quiz, error) {
	pipe := s.pipeline(ctx)
	if pipe == nil {
		return Quiz{}, ErrQuizUnavailable
	}

	question := quizQuestions[rand.IntN(len(quizQuestions))]

	results, err := pipe.retriever.Query(ctx, question, s.topK)
	if err != nil {
		return Quiz{}, fmt.Errorf("quiz retrieval: %w", err)
	}
	contexts := make([]string, 0, len(results))
	for _, r := range results {
		contexts = append(contexts, r.Content)
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n\n"), question)

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return Quiz{}, fmt.Errorf("quiz generation: %w", err)
	}
	correct := truncateOption(answer.CleanModelOutput(raw))

	options := make([]string, 0, len(quizDistractors)+1)
	options = append(options, correct)
	options = append(options, quizDistractors...)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Quiz{Question: question, Options: options, Answer: correct}, nil
}

// truncateOption cuts on runes so multibyte text is never split mid-character.
func truncateOption(text string) string {
	runes := []rune(text)
	if len(runes) <= quizOptionLength {
		return text
	}
	return string(runes[:quizOptionLength]) + "..."
}
