package questiongen

import (
	"math/rand/v2"
	"sync"

	"github.com/pgokul695/Winterthon/internal/quiz"
)

// shuffler permutes option slices. A nil rng uses the package-level
// generator; an injected *rand.Rand is guarded because it is not safe for
// concurrent batches.
type shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *shuffler) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// shuffle applies a Fisher-Yates permutation in place.
func (s *shuffler) shuffle(opts []quiz.Option) {
	for i := len(opts) - 1; i > 0; i-- {
		j := s.intN(i + 1)
		opts[i], opts[j] = opts[j], opts[i]
	}
}

// buildQuestion pairs the parsed answers with their explanations, marks
// the correct one and shuffles the result.
func (s *shuffler) buildQuestion(pq *quiz.ParsedQuestion, qt quiz.QuestionType, elapsed float64, raw string) quiz.GeneratedQuestion {
	opts := make([]quiz.Option, 0, 1+len(pq.Wrong))
	opts = append(opts, quiz.Option{
		Text:        pq.Correct,
		Correct:     true,
		Explanation: pq.Explanations[0],
	})
	for i, w := range pq.Wrong {
		o := quiz.Option{Text: w}
		if i+1 < len(pq.Explanations) {
			o.Explanation = pq.Explanations[i+1]
		}
		opts = append(opts, o)
	}
	s.shuffle(opts)

	return quiz.GeneratedQuestion{
		QuestionText:   pq.Question,
		Options:        opts,
		Solution:       pq.Correct,
		QuestionType:   qt,
		ElapsedSeconds: elapsed,
		RawOutput:      raw,
		ParsedData:     pq,
	}
}
