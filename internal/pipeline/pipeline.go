package pipeline

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/typelit/typelit/internal/model"
	"github.com/typelit/typelit/internal/readability"
)

// Builder runs the curation pipeline for one book at a time.
type Builder struct {
	log *zap.Logger
	cap int
}

// NewBuilder returns a Builder with the default accepted-passage cap.
// A nil logger disables pipeline logging.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{log: log, cap: PassageCap}
}

// Build segments, cleans, filters, and deduplicates raw book text into
// passages for the book's tier. Candidates failing any check are
// skipped silently; only the aggregate counts are reported. Processing
// stops once the accepted cap is reached, bounding work on very large
// source texts.
func (b *Builder) Build(cfg model.BookConfig, raw string) []model.Passage {
	candidates := Candidates(raw, cfg.MinLength, cfg.MaxLength)

	seen := make(map[string]struct{}, len(candidates))
	passages := make([]model.Passage, 0, len(candidates))
	rejected := 0
	duplicates := 0

	for _, candidate := range candidates {
		if len(passages) >= b.cap {
			break
		}
		text := Clean(candidate, cfg.Difficulty)
		if text == "" || len(text) < cfg.MinLength || len(text) > cfg.MaxLength {
			rejected++
			continue
		}
		if !Suitable(text, cfg.Difficulty, cfg.TargetGrade) {
			rejected++
			continue
		}
		fp := Fingerprint(text)
		if _, ok := seen[fp]; ok {
			duplicates++
			continue
		}
		seen[fp] = struct{}{}
		passages = append(passages, NewPassage(text, cfg.Difficulty, fp))
	}

	b.log.Info("processed book",
		zap.String("book", cfg.ID),
		zap.String("difficulty", string(cfg.Difficulty)),
		zap.Int("candidates", len(candidates)),
		zap.Int("accepted", len(passages)),
		zap.Int("rejected", rejected),
		zap.Int("duplicates", duplicates),
	)
	return passages
}

// NewPassage assembles a Passage from cleaned text, scoring it on the
// way in. The id is a fresh UUID.
func NewPassage(text string, difficulty model.Difficulty, fingerprint string) model.Passage {
	score := readability.Analyze(text)
	return model.Passage{
		ID:          uuid.NewString(),
		Text:        text,
		Difficulty:  difficulty,
		Grade:       score.Grade,
		Ease:        score.Ease,
		Length:      len(text),
		WordCount:   len(strings.Fields(text)),
		Fingerprint: fingerprint,
	}
}
