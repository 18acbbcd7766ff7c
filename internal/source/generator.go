package source

import (
	"math/rand"
	"strings"
	"time"

	"github.com/typelit/typelit/internal/model"
	"github.com/typelit/typelit/internal/pipeline"
)

// Built-in vocabulary for generated fallback passages. Plain lowercase
// words only, so generated text satisfies every tier's character set.
var fallbackWords = []string{
	"the", "morning", "light", "fell", "across", "quiet", "fields",
	"and", "every", "road", "led", "toward", "distant", "hills",
	"where", "small", "rivers", "turned", "slowly", "under", "old",
	"stone", "bridges", "while", "birds", "rose", "from", "tall",
	"grass", "into", "clear", "air", "people", "walked", "between",
	"houses", "carrying", "baskets", "of", "bread", "toward", "open",
	"markets", "in", "warm", "summer", "evenings", "children", "ran",
	"along", "narrow", "paths", "past", "gardens", "full", "flowers",
}

// Generator fabricates practice passages when neither the repository
// nor the remote source has any for a tier.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a Generator seeded with the current time.
func NewGenerator() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewGeneratorWithRand returns a Generator using the provided source.
func NewGeneratorWithRand(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Generate builds count passages with lengths inside [minLen, maxLen].
func (g *Generator) Generate(difficulty model.Difficulty, count, minLen, maxLen int) []model.Passage {
	if count <= 0 || minLen <= 0 || maxLen < minLen {
		return nil
	}
	passages := make([]model.Passage, 0, count)
	for i := 0; i < count; i++ {
		text := g.passageText(minLen, maxLen)
		passages = append(passages, pipeline.NewPassage(text, difficulty, pipeline.Fingerprint(text)))
	}
	return passages
}

func (g *Generator) passageText(minLen, maxLen int) string {
	var b strings.Builder
	for b.Len() < minLen {
		sentence := g.sentence()
		if b.Len() > 0 {
			if b.Len()+1+len(sentence) > maxLen {
				break
			}
			b.WriteByte(' ')
		}
		b.WriteString(sentence)
	}
	return b.String()
}

// sentence assembles eight to thirteen words with an occasional comma,
// a leading capital, and a trailing period.
func (g *Generator) sentence() string {
	n := 8 + g.rnd.Intn(6)
	words := make([]string, 0, n)
	for i := 0; i < n; i++ {
		word := fallbackWords[g.rnd.Intn(len(fallbackWords))]
		if i > 2 && i < n-1 && g.rnd.Float64() < 0.15 {
			word += ","
		}
		words = append(words, word)
	}
	s := strings.Join(words, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
