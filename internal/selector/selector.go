// Package selector serves non-repeating random passages for one tier.
package selector

import (
	"context"
	"math/rand"
	"time"

	"github.com/typelit/typelit/internal/model"
)

// Repository is the read side of the passage store.
type Repository interface {
	Passages(ctx context.Context, difficulty model.Difficulty) ([]model.Passage, error)
}

// Selector draws passages for a single difficulty without repeating
// one until every stored passage has been served. Each active session
// owns its own Selector; the used set is never shared process-wide.
type Selector struct {
	repo       Repository
	difficulty model.Difficulty
	rnd        *rand.Rand

	passages []model.Passage
	order    []int
	next     int
}

// New returns a Selector for the given tier, seeded with the current time.
func New(repo Repository, difficulty model.Difficulty) *Selector {
	return NewWithRand(repo, difficulty, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand returns a Selector using the provided random source.
func NewWithRand(repo Repository, difficulty model.Difficulty, rnd *rand.Rand) *Selector {
	return &Selector{repo: repo, difficulty: difficulty, rnd: rnd}
}

// Refresh loads the current passage set from the repository and starts
// a fresh serving cycle. It must complete before the first draw; a
// canceled load leaves the previous set intact.
func (s *Selector) Refresh(ctx context.Context) error {
	passages, err := s.repo.Passages(ctx, s.difficulty)
	if err != nil {
		return err
	}
	s.passages = passages
	s.reshuffle()
	return nil
}

// reshuffle rebuilds the serving order with a uniform Fisher-Yates
// shuffle, guaranteeing full coverage before any repeat without a
// systematic ordering.
func (s *Selector) reshuffle() {
	s.order = make([]int, len(s.passages))
	for i := range s.order {
		s.order[i] = i
	}
	for i := len(s.order) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		s.order[i], s.order[j] = s.order[j], s.order[i]
	}
	s.next = 0
}

// Random returns the next unserved passage, reshuffling once the cycle
// is exhausted. It returns nil when the set is empty; the caller must
// handle that rather than receive a wrong-tier passage.
func (s *Selector) Random() *model.Passage {
	if len(s.passages) == 0 {
		return nil
	}
	if s.next >= len(s.order) {
		s.reshuffle()
	}
	p := s.passages[s.order[s.next]]
	s.next++
	return &p
}

// ByID returns the passage with the given id, for retrying the same
// text. When the id is absent, for example after a repository refresh,
// it falls back to a random draw.
func (s *Selector) ByID(id string) *model.Passage {
	for i := range s.passages {
		if s.passages[i].ID == id {
			p := s.passages[i]
			return &p
		}
	}
	return s.Random()
}

// Size reports the number of passages in the current set.
func (s *Selector) Size() int {
	return len(s.passages)
}
