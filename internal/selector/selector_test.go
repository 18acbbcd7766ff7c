package selector

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/typelit/typelit/internal/model"
)

type fakeRepo struct {
	passages []model.Passage
	err      error
}

func (f *fakeRepo) Passages(_ context.Context, _ model.Difficulty) ([]model.Passage, error) {
	return f.passages, f.err
}

func makePassages(n int) []model.Passage {
	out := make([]model.Passage, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Passage{
			ID:         fmt.Sprintf("p%d", i),
			Text:       fmt.Sprintf("passage number %d for testing.", i),
			Difficulty: model.Beginner,
		})
	}
	return out
}

func newTestSelector(t *testing.T, passages []model.Passage) *Selector {
	t.Helper()
	s := NewWithRand(&fakeRepo{passages: passages}, model.Beginner, rand.New(rand.NewSource(42)))
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return s
}

func TestRandomEmptySet(t *testing.T) {
	s := newTestSelector(t, nil)
	if got := s.Random(); got != nil {
		t.Fatalf("Random on empty set = %+v, want nil", got)
	}
}

func TestRandomFullCoverageBeforeRepeat(t *testing.T) {
	const n = 7
	s := newTestSelector(t, makePassages(n))

	for cycle := 0; cycle < 3; cycle++ {
		seen := map[string]struct{}{}
		for i := 0; i < n; i++ {
			p := s.Random()
			if p == nil {
				t.Fatalf("cycle %d draw %d: nil passage", cycle, i)
			}
			if _, ok := seen[p.ID]; ok {
				t.Fatalf("cycle %d: id %s repeated before full coverage", cycle, p.ID)
			}
			seen[p.ID] = struct{}{}
		}
		if len(seen) != n {
			t.Fatalf("cycle %d covered %d of %d", cycle, len(seen), n)
		}
	}
}

func TestRandomShufflesBetweenCycles(t *testing.T) {
	const n = 10
	s := newTestSelector(t, makePassages(n))

	order := func() []string {
		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			ids = append(ids, s.Random().ID)
		}
		return ids
	}

	first := order()
	same := true
	// A few cycles with identical order would mean no reshuffle.
	for cycle := 0; cycle < 4 && same; cycle++ {
		next := order()
		for i := range next {
			if next[i] != first[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Fatal("serving order never changed across cycles")
	}
}

func TestByID(t *testing.T) {
	passages := makePassages(4)
	s := newTestSelector(t, passages)

	p := s.ByID("p2")
	if p == nil || p.ID != "p2" {
		t.Fatalf("ByID(p2) = %+v", p)
	}
	// Unknown id falls back to a random draw.
	p = s.ByID("gone")
	if p == nil {
		t.Fatal("ByID fallback returned nil for a non-empty set")
	}
}

func TestByIDEmptySet(t *testing.T) {
	s := newTestSelector(t, nil)
	if p := s.ByID("anything"); p != nil {
		t.Fatalf("ByID on empty set = %+v, want nil", p)
	}
}

func TestRefreshReplacesSet(t *testing.T) {
	repo := &fakeRepo{passages: makePassages(2)}
	s := NewWithRand(repo, model.Beginner, rand.New(rand.NewSource(1)))
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if s.Size() != 2 {
		t.Fatalf("Size = %d, want 2", s.Size())
	}

	repo.passages = makePassages(5)
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if s.Size() != 5 {
		t.Fatalf("Size after refresh = %d, want 5", s.Size())
	}
}

func TestRefreshErrorKeepsSet(t *testing.T) {
	repo := &fakeRepo{passages: makePassages(3)}
	s := NewWithRand(repo, model.Beginner, rand.New(rand.NewSource(1)))
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	repo.err = context.Canceled
	if err := s.Refresh(ctx); err == nil {
		t.Fatal("expected error from failed refresh")
	}
	if s.Size() != 3 {
		t.Fatalf("failed refresh disturbed the set: size %d", s.Size())
	}
	if p := s.Random(); p == nil {
		t.Fatal("selector unusable after failed refresh")
	}
}
