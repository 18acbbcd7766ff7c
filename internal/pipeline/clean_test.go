package pipeline

import (
	"regexp"
	"strings"
	"testing"

	"github.com/typelit/typelit/internal/model"
)

func TestCleanStrictCharacterSet(t *testing.T) {
	in := `He said, "hello there" -- and left; then 25 men came marching down the road.`
	got := Clean(in, model.Beginner)
	want := "He said, hello there and left then 25 men came marching down the road."
	if got != want {
		t.Fatalf("Clean = %q, want %q", got, want)
	}
}

func TestCleanStrictAllowList(t *testing.T) {
	allow := regexp.MustCompile(`^[a-zA-Z0-9\s.,]+$`)
	inputs := []string{
		"Curly “quotes” and em—dashes litter the source text, always.",
		"Tabs\tand\nnewlines should collapse into plain spaces here today.",
		"Ellipsis trails off… but the sentence keeps going anyway, you see.",
	}
	for _, in := range inputs {
		got := Clean(in, model.Intermediate)
		if got == "" {
			t.Fatalf("Clean(%q) rejected, want cleaned text", in)
		}
		if !allow.MatchString(got) {
			t.Errorf("Clean(%q) = %q, violates allow-list", in, got)
		}
	}
}

func TestCleanStrictRejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"too short", "Hi there."},
		{"no letters", "1234, 5678. 9012 345."},
		{"empty", ""},
		{"symbols only", "@#$%^&*()!!"},
	}
	for _, tc := range cases {
		if got := Clean(tc.in, model.Beginner); got != "" {
			t.Errorf("%s: Clean(%q) = %q, want rejection", tc.name, tc.in, got)
		}
	}
}

func TestCleanStrictTrailingPeriod(t *testing.T) {
	got := Clean("A sentence with no terminal punctuation at all", model.Beginner)
	if !strings.HasSuffix(got, ".") {
		t.Fatalf("Clean = %q, want trailing period", got)
	}
	if strings.HasSuffix(got, "..") {
		t.Fatalf("Clean = %q, doubled trailing period", got)
	}
}

func TestCleanStrictCollapsesRepeats(t *testing.T) {
	got := Clean("Down the road....  and further,, ever further, they went on walking.", model.Beginner)
	if strings.Contains(got, "..") || strings.Contains(got, ",,") || strings.Contains(got, "  ") {
		t.Fatalf("Clean = %q, repeats survived", got)
	}
}

func TestCleanStripsBoilerplate(t *testing.T) {
	in := "CHAPTER II The winter was long and cold, and the travellers pressed on regardless."
	got := Clean(in, model.Beginner)
	if strings.Contains(got, "CHAPTER") {
		t.Fatalf("Clean = %q, chapter heading survived", got)
	}
	if !strings.HasPrefix(got, "The winter") {
		t.Fatalf("Clean = %q, want text starting after heading", got)
	}

	in = "This ebook is brought to you by Project Gutenberg volunteers everywhere. The story begins on a cold morning in the north country."
	got = Clean(in, model.Intermediate)
	if strings.Contains(strings.ToLower(got), "gutenberg") {
		t.Fatalf("Clean = %q, attribution survived", got)
	}
}

func TestCleanExpertNormalizesSmartPunctuation(t *testing.T) {
	in := "“Well!!” said he… — wait??"
	got := Clean(in, model.Expert)
	want := `"Well!" said he. - wait?`
	if got != want {
		t.Fatalf("Clean = %q, want %q", got, want)
	}
}

func TestCleanExpertPreservesPunctuation(t *testing.T) {
	in := "A colon: a semicolon; and (parentheses) survive - the expert tier keeps them!"
	got := Clean(in, model.Expert)
	if got != in {
		t.Fatalf("Clean = %q, want unchanged %q", got, in)
	}
}
