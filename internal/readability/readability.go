// Package readability scores text with Flesch-Kincaid heuristics.
package readability

import (
	"math"
	"strings"
)

// Score holds grade level and reading ease for a text.
type Score struct {
	Grade float64
	Ease  float64
}

// Analyze computes the Flesch reading ease and Flesch-Kincaid grade
// level of text. Empty or whitespace-only input scores zero on both.
// The analysis is deterministic for identical input.
func Analyze(text string) Score {
	words := splitWords(text)
	if len(words) == 0 {
		return Score{}
	}

	sentences := countSentences(text)
	syllables := 0
	for _, word := range words {
		syllables += countSyllables(word)
	}
	// A word contributes at least one syllable.
	if syllables < len(words) {
		syllables = len(words)
	}

	avgSentenceLen := float64(len(words)) / float64(sentences)
	avgSyllables := float64(syllables) / float64(len(words))

	ease := 206.835 - 1.015*avgSentenceLen - 84.6*avgSyllables
	if ease < 0 {
		ease = 0
	}
	if ease > 100 {
		ease = 100
	}
	grade := 0.39*avgSentenceLen + 11.8*avgSyllables - 15.59
	if grade < 0 {
		grade = 0
	}
	return Score{Grade: round1(grade), Ease: round1(ease)}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func splitWords(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '\'' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}

func countSentences(text string) int {
	count := 0
	inRun := false
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if !inRun {
				count++
			}
			inRun = true
			continue
		}
		inRun = false
	}
	if count == 0 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// countSyllables estimates syllables by counting transitions into a
// vowel group, with corrections for silent trailing "e" and the
// consonant+"le" ending.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	runes := make([]rune, 0, len(word))
	for _, r := range word {
		if r >= 'a' && r <= 'z' {
			runes = append(runes, r)
		}
	}
	if len(runes) == 0 {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range runes {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	n := len(runes)
	if n > 1 && runes[n-1] == 'e' && count > 1 {
		count--
	}
	if n > 2 && runes[n-1] == 'e' && runes[n-2] == 'l' && !isVowel(runes[n-3]) {
		count++
	}
	if count < 1 {
		count = 1
	}
	return count
}
