// Package pipeline turns raw book text into tier-ready practice passages.
package pipeline

import (
	"regexp"
	"strings"
)

var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

// splitParagraphs breaks raw text on blank-line boundaries, dropping
// empty paragraphs and normalizing internal line breaks to spaces.
func splitParagraphs(raw string) []string {
	parts := paragraphSplitRe.Split(raw, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		p := strings.Join(strings.Fields(part), " ")
		if p == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// sentenceEnds returns the end offsets of sentence-terminated chunks in
// block. Each offset points just past a run of '.', '!' or '?'.
func sentenceEnds(block string) []int {
	var ends []int
	inRun := false
	for i, r := range block {
		if r == '.' || r == '!' || r == '?' {
			inRun = true
			continue
		}
		if inRun {
			ends = append(ends, i)
			inRun = false
		}
	}
	if inRun {
		ends = append(ends, len(block))
	}
	return ends
}

// Candidates slices raw text into sentence-aligned candidate strings
// whose lengths fall within [minLen, maxLen]. Every paragraph is a
// starting point; following paragraphs are accumulated (joined with a
// single space) until the block exceeds 1.5x maxLen, and every running
// sentence-prefix of the block that fits the bound is emitted. This
// yields multiple candidate lengths per starting point instead of one
// fixed-size window.
func Candidates(raw string, minLen, maxLen int) []string {
	if minLen <= 0 || maxLen < minLen {
		return nil
	}
	paragraphs := splitParagraphs(raw)
	limit := maxLen + maxLen/2

	var out []string
	for start := range paragraphs {
		var b strings.Builder
		for j := start; j < len(paragraphs); j++ {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(paragraphs[j])
			if b.Len() > limit {
				break
			}
		}
		block := b.String()

		seen := false
		for _, end := range sentenceEnds(block) {
			chunk := strings.TrimSpace(block[:end])
			if len(chunk) < minLen || len(chunk) > maxLen {
				continue
			}
			out = append(out, chunk)
			if chunk == block {
				seen = true
			}
		}
		if !seen && len(block) >= minLen && len(block) <= maxLen {
			out = append(out, block)
		}
	}
	return out
}
