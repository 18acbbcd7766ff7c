package pipeline

import (
	"regexp"
	"strings"

	"github.com/typelit/typelit/internal/model"
)

// Publisher, edition, and attribution phrases that leak into book text
// near chapter boundaries. Stripped before any character filtering.
var boilerplateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)project gutenberg[^.]*\.?`),
	regexp.MustCompile(`(?i)all rights reserved\.?`),
	regexp.MustCompile(`(?i)copyright(ed)?( ©)?( \d{4})?[^.]*\.?`),
	regexp.MustCompile(`(?i)printed in (the )?[a-z ]+\.?`),
	regexp.MustCompile(`(?i)published by [^.]*\.?`),
	regexp.MustCompile(`(?i)translated (from [a-z]+ )?by [^.]*\.?`),
	regexp.MustCompile(`(?i)illustrated by [^.]*\.?`),
	regexp.MustCompile(`(?i)(first|second|third|revised|new) edition\.?`),
	regexp.MustCompile(`(?i)\btranscriber'?s note[^.]*\.?`),
	regexp.MustCompile(`(?i)^chapter [ivxlcdm0-9]+\.?\s*`),
	regexp.MustCompile(`(?i)\bthe end\.?\s*$`),
}

func stripBoilerplate(text string) string {
	for _, re := range boilerplateRes {
		text = re.ReplaceAllString(text, " ")
	}
	return text
}

// strictAllowRe re-checks the cleaned text against the same character
// class the per-rune filter enforces.
var strictAllowRe = regexp.MustCompile(`^[a-zA-Z0-9\s.,]+$`)

var (
	repeatSpaceRe  = regexp.MustCompile(`\s+`)
	repeatPeriodRe = regexp.MustCompile(`\.{2,}`)
	repeatCommaRe  = regexp.MustCompile(`,{2,}`)
	repeatBangRe   = regexp.MustCompile(`!{2,}`)
	repeatQueryRe  = regexp.MustCompile(`\?{2,}`)
	spacedPunctRe  = regexp.MustCompile(`\s+([.,])`)
)

// smartRunes maps typographic characters to plain ASCII equivalents.
var smartRunes = map[rune]string{
	'‘': "'", '’': "'", '‚': "'", '‛': "'",
	'“': `"`, '”': `"`, '„': `"`,
	'–': "-", '—': "-", '―': "-",
	'…': "...",
	' ': " ",
}

func normalizeSmart(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if repl, ok := smartRunes[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// strictFilter keeps only letters, digits, space, period, and comma.
// It is a rune-by-rune code-point filter rather than a regex
// substitution so the allowed set cannot be widened by any encoding of
// the input.
func strictFilter(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == ',':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func hasLetter(text string) bool {
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// Clean normalizes a candidate for the given tier. It returns the
// empty string when the candidate cannot be made suitable.
func Clean(text string, difficulty model.Difficulty) string {
	if difficulty.Strict() {
		return cleanStrict(text)
	}
	return cleanExpert(text)
}

// cleanStrict produces text matching the restricted beginner and
// intermediate character set exactly.
func cleanStrict(text string) string {
	text = stripBoilerplate(text)
	text = strictFilter(text)
	text = repeatSpaceRe.ReplaceAllString(text, " ")
	text = repeatPeriodRe.ReplaceAllString(text, ".")
	text = repeatCommaRe.ReplaceAllString(text, ",")
	text = spacedPunctRe.ReplaceAllString(text, "$1")
	text = strings.TrimLeft(text, " .,")
	text = strings.TrimRight(text, " ,")
	if text == "" {
		return ""
	}
	if !strings.HasSuffix(text, ".") {
		text += "."
	}
	if len(text) < 20 || !hasLetter(text) {
		return ""
	}
	if !strictAllowRe.MatchString(text) {
		return ""
	}
	return text
}

// cleanExpert keeps broader punctuation but normalizes typographic
// characters and collapses repeated punctuation runs.
func cleanExpert(text string) string {
	text = normalizeSmart(text)
	text = stripBoilerplate(text)
	text = repeatPeriodRe.ReplaceAllString(text, ".")
	text = repeatBangRe.ReplaceAllString(text, "!")
	text = repeatQueryRe.ReplaceAllString(text, "?")
	text = repeatSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
