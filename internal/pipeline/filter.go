package pipeline

import (
	"strings"

	"github.com/typelit/typelit/internal/model"
	"github.com/typelit/typelit/internal/readability"
)

const (
	gradeTolerance    = 1.5
	maxCharsPerPeriod = 120.0
	maxCapitalRatio   = 0.08
	maxDigitRatio     = 0.05
	quoteChars        = "\"'‘’“”"
	fingerprintPrefix = 50
)

// PassageCap bounds how many passages a tier keeps per processing run.
const PassageCap = 500

// Suitable reports whether a cleaned candidate fits the tier. The
// grade check applies to every tier; beginner passages additionally
// reject residual quotes, long sentences, and heavy capital or digit
// use. Unsuitable candidates are discarded silently by the caller.
func Suitable(text string, difficulty model.Difficulty, targetGrade float64) bool {
	score := readability.Analyze(text)
	diff := score.Grade - targetGrade
	if diff < 0 {
		diff = -diff
	}
	if diff > gradeTolerance {
		return false
	}

	if difficulty != model.Beginner {
		return true
	}
	if strings.ContainsAny(text, quoteChars) {
		return false
	}
	periods := strings.Count(text, ".")
	if periods == 0 {
		periods = 1
	}
	if float64(len(text))/float64(periods) > maxCharsPerPeriod {
		return false
	}

	capitals, digits := 0, 0
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			capitals++
		case r >= '0' && r <= '9':
			digits++
		}
	}
	total := float64(len(text))
	if float64(capitals)/total > maxCapitalRatio {
		return false
	}
	if float64(digits)/total > maxDigitRatio {
		return false
	}
	return true
}

// Fingerprint derives the duplicate-detection key for a cleaned text:
// the lowercased first 50 characters with whitespace collapsed. Two
// passages diverging only after the prefix are treated as duplicates;
// that approximation is intended and bounds comparison cost.
func Fingerprint(text string) string {
	collapsed := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if len(collapsed) > fingerprintPrefix {
		collapsed = collapsed[:fingerprintPrefix]
	}
	return collapsed
}
