// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Difficulty identifies a reading tier.
type Difficulty string

// Supported difficulty tiers.
const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Expert       Difficulty = "expert"
)

// Difficulties lists all tiers in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Expert}

// ParseDifficulty validates a tier name.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case Beginner, Intermediate, Expert:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("unknown difficulty %q (expected beginner, intermediate, or expert)", s)
}

// Strict reports whether the tier uses the restricted character set.
func (d Difficulty) Strict() bool {
	return d == Beginner || d == Intermediate
}

// Passage is an accepted practice text. Passages are created in bulk
// during book processing and never mutated afterwards.
type Passage struct {
	ID          string
	Text        string
	Difficulty  Difficulty
	Grade       float64
	Ease        float64
	Length      int
	WordCount   int
	Fingerprint string
}

// BookConfig describes one source book to process.
type BookConfig struct {
	ID          string
	Title       string
	Author      string
	Difficulty  Difficulty
	Source      string
	TargetGrade float64
	MinLength   int
	MaxLength   int
}

// PracticeConfig defines practice session settings.
type PracticeConfig struct {
	Difficulty Difficulty
}

// SessionResult captures a completed typing session for persistence.
type SessionResult struct {
	PassageID  string
	Difficulty Difficulty
	StartedAt  time.Time
	EndedAt    time.Time
	DurationMs int64
	Chars      int
	Errors     int
	GrossWPM   float64
	NetWPM     float64
	Accuracy   float64
}

// StatsConfig defines filters for the stats report.
type StatsConfig struct {
	Difficulty string
	Since      *time.Time
	Last       int
}
