// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/typelit/typelit/internal/model"
)

// Tier defaults applied to book entries that omit them.
const (
	defaultMinLength = 100
	defaultMaxLength = 300
)

var defaultTargetGrade = map[model.Difficulty]float64{
	model.Beginner:     3,
	model.Intermediate: 7,
	model.Expert:       11,
}

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Books    []BookEntry    `toml:"book"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Difficulty *string `toml:"difficulty"`
	RemoteURL  *string `toml:"remote-url"`
}

// BookEntry maps one [[book]] section.
type BookEntry struct {
	ID          string   `toml:"id"`
	Title       string   `toml:"title"`
	Author      string   `toml:"author"`
	Difficulty  string   `toml:"difficulty"`
	Source      string   `toml:"source"`
	TargetGrade *float64 `toml:"target-grade"`
	MinLength   *int     `toml:"min-length"`
	MaxLength   *int     `toml:"max-length"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// BookConfigs validates the [[book]] entries and fills in defaults.
func (c FileConfig) BookConfigs() ([]model.BookConfig, error) {
	books := make([]model.BookConfig, 0, len(c.Books))
	for i, entry := range c.Books {
		if entry.ID == "" {
			return nil, fmt.Errorf("book %d: id is required", i)
		}
		if entry.Source == "" {
			return nil, fmt.Errorf("book %q: source is required", entry.ID)
		}
		difficulty, err := model.ParseDifficulty(entry.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("book %q: %w", entry.ID, err)
		}
		book := model.BookConfig{
			ID:          entry.ID,
			Title:       entry.Title,
			Author:      entry.Author,
			Difficulty:  difficulty,
			Source:      entry.Source,
			TargetGrade: defaultTargetGrade[difficulty],
			MinLength:   defaultMinLength,
			MaxLength:   defaultMaxLength,
		}
		if entry.TargetGrade != nil {
			book.TargetGrade = *entry.TargetGrade
		}
		if entry.MinLength != nil {
			book.MinLength = *entry.MinLength
		}
		if entry.MaxLength != nil {
			book.MaxLength = *entry.MaxLength
		}
		if book.MinLength <= 0 || book.MaxLength < book.MinLength {
			return nil, fmt.Errorf("book %q: invalid length range [%d, %d]", entry.ID, book.MinLength, book.MaxLength)
		}
		books = append(books, book)
	}
	return books, nil
}
