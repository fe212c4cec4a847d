package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options controls how much content a run produces.
type Options struct {
	Users           int      `yaml:"users"`
	Admins          int      `yaml:"admins"`
	BlockedUsers    int      `yaml:"blocked_users"`
	Posts           int      `yaml:"posts"`
	CommentsPerPost int      `yaml:"comments_per_post"`
	TagsPerPost     int      `yaml:"tags_per_post"`
	PublishedRatio  float64  `yaml:"published_ratio"`
	MaxDays         int      `yaml:"max_days"`
	Categories      []string `yaml:"categories"`
	Tags            []string `yaml:"tags"`
	RandomSeed      int64    `yaml:"random_seed"`
}

// DefaultOptions is the content produced when no preset is given.
func DefaultOptions() Options {
	return Options{
		Users:           20,
		Admins:          1,
		BlockedUsers:    2,
		Posts:           80,
		CommentsPerPost: 3,
		TagsPerPost:     2,
		PublishedRatio:  0.8,
		MaxDays:         90,
		Categories:      []string{"Travel", "Cooking", "Technology", "Books", "Music"},
		Tags:            []string{"golang", "postgres", "recipes", "hiking", "reviews", "vinyl", "tutorial", "weekend"},
	}
}

// LoadPreset reads a YAML preset. Keys it does not set keep their defaults.
func LoadPreset(path string) (Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(raw)
}

// ParsePreset decodes a YAML preset on top of DefaultOptions.
func ParsePreset(raw []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return Options{}, fmt.Errorf("parse preset: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate rejects presets that cannot produce a consistent data set.
func (o Options) Validate() error {
	switch {
	case o.Users < 1:
		return fmt.Errorf("preset: users must be at least 1")
	case o.Admins < 0 || o.BlockedUsers < 0 || o.Posts < 0 || o.CommentsPerPost < 0 || o.TagsPerPost < 0:
		return fmt.Errorf("preset: counts must not be negative")
	case o.Admins+o.BlockedUsers > o.Users:
		return fmt.Errorf("preset: admins and blocked users exceed users")
	case o.PublishedRatio < 0 || o.PublishedRatio > 1:
		return fmt.Errorf("preset: published_ratio must be between 0 and 1")
	case o.Posts > 0 && len(o.Categories) == 0:
		return fmt.Errorf("preset: posts need at least one category")
	}
	return nil
}
