// Package seed loads a YAML file of feed definitions and registers them
// through the facade at startup, so a fresh install can be populated
// without driving the HTTP API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arjunsatarkar/tagrss/app/core"
	"github.com/arjunsatarkar/tagrss/app/database"
)

type FeedDefinition struct {
	Source string   `yaml:"source"`
	Title  string   `yaml:"title"`
	Tags   []string `yaml:"tags"`
}

type seedFile struct {
	Feeds []FeedDefinition `yaml:"feeds"`
}

// Load parses the seed file at path.
func Load(path string) ([]FeedDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var parsed seedFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, def := range parsed.Feeds {
		if def.Source == "" {
			return nil, fmt.Errorf("seed feed %d has no source", i)
		}
	}

	return parsed.Feeds, nil
}

// Register adds every seed feed through the facade. Feeds whose source or
// title is already taken are skipped, so re-running with the same seed file
// is harmless. Fetch failures are logged and skipped: a dead seed source
// must not prevent startup.
func Register(ctx context.Context, c *core.Core, defs []FeedDefinition) int {
	registered := 0
	for _, def := range defs {
		feedID, err := c.AddFeed(ctx, def.Source, def.Tags, def.Title)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrSourceAlreadyExists), errors.Is(err, database.ErrTitleAlreadyInUse):
				slog.Debug("Seed feed already registered, skipping", "source", def.Source)
			default:
				slog.Warn("Failed to register seed feed", "source", def.Source, "error", err)
			}
			continue
		}

		registered++
		slog.Info("Registered seed feed", "feed_id", feedID, "source", def.Source)
	}
	return registered
}
