package podcasts

import (
	"context"
	"errors"
)

// Service exposes the read-only podcast catalog.
type Service interface {
	// List returns every podcast in dataset order.
	List(ctx context.Context) ([]Podcast, error)

	// Get returns a single podcast by id.
	Get(ctx context.Context, id string) (Podcast, error)

	// Genres returns the genre dictionary used to resolve Podcast.Genres.
	Genres(ctx context.Context) ([]Genre, error)
}

// ErrPodcastNotFound is returned when a podcast id does not exist in the catalog.
var ErrPodcastNotFound = errors.New("podcast not found")

// Podcast is a catalog entry. Records are owned by the dataset and never mutated by views.
type Podcast struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Image       string   `yaml:"image" json:"image"`
	Description string   `yaml:"description" json:"description"`
	Genres      []int    `yaml:"genres" json:"genres"`
	Seasons     []Season `yaml:"seasons" json:"seasons"`
	// Updated is an ISO-8601 timestamp string.
	Updated string `yaml:"updated" json:"updated"`
}

// Season is one season of a podcast; its position in Podcast.Seasons defines its number.
type Season struct {
	Title    string `yaml:"title" json:"title"`
	Episodes int    `yaml:"episodes" json:"episodes"`
}

// Genre maps a numeric genre id to its display title.
type Genre struct {
	ID    int    `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}
