package podcasts

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var embeddedCatalog []byte

// Dataset is the on-disk shape of a catalog file.
type Dataset struct {
	Genres   []Genre   `yaml:"genres"`
	Podcasts []Podcast `yaml:"podcasts"`
}

// StaticService serves a catalog held entirely in memory. It is safe for concurrent use
// because nothing mutates it after construction.
type StaticService struct {
	podcasts []Podcast
	genres   []Genre
	byID     map[string]int
}

// NewStaticService returns a StaticService populated with the embedded catalog.
func NewStaticService() (*StaticService, error) {
	ds, err := DecodeDataset(embeddedCatalog)
	if err != nil {
		return nil, fmt.Errorf("podcasts: embedded catalog: %w", err)
	}
	return NewStaticServiceFromDataset(ds), nil
}

// LoadStaticService reads a YAML catalog from path.
func LoadStaticService(path string) (*StaticService, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("podcasts: read %s: %w", path, err)
	}
	ds, err := DecodeDataset(raw)
	if err != nil {
		return nil, fmt.Errorf("podcasts: decode %s: %w", path, err)
	}
	return NewStaticServiceFromDataset(ds), nil
}

// DecodeDataset parses a YAML catalog. Unknown fields are rejected so typos surface at startup.
func DecodeDataset(raw []byte) (Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// NewStaticServiceFromDataset wraps an already decoded dataset.
func NewStaticServiceFromDataset(ds Dataset) *StaticService {
	svc := &StaticService{
		podcasts: ds.Podcasts,
		genres:   ds.Genres,
		byID:     make(map[string]int, len(ds.Podcasts)),
	}
	for i, p := range ds.Podcasts {
		if _, exists := svc.byID[p.ID]; !exists {
			svc.byID[p.ID] = i
		}
	}
	return svc
}

// List returns a copy of the podcast slice in dataset order.
func (s *StaticService) List(_ context.Context) ([]Podcast, error) {
	out := make([]Podcast, len(s.podcasts))
	copy(out, s.podcasts)
	return out, nil
}

// Get returns the first podcast with the given id.
func (s *StaticService) Get(_ context.Context, id string) (Podcast, error) {
	idx, ok := s.byID[id]
	if !ok {
		return Podcast{}, ErrPodcastNotFound
	}
	return s.podcasts[idx], nil
}

// Genres returns a copy of the genre dictionary.
func (s *StaticService) Genres(_ context.Context) ([]Genre, error) {
	out := make([]Genre, len(s.genres))
	copy(out, s.genres)
	return out, nil
}
