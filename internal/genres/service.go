// Package genres resolves numeric genre identifiers to display names.
package genres

import "finitefield.org/podcast-catalog/internal/podcasts"

// Unknown is shown for genre ids that are not in the dictionary.
const Unknown = "Unknown"

// Service looks genre titles up by id. The zero value resolves every id to Unknown.
type Service struct {
	titles map[int]string
}

// NewService indexes the given genre dictionary. When an id appears more than once the
// first title wins.
func NewService(list []podcasts.Genre) *Service {
	titles := make(map[int]string, len(list))
	for _, g := range list {
		if _, exists := titles[g.ID]; !exists {
			titles[g.ID] = g.Title
		}
	}
	return &Service{titles: titles}
}

// Name returns the title for id, or Unknown.
func (s *Service) Name(id int) string {
	if s != nil {
		if title, ok := s.titles[id]; ok {
			return title
		}
	}
	return Unknown
}

// Names maps ids to titles one-to-one: same length and order as ids, duplicates kept,
// unmatched ids become Unknown. A nil input yields an empty, non-nil slice.
func (s *Service) Names(ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Name(id))
	}
	return out
}
