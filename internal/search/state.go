package search

import (
	"slices"
	"sync"
)

// FilterState holds the tag filter shared between screens. It is safe for
// concurrent use.
type FilterState struct {
	mu     sync.RWMutex
	tagIDs []string
}

// NewFilterState returns an empty filter state.
func NewFilterState() *FilterState {
	return &FilterState{}
}

// SelectedTags returns a copy of the selected tag IDs in selection order.
func (s *FilterState) SelectedTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tagIDs)
}

// SetSelectedTags replaces the selection, dropping repeats.
func (s *FilterState) SetSelectedTags(tagIDs []string) {
	out := make([]string, 0, len(tagIDs))
	for _, t := range tagIDs {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}

	s.mu.Lock()
	s.tagIDs = out
	s.mu.Unlock()
}

// Toggle selects tagID, or deselects it when already selected. It reports
// whether the tag is selected afterwards.
func (s *FilterState) Toggle(tagID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.tagIDs, tagID); i >= 0 {
		s.tagIDs = slices.Delete(s.tagIDs, i, i+1)
		return false
	}
	s.tagIDs = append(s.tagIDs, tagID)
	return true
}

// Clear deselects every tag.
func (s *FilterState) Clear() {
	s.mu.Lock()
	s.tagIDs = nil
	s.mu.Unlock()
}
