package sport

import "sort"

// Selection is the set of sports chosen for one terrain form. Membership is
// keyed by id; insertion order does not matter. A selection is not required
// to stay a subset of the current catalog: entries picked before a catalog
// refresh survive it.
type Selection struct {
	items map[int64]Sport
}

func NewSelection() *Selection {
	return &Selection{items: make(map[int64]Sport)}
}

// Toggle flips membership for item: present entries are removed, absent ones
// added. Toggling twice restores the prior state.
func (s *Selection) Toggle(item Sport) {
	if _, ok := s.items[item.ID]; ok {
		delete(s.items, item.ID)
		return
	}
	s.items[item.ID] = item
}

func (s *Selection) IsSelected(id int64) bool {
	_, ok := s.items[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.items)
}

// IDs returns the selected ids sorted ascending so submit payloads stay
// deterministic.
func (s *Selection) IDs() []int64 {
	out := make([]int64, 0, len(s.items))
	for id := range s.items {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Items returns the selected sports ordered by id.
func (s *Selection) Items() []Sport {
	ids := s.IDs()
	out := make([]Sport, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.items[id])
	}

	return out
}

// Clear empties the selection. Used after a successful create submit.
func (s *Selection) Clear() {
	s.items = make(map[int64]Sport)
}
