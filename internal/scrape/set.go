package scrape

// orderedSet is a string set that preserves insertion order. Every
// dedup point in the pipeline (per-page extraction, cross-page
// accumulation, post-filter pass) goes through one of these so result
// ordering stays deterministic.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) Add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) AddAll(vs []string) {
	for _, v := range vs {
		s.Add(v)
	}
}

func (s *orderedSet) Len() int { return len(s.items) }

// Values returns the members in first-seen order. Never nil.
func (s *orderedSet) Values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
