package ucan

import "iter"

// Store is an insertion ordered collection of tokens indexed by CID string.
// It is not safe for concurrent use.
type Store struct {
	order  []string
	tokens map[string]View
}

func NewStore(tokens ...View) *Store {
	s := &Store{tokens: map[string]View{}}
	for _, t := range tokens {
		s.Add(t)
	}
	return s
}

// Add a token, reporting false if a token with the same CID was present.
func (s *Store) Add(u View) bool {
	key := u.Link().String()
	if _, ok := s.tokens[key]; ok {
		return false
	}
	s.order = append(s.order, key)
	s.tokens[key] = u
	return true
}

func (s *Store) Get(link Link) (View, bool) {
	return s.GetString(link.String())
}

// GetString finds a token by the string form of its CID.
func (s *Store) GetString(cid string) (View, bool) {
	u, ok := s.tokens[cid]
	return u, ok
}

func (s *Store) Has(link Link) bool {
	_, ok := s.tokens[link.String()]
	return ok
}

func (s *Store) Len() int {
	return len(s.order)
}

// All iterates tokens in the order they were added.
func (s *Store) All() iter.Seq[View] {
	return func(yield func(View) bool) {
		for _, k := range s.order {
			if !yield(s.tokens[k]) {
				return
			}
		}
	}
}

// Links returns the CIDs of the tokens in the order they were added.
func (s *Store) Links() []Link {
	links := make([]Link, 0, len(s.order))
	for _, k := range s.order {
		links = append(links, s.tokens[k].Link())
	}
	return links
}
