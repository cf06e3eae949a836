package state

import "github.com/nao1215/verbcrawl/internal/model"

// Counts summarises a set of queries.
type Counts struct {
	Queries int `json:"queries"`
	Done    int `json:"done"`
	Pending int `json:"pending"`
	Results int `json:"results"`
	Tokens  int `json:"tokens"`
}

func (c *Counts) add(q *Query) {
	c.Queries++
	if q.Successful {
		c.Done++
	} else {
		c.Pending++
	}
	c.Results += len(q.Results)
	for _, r := range q.Results {
		c.Tokens += r.Tokens
	}
}

// VerbStats summarises one base verb.
type VerbStats struct {
	Simplex string `json:"simplex"`
	Forms   int    `json:"forms"`
	Counts
}

// SubcorpusStats summarises one subcorpus.
type SubcorpusStats struct {
	Subcorpus model.Subcorpus `json:"subcorpus"`
	Counts
}

// Stats summarises the whole tree.
type Stats struct {
	BaseVerbs    int              `json:"baseVerbs"`
	DerivedForms int              `json:"derivedForms"`
	Total        Counts           `json:"total"`
	Verbs        []VerbStats      `json:"verbs"`
	Subcorpora   []SubcorpusStats `json:"subcorpora"`
}

// Stats computes progress counts over the tree.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{BaseVerbs: len(s.doc.BaseVerbs)}
	bySub := make(map[model.Subcorpus]*Counts)
	for _, b := range s.doc.BaseVerbs {
		vs := VerbStats{Simplex: b.Simplex, Forms: len(b.Derived)}
		st.DerivedForms += len(b.Derived)
		for _, d := range b.Derived {
			for _, q := range d.Queries {
				vs.add(q)
				st.Total.add(q)
				c, ok := bySub[q.Subcorpus]
				if !ok {
					c = &Counts{}
					bySub[q.Subcorpus] = c
				}
				c.add(q)
			}
		}
		st.Verbs = append(st.Verbs, vs)
	}
	for _, sub := range model.AllSubcorpora() {
		if c, ok := bySub[sub]; ok {
			st.Subcorpora = append(st.Subcorpora, SubcorpusStats{Subcorpus: sub, Counts: *c})
		}
	}
	return st
}
