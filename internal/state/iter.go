package state

import (
	"iter"

	"github.com/nao1215/verbcrawl/internal/model"
)

// Pending is a query that is not yet done, with its parents.
type Pending struct {
	Base    *BaseVerb
	Derived *DerivedVerb
	Query   *Query

	// NextPage is the first page to fetch.
	NextPage int
}

// Template returns the record fields shared by every result of the query.
func (p Pending) Template() model.ResultRecord {
	return p.Query.record(Result{})
}

// Pending returns the pending queries in tree order. Each call starts a
// fresh walk; queries marked done after the walk started are skipped.
func (s *Store) Pending() iter.Seq[Pending] {
	return func(yield func(Pending) bool) {
		s.mu.Lock()
		var snapshot []*Query
		for _, b := range s.doc.BaseVerbs {
			for _, d := range b.Derived {
				for _, q := range d.Queries {
					if !q.Successful {
						snapshot = append(snapshot, q)
					}
				}
			}
		}
		s.mu.Unlock()

		for _, q := range snapshot {
			s.mu.Lock()
			done := q.Successful
			p := Pending{Base: q.derived.base, Derived: q.derived, Query: q, NextPage: q.NextPage}
			s.mu.Unlock()
			if done {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Records rebuilds the exported rows stored under q.
func (s *Store) Records(q *Query) []model.ResultRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q == nil {
		return nil
	}
	out := make([]model.ResultRecord, 0, len(q.Results))
	for _, res := range q.Results {
		out = append(out, q.record(res))
	}
	return out
}

// AllRecords returns the rows of every done query in tree order, and of
// pending queries too when includePending is set.
func (s *Store) AllRecords(includePending bool) []model.ResultRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ResultRecord
	for _, b := range s.doc.BaseVerbs {
		for _, d := range b.Derived {
			for _, q := range d.Queries {
				if !q.Successful && !includePending {
					continue
				}
				for _, res := range q.Results {
					out = append(out, q.record(res))
				}
			}
		}
	}
	return out
}
