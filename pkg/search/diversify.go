package search

import (
	"math/rand/v2"
	"sync"
)

// DefaultLimit is the number of related searches shown under a result.
const DefaultLimit = 3

// RelatedTable is the editorial cross-reference table. Related maps a term
// href or a category id to labels of terms that pair well with it; Fallback
// lists generically popular term labels used for padding.
type RelatedTable struct {
	Related  map[string][]string `yaml:"related" json:"related"`
	Fallback []string            `yaml:"fallback" json:"fallback"`
}

// Diversifier assembles the "related searches" list for a query.
type Diversifier struct {
	terms   *TermTable
	related RelatedTable

	mu   sync.Mutex
	rand *rand.Rand
}

// NewDiversifier returns a diversifier over terms. src seeds the shuffle;
// nil means a randomly seeded source.
func NewDiversifier(terms *TermTable, related RelatedTable, src rand.Source) *Diversifier {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Diversifier{terms: terms, related: related, rand: rand.New(src)}
}

// Candidates returns the deduplicated suggestion pool before shuffling:
// the matched term, its related terms, the category's related terms, every
// term scoring above zero (best first), then fallback padding up to limit.
// Terms whose label equals the normalized query are left out.
func (d *Diversifier) Candidates(query string, term *Term, cat *Category, limit int) []Term {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := d.terms.Normalize(query)

	var out []Term
	seen := make(map[string]bool)
	add := func(t Term) {
		if seen[t.Query] || (q != "" && d.terms.Normalize(t.Query) == q) {
			return
		}
		seen[t.Query] = true
		out = append(out, t)
	}
	addLabels := func(labels []string) {
		for _, label := range labels {
			if t, ok := d.terms.Lookup(label); ok {
				add(*t)
			}
		}
	}

	if term != nil {
		add(*term)
		addLabels(d.related.Related[term.Href])
	}
	if cat != nil {
		addLabels(d.related.Related[cat.ID])
	}
	for _, st := range d.terms.Scored(query) {
		add(st.Term)
	}
	for _, label := range d.related.Fallback {
		if len(out) >= limit {
			break
		}
		addLabels([]string{label})
	}
	return out
}

// Diversify shuffles the candidate pool and keeps the first limit terms.
// Only the order and the survivors of truncation depend on the random source.
func (d *Diversifier) Diversify(query string, term *Term, cat *Category, limit int) []Term {
	if limit <= 0 {
		limit = DefaultLimit
	}
	pool := d.Candidates(query, term, cat, limit)

	d.mu.Lock()
	d.rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	d.mu.Unlock()

	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}
