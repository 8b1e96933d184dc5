// Package search resolves free-text queries against the curated search
// tables: top search terms, category suggestions and related searches.
package search

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"
)

// MinScore is the lowest fuzzy score that still counts as a match.
const MinScore = 12

// Fuzzy score weights.
const (
	scoreLabelHasQuery   = 25
	scoreQueryHasLabel   = 15
	scoreAliasExact      = 40
	scoreAliasPartial    = 18
	scoreKeywordExact    = 30
	scoreKeywordHasQuery = 10
	scoreQueryHasKeyword = 8

	minKeywordLen = 4
	minQueryLen   = 3
)

// Term is a curated top search term pointing at a catalog route.
type Term struct {
	Query        string   `yaml:"query" json:"query"`
	Href         string   `yaml:"href" json:"href"`
	Keywords     []string `yaml:"keywords" json:"keywords,omitempty"`
	Aliases      []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	OnlyProducts bool     `yaml:"only_products,omitempty" json:"onlyProducts,omitempty"`
}

// termKeys holds a term's comparison keys, normalized once.
type termKeys struct {
	label    string
	aliases  []string
	keywords []string
}

// TermTable is an immutable, ordered table of terms. Table order matters:
// the exact tier returns the first owner of a key.
type TermTable struct {
	terms     []Term
	keys      []termKeys
	byQuery   map[string]int
	normalize Normalizer
}

// NewTermTable validates terms and precomputes their keys. Keys and queries
// are always trimmed and lowercased before normalize runs; a nil normalizer
// means NormalizeLowercaseUTF8.
func NewTermTable(terms []Term, normalize Normalizer) (*TermTable, error) {
	if normalize == nil {
		normalize = NormalizeLowercaseUTF8
	} else {
		custom := normalize
		normalize = func(s string) string { return custom(NormalizeLowercaseUTF8(s)) }
	}
	t := &TermTable{
		terms:     slices.Clone(terms),
		keys:      make([]termKeys, len(terms)),
		byQuery:   make(map[string]int, len(terms)),
		normalize: normalize,
	}
	for i, term := range t.terms {
		if strings.TrimSpace(term.Query) == "" {
			return nil, fmt.Errorf("term %d: %w", i, ErrInvalidEntry)
		}
		if _, dup := t.byQuery[term.Query]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTerm, term.Query)
		}
		t.byQuery[term.Query] = i
		t.keys[i] = termKeys{
			label:    normalize(term.Query),
			aliases:  normalizeAll(normalize, term.Aliases),
			keywords: normalizeAll(normalize, term.Keywords),
		}
	}
	return t, nil
}

func normalizeAll(normalize Normalizer, in []string) []string {
	var out []string
	for _, s := range in {
		if n := normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of terms.
func (t *TermTable) Len() int { return len(t.terms) }

// Terms returns a copy of the table in order.
func (t *TermTable) Terms() []Term { return slices.Clone(t.terms) }

// Normalize applies the table's normalizer.
func (t *TermTable) Normalize(s string) string { return t.normalize(s) }

// Lookup returns the term whose query label is exactly label.
func (t *TermTable) Lookup(label string) (*Term, bool) {
	i, ok := t.byQuery[label]
	if !ok {
		return nil, false
	}
	term := t.terms[i]
	return &term, true
}

// Resolve maps a raw query to its best term. An exact label, alias or keyword
// match wins in table order; otherwise the highest fuzzy score wins, first
// seen on ties, provided it reaches MinScore.
func (t *TermTable) Resolve(query string) (*Term, bool) {
	q := t.normalize(query)
	if q == "" {
		return nil, false
	}
	if i := t.exact(q); i >= 0 {
		term := t.terms[i]
		return &term, true
	}

	best, bestScore := -1, 0
	for i := range t.terms {
		if s := t.keys[i].score(q); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 || bestScore < MinScore {
		return nil, false
	}
	term := t.terms[best]
	return &term, true
}

func (t *TermTable) exact(q string) int {
	for i, k := range t.keys {
		if k.label == q || slices.Contains(k.aliases, q) || slices.Contains(k.keywords, q) {
			return i
		}
	}
	return -1
}

// Score returns the fuzzy score of the term labelled label against query,
// or 0 if there is no such term.
func (t *TermTable) Score(label, query string) int {
	i, ok := t.byQuery[label]
	if !ok {
		return 0
	}
	return t.keys[i].score(t.normalize(query))
}

// ScoredTerm is a term with its fuzzy score for some query.
type ScoredTerm struct {
	Term  Term `json:"term"`
	Score int  `json:"score"`
}

// Scored returns every term scoring above zero for query, best first. Equal
// scores keep table order.
func (t *TermTable) Scored(query string) []ScoredTerm {
	q := t.normalize(query)
	if q == "" {
		return nil
	}
	var out []ScoredTerm
	for i, k := range t.keys {
		if s := k.score(q); s > 0 {
			out = append(out, ScoredTerm{Term: t.terms[i], Score: s})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}

// score is the additive fuzzy score of a normalized query.
func (k termKeys) score(q string) int {
	if q == "" {
		return 0
	}
	score := 0
	if strings.Contains(k.label, q) {
		score += scoreLabelHasQuery
	}
	if k.label != "" && strings.Contains(q, k.label) {
		score += scoreQueryHasLabel
	}
	for _, a := range k.aliases {
		switch {
		case a == q:
			score += scoreAliasExact
		case strings.Contains(a, q) || strings.Contains(q, a):
			score += scoreAliasPartial
		}
	}
	qLen := utf8.RuneCountInString(q)
	for _, kw := range k.keywords {
		if kw == q {
			score += scoreKeywordExact
			continue
		}
		if utf8.RuneCountInString(kw) < minKeywordLen || qLen < minQueryLen {
			continue
		}
		switch {
		case strings.Contains(kw, q):
			score += scoreKeywordHasQuery
		case strings.Contains(q, kw):
			score += scoreQueryHasKeyword
		}
	}
	return score
}

// Collision is a normalized exact-match key owned by more than one term.
// Only the first owner in table order can ever be returned for it.
type Collision struct {
	Key   string   `json:"key"`
	Terms []string `json:"terms"`
}

// Collisions reports exact-tier keys shared by several terms, sorted by key.
func (t *TermTable) Collisions() []Collision {
	owners := make(map[string][]string)
	for i, k := range t.keys {
		keys := append([]string{k.label}, k.aliases...)
		keys = append(keys, k.keywords...)
		for _, key := range keys {
			if key == "" || slices.Contains(owners[key], t.terms[i].Query) {
				continue
			}
			owners[key] = append(owners[key], t.terms[i].Query)
		}
	}

	var out []Collision
	for key, terms := range owners {
		if len(terms) > 1 {
			out = append(out, Collision{Key: key, Terms: terms})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
