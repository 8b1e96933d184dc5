package site

import (
	"slices"

	"github.com/hazyhaar/showroom/pkg/search"
)

// CheckReport lists content problems found at build time.
//
// Slug duplicates and term key collisions make lookups depend on file order,
// so they are errors. Dangling references are filtered at query time and
// only reported.
type CheckReport struct {
	DuplicateProducts map[string][]string            `json:"duplicate_products,omitempty"`
	DuplicateProjects []string                       `json:"duplicate_projects,omitempty"`
	TermCollisions    []search.Collision             `json:"term_collisions,omitempty"`
	DanglingProjects  map[string][]string            `json:"dangling_projects,omitempty"`
	DanglingProducts  map[string][]search.ProductRef `json:"dangling_products,omitempty"`
	UnknownRelated    []string                       `json:"unknown_related,omitempty"`
	Dropped           map[string]int                 `json:"dropped,omitempty"`
}

// Errors counts the problems that fail a strict build.
func (r *CheckReport) Errors() int {
	n := len(r.DuplicateProjects) + len(r.TermCollisions)
	for _, slugs := range r.DuplicateProducts {
		n += len(slugs)
	}
	return n
}

// Warnings counts the problems that are only reported.
func (r *CheckReport) Warnings() int {
	n := len(r.UnknownRelated)
	for _, slugs := range r.DanglingProjects {
		n += len(slugs)
	}
	for _, refs := range r.DanglingProducts {
		n += len(refs)
	}
	for _, d := range r.Dropped {
		n += d
	}
	return n
}

// Check inspects the loaded content for slug collisions, ambiguous search
// keys and references that point nowhere.
func (s *Site) Check() *CheckReport {
	r := &CheckReport{}

	for _, b := range s.brands {
		if len(b.dups) > 0 {
			if r.DuplicateProducts == nil {
				r.DuplicateProducts = make(map[string][]string)
			}
			r.DuplicateProducts[b.ID] = slices.Clone(b.dups)
		}
	}
	r.DuplicateProjects = slices.Clone(s.projectDups)
	r.TermCollisions = s.terms.Collisions()

	for _, c := range s.categories.Categories() {
		for _, slug := range c.Projects {
			if _, ok := s.lookupProject(slug); !ok {
				if r.DanglingProjects == nil {
					r.DanglingProjects = make(map[string][]string)
				}
				r.DanglingProjects[c.ID] = append(r.DanglingProjects[c.ID], slug)
			}
		}
		for _, ref := range c.Products {
			if _, ok := s.lookupProduct(ref.Brand, ref.Slug); !ok {
				if r.DanglingProducts == nil {
					r.DanglingProducts = make(map[string][]search.ProductRef)
				}
				r.DanglingProducts[c.ID] = append(r.DanglingProducts[c.ID], ref)
			}
		}
	}

	seen := make(map[string]bool)
	check := func(label string) {
		if _, ok := s.terms.Lookup(label); !ok && !seen[label] {
			seen[label] = true
			r.UnknownRelated = append(r.UnknownRelated, label)
		}
	}
	keys := make([]string, 0, len(s.related.Related))
	for k := range s.related.Related {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, label := range s.related.Related[k] {
			check(label)
		}
	}
	for _, label := range s.related.Fallback {
		check(label)
	}

	for file, st := range s.stats {
		if st.Dropped() > 0 {
			if r.Dropped == nil {
				r.Dropped = make(map[string]int)
			}
			r.Dropped[file] = st.Dropped()
		}
	}
	return r
}
