package catalog

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// IdentitySorts are the editorial orderings. They keep the input order.
var IdentitySorts = []string{"recommended", "featured", "curated"}

// Comparator orders two items. The collator is created per sort call since
// collators are not safe for concurrent use.
type Comparator[T any] func(c *collate.Collator, a, b T) int

// Sort orders items in place with the comparator registered under key.
// Identity and unknown keys leave items untouched. The sort is stable.
func (e *Engine[T]) Sort(items []T, key string) {
	cmp := e.sorts[key]
	if cmp == nil || len(items) < 2 {
		return
	}
	c := newCollator()
	slices.SortStableFunc(items, func(a, b T) int { return cmp(c, a, b) })
}

func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase, collate.Loose)
}

// ByName compares the names returned by name with locale-aware collation.
func ByName[T any](name func(T) string) Comparator[T] {
	return func(c *collate.Collator, a, b T) int {
		return c.CompareString(name(a), name(b))
	}
}

// BySeriesThenName groups items by series, collated, with items that have no
// series last, then orders each group by name.
func BySeriesThenName[T any](series, name func(T) string) Comparator[T] {
	return func(c *collate.Collator, a, b T) int {
		sa, sb := series(a), series(b)
		switch {
		case sa == "" && sb != "":
			return 1
		case sa != "" && sb == "":
			return -1
		}
		if r := c.CompareString(sa, sb); r != 0 {
			return r
		}
		return c.CompareString(name(a), name(b))
	}
}
