package search

import (
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contentDir = filepath.Join("..", "..", "content", "search")

func loadTables(t *testing.T) (*TermTable, *CategoryTable, RelatedTable) {
	t.Helper()
	terms, err := LoadTerms(filepath.Join(contentDir, "terms.yaml"))
	require.NoError(t, err)
	cats, err := LoadCategories(filepath.Join(contentDir, "categories.yaml"))
	require.NoError(t, err)
	related, err := LoadRelated(filepath.Join(contentDir, "related.yaml"))
	require.NoError(t, err)
	return terms, cats, related
}

func TestResolveTerm_Scenarios(t *testing.T) {
	terms, _, _ := loadTables(t)

	tests := []struct {
		query string
		href  string
	}{
		{"wall speakers", "/products/amina"},
		{"  Wall Speakers ", "/products/amina"},
		{"amina", "/products/amina"},
		{"Amina", "/products/amina"},
		{"bearbrick speaker", "/products/bearbricks"},
		{"radiocubo", "/products/brionvega"},
		{"coda", "/products/coda"},
		{"line arrays", "/products/coda"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			term, ok := terms.Resolve(tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.href, term.Href)
		})
	}
}

func TestResolveTerm_NoMatch(t *testing.T) {
	terms, _, _ := loadTables(t)
	for _, q := range []string{"xyzzyqqq123", "", "   ", "woof"} {
		term, ok := terms.Resolve(q)
		assert.False(t, ok, "query %q", q)
		assert.Nil(t, term)
	}
	// "woof" only reaches one keyword partially, which stays under the threshold.
	assert.Equal(t, scoreKeywordHasQuery, terms.Score("Coda line arrays", "woof"))
}

// An exact key wins over a higher fuzzy score elsewhere, and the first
// owner of an exact key wins over later ones.
func TestResolveTerm_ExactPrecedence(t *testing.T) {
	table, err := NewTermTable([]Term{
		{Query: "Catalogue", Href: "/catalogue", Keywords: []string{"edge"}},
		{Query: "Edge", Href: "/products/amina/edge", Aliases: []string{"edge"}, Keywords: []string{"edge"}},
		{Query: "Edge speakers", Href: "/products/amina", Aliases: []string{"edge speaker"}},
	}, nil)
	require.NoError(t, err)

	term, ok := table.Resolve("edge")
	require.True(t, ok)
	assert.Equal(t, "/catalogue", term.Href)
	assert.Less(t, table.Score("Catalogue", "edge"), table.Score("Edge", "edge"))
}

func TestResolveTerm_TieKeepsFirst(t *testing.T) {
	table, err := NewTermTable([]Term{
		{Query: "Garden speakers A", Href: "/a"},
		{Query: "Garden speakers B", Href: "/b"},
	}, nil)
	require.NoError(t, err)

	term, ok := table.Resolve("garden")
	require.True(t, ok)
	assert.Equal(t, "/a", term.Href)
}

func TestScore(t *testing.T) {
	table, err := NewTermTable([]Term{{
		Query:    "Invisible speakers",
		Aliases:  []string{"amina", "amina speakers"},
		Keywords: []string{"wall speakers", "in-wall", "hifi"},
	}}, nil)
	require.NoError(t, err)

	tests := []struct {
		query string
		want  int
	}{
		{"invisible", scoreLabelHasQuery},
		{"invisible speakers for my hotel", scoreQueryHasLabel},
		{"amina", scoreAliasExact + scoreAliasPartial},
		{"amina speakers", scoreAliasExact + scoreAliasPartial},
		{"wall speakers", scoreKeywordExact},
		{"wall", scoreKeywordHasQuery * 2},
		{"my wall speakers", scoreQueryHasKeyword},
		// Short query: keyword partials need at least three characters.
		{"wa", 0},
		// Short keyword: "hifi" is four characters, so it still counts.
		{"hifi system", scoreQueryHasKeyword},
		{"nothing", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.Score("Invisible speakers", tt.query), "query %q", tt.query)
	}
	assert.Zero(t, table.Score("No such term", "wall"))
}

func TestScored_OrderedByScore(t *testing.T) {
	terms, _, _ := loadTables(t)
	scored := terms.Scored("speakers")
	require.NotEmpty(t, scored)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
	assert.Nil(t, terms.Scored(" "))
}

func TestNewTermTable_Invalid(t *testing.T) {
	_, err := NewTermTable([]Term{{Query: "A"}, {Query: "A"}}, nil)
	assert.True(t, errors.Is(err, ErrDuplicateTerm))

	_, err = NewTermTable([]Term{{Query: " "}}, nil)
	assert.True(t, errors.Is(err, ErrInvalidEntry))
}

func TestCollisions(t *testing.T) {
	terms, _, _ := loadTables(t)
	assert.Empty(t, terms.Collisions(), "shipped terms must not share exact keys")

	table, err := NewTermTable([]Term{
		{Query: "Amina", Keywords: []string{"wall speakers", "amina"}},
		{Query: "Invisible", Keywords: []string{"Wall Speakers"}},
		{Query: "Other", Aliases: []string{"amina"}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []Collision{
		{Key: "amina", Terms: []string{"Amina", "Other"}},
		{Key: "wall speakers", Terms: []string{"Amina", "Invisible"}},
	}, table.Collisions())
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, "café bar", NormalizeLowercaseUTF8("  Café BAR "))
	assert.Equal(t, "cafe bar", NormalizeLowercaseASCII("  Café BAR "))
	assert.Equal(t, "cafe", GetNormalizer("lowercase_ascii")("CAFÉ"))
	assert.Equal(t, "café", GetNormalizer("")("CAFÉ"))
	assert.Equal(t, "café", GetNormalizer("none")(" CAFÉ "))
	assert.Equal(t, "bars and clubs", NormalizeCategory("  Bars&Clubs "))
	assert.Equal(t, "hotels and restaurants", NormalizeCategory("Hotels  &   Restaurants"))
}

func TestResolve_AlwaysTrimsAndLowercases(t *testing.T) {
	identity := func(s string) string { return s }
	table, err := NewTermTable([]Term{{Query: "Amina", Href: "/products/amina"}}, identity)
	require.NoError(t, err)

	term, ok := table.Resolve(" AMINA ")
	require.True(t, ok)
	assert.Equal(t, "Amina", term.Query)
	assert.Equal(t, "amina", table.Normalize("  Amina"))

	for _, mode := range []string{"", "lowercase_utf8", "lowercase_ascii", "none"} {
		table, err := ParseTerms([]byte("normalize: " + mode + "\nterms:\n  - query: Amina\n    href: /products/amina\n"))
		require.NoError(t, err, mode)
		_, ok := table.Resolve(" AMINA ")
		assert.True(t, ok, mode)
	}
}

func TestParseTerms_ASCIIMode(t *testing.T) {
	table, err := ParseTerms([]byte(`
normalize: lowercase_ascii
terms:
  - query: Café speakers
    href: /products/amina
    keywords: [brasserie]
`))
	require.NoError(t, err)

	term, ok := table.Resolve("CAFE SPEAKERS")
	require.True(t, ok)
	assert.Equal(t, "/products/amina", term.Href)

	_, err = ParseTerms([]byte("terms: [unclosed"))
	assert.Error(t, err)
}

func TestResolveCategory_Scenarios(t *testing.T) {
	_, cats, _ := loadTables(t)

	tests := []struct {
		query string
		id    string
	}{
		{"club", "club"},
		{"Clubs & Nightlife", "club"},
		{"hotels and restaurants", "hospitality"},
		{"restaurants", "hospitality"},
		{"dance floor", "club"},
		{"a villa by the sea", "residential"},
		{"boutique", "retail"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, ok := cats.Resolve(tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.id, c.ID)
		})
	}

	for _, q := range []string{"", "xyzzyqqq123"} {
		_, ok := cats.Resolve(q)
		assert.False(t, ok, "query %q", q)
	}
}

// A later tier never beats an earlier one, whatever the table order.
func TestResolveCategory_TierOrder(t *testing.T) {
	cats, err := NewCategoryTable([]Category{
		{ID: "bars", Label: "Wine bars", Keywords: []string{"cellar"}},
		{ID: "wine", Label: "Cellars"},
		{ID: "tasting", Label: "Wine"},
	})
	require.NoError(t, err)

	c, ok := cats.Resolve("wine")
	require.True(t, ok)
	assert.Equal(t, "tasting", c.ID, "label equality first")

	c, ok = cats.Resolve("cellars")
	require.True(t, ok)
	assert.Equal(t, "wine", c.ID, "label equality beats keyword containment")

	c, ok = cats.Resolve("bars")
	require.True(t, ok)
	assert.Equal(t, "bars", c.ID)
}

func TestNewCategoryTable_Invalid(t *testing.T) {
	_, err := NewCategoryTable([]Category{{ID: "a"}, {ID: "a"}})
	assert.True(t, errors.Is(err, ErrDuplicateCategory))

	_, err = NewCategoryTable([]Category{{Label: "No id"}})
	assert.True(t, errors.Is(err, ErrInvalidEntry))
}

func labels(terms []Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Query
	}
	return out
}

func TestDiversifier_Candidates(t *testing.T) {
	terms, cats, related := loadTables(t)
	d := NewDiversifier(terms, related, rand.NewPCG(1, 2))

	amina, _ := terms.Resolve("amina")
	club, _ := cats.Get("club")
	brionvega, _ := terms.Lookup("Brionvega radios")

	tests := []struct {
		name  string
		query string
		term  *Term
		cat   *Category
		want  []string
	}{
		{"term with related", "amina", amina, nil,
			[]string{"Invisible speakers", "Outdoor speakers", "Residential projects"}},
		{"no match pads from fallback", "xyzzyqqq123", nil, nil,
			[]string{"Invisible speakers", "Brionvega radios", "Coda line arrays"}},
		{"category related then fallback", "club", nil, club,
			[]string{"Coda line arrays", "Bearbrick speakers", "Invisible speakers"}},
		{"searched label is excluded", "Brionvega Radios", brionvega, nil,
			[]string{"Invisible speakers", "Coda line arrays", "Bearbrick speakers"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labels(d.Candidates(tt.query, tt.term, tt.cat, DefaultLimit)))
		})
	}
}

func TestDiversifier_ScoredTermsJoinThePool(t *testing.T) {
	terms, _, related := loadTables(t)
	d := NewDiversifier(terms, related, rand.NewPCG(1, 2))

	pool := labels(d.Candidates("speakers", nil, nil, DefaultLimit))
	for _, st := range terms.Scored("speakers") {
		assert.Contains(t, pool, st.Term.Query)
	}
	assert.Len(t, pool, len(terms.Scored("speakers")))
}

func TestDiversify_SetIsDeterministic(t *testing.T) {
	terms, _, related := loadTables(t)
	amina, _ := terms.Resolve("amina")

	firsts := make(map[string]bool)
	for seed := uint64(0); seed < 40; seed++ {
		d := NewDiversifier(terms, related, rand.NewPCG(seed, seed))
		got := labels(d.Diversify("amina", amina, nil, DefaultLimit))
		assert.ElementsMatch(t, []string{"Invisible speakers", "Outdoor speakers", "Residential projects"}, got)
		firsts[got[0]] = true
	}
	assert.Greater(t, len(firsts), 1, "order should depend on the random source")
}

func TestDiversify_Truncates(t *testing.T) {
	terms, _, related := loadTables(t)
	d := NewDiversifier(terms, related, nil)

	pool := labels(d.Candidates("speakers", nil, nil, 2))
	require.Greater(t, len(pool), 2)

	got := labels(d.Diversify("speakers", nil, nil, 2))
	assert.Len(t, got, 2)
	assert.Subset(t, pool, got)
	assert.NotEqual(t, got[0], got[1])

	assert.Len(t, d.Diversify("xyzzyqqq123", nil, nil, 0), DefaultLimit)
}

func TestLoadRelated_Missing(t *testing.T) {
	r, err := LoadRelated(filepath.Join(t.TempDir(), "related.yaml"))
	require.NoError(t, err)
	assert.Empty(t, r.Related)
}
