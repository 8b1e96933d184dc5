package content

import (
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Amina Edge 5", "amina-edge-5"},
		{"  Radio.Cubo!! ", "radio-cubo"},
		{"BE@RBRICK 1000%", "be-rbrick-1000"},
		{"---", ""},
		{"", ""},
		{"Café Bar", "caf-bar"},
		{"already-a-slug", "already-a-slug"},
		{"Multi   Space\tTab", "multi-space-tab"},
	}
	for _, tt := range tests {
		got := Slugify(tt.input)
		if got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDuplicateSlugs(t *testing.T) {
	got := DuplicateSlugs([]string{"a", "b", "a", "c", "b", "a"})
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DuplicateSlugs = %v, want %v", got, want)
	}
	if dups := DuplicateSlugs([]string{"x", "y"}); dups != nil {
		t.Errorf("DuplicateSlugs(unique) = %v, want nil", dups)
	}
}

func decode(t *testing.T, s string) any {
	t.Helper()
	raw, err := DecodeJSON([]byte(s))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	return raw
}

func TestNormalizeProducts_SlugResolution(t *testing.T) {
	raw := decode(t, `[
		{"slug": "  explicit-slug ", "name": "Whatever", "image": "/a.jpg"},
		{"name": "Amina Edge 5", "image": "/b.jpg"},
		{"name": "!!!", "image": "/c.jpg"},
		{"slug": "no-name", "image": "/d.jpg"}
	]`)

	products := NormalizeProducts(raw)
	if len(products) != 2 {
		t.Fatalf("products = %d, want 2", len(products))
	}
	if products[0].Slug != "explicit-slug" {
		t.Errorf("slug = %q, want explicit-slug", products[0].Slug)
	}
	if products[1].Slug != "amina-edge-5" {
		t.Errorf("slug = %q, want amina-edge-5", products[1].Slug)
	}
}

func TestNormalizeProducts_ImageFallback(t *testing.T) {
	raw := decode(t, `[
		{"name": "Own Image", "image": "/own.jpg", "finishes": [{"name": "White", "image": "/white.jpg"}]},
		{"name": "Finish Image", "finishes": [{"name": "Black", "image": "/black.jpg"}, {"name": "White", "image": "/white.jpg"}]},
		{"name": "First Finish Bare", "finishes": [{"name": "Black"}, {"name": "White", "image": "/white.jpg"}]},
		{"name": "No Image"}
	]`)

	products := NormalizeProducts(raw)
	if len(products) != 2 {
		t.Fatalf("products = %d, want 2", len(products))
	}
	if products[0].Image != "/own.jpg" {
		t.Errorf("image = %q, want /own.jpg", products[0].Image)
	}
	if products[1].Image != "/black.jpg" {
		t.Errorf("image = %q, want /black.jpg", products[1].Image)
	}
}

func TestNormalizeProducts_ImageFromUnnamedFirstFinish(t *testing.T) {
	raw := decode(t, `[
		{"name": "Unnamed First", "finishes": [{"image": "/a.jpg"}, {"name": "Red", "image": "/b.jpg"}]},
		{"name": "Only Unnamed", "finishes": [{"image": "/c.jpg"}]}
	]`)

	products := NormalizeProducts(raw)
	if len(products) != 2 {
		t.Fatalf("products = %d, want 2", len(products))
	}
	if products[0].Image != "/a.jpg" {
		t.Errorf("image = %q, want /a.jpg", products[0].Image)
	}
	if len(products[0].Finishes) != 1 || products[0].Finishes[0].Key != "red" {
		t.Errorf("finishes = %+v, want only red", products[0].Finishes)
	}
	if products[1].Image != "/c.jpg" || products[1].Finishes != nil {
		t.Errorf("product = %+v, want /c.jpg and no finishes", products[1])
	}
}

// A record with neither an image nor finishes is dropped, and only that one.
func TestNormalizeProducts_BrionvegaMissingImage(t *testing.T) {
	raw := decode(t, `[
		{"name": "Radiocubo TS522", "image": "/bv/radiocubo.jpg", "category": "Radio"},
		{"name": "Totem RR130", "image": "/bv/totem.jpg", "category": "Radio"},
		{"name": "Algol", "category": "Television"},
		{"name": "Cuboglass", "image": "/bv/cuboglass.jpg", "category": "Television"}
	]`)

	products := NormalizeProducts(raw)
	if got, want := len(products), len(asSlice(raw))-1; got != want {
		t.Fatalf("products = %d, want %d", got, want)
	}
	for _, p := range products {
		if p.Slug == "algol" {
			t.Error("product without image should be dropped")
		}
	}
}

func TestNormalizeProducts_Malformed(t *testing.T) {
	inputs := []any{
		nil,
		"products",
		42.0,
		map[string]any{"products": "nope"},
		[]any{nil, 1.0, "x", []any{}, map[string]any{"name": 12.0, "image": true}},
		[]any{map[string]any{"name": "Ok", "image": "/ok.jpg", "finishes": "bad", "specs": 7.0, "resources": map[string]any{}}},
	}
	for i, in := range inputs {
		products := NormalizeProducts(in)
		if i < len(inputs)-1 && len(products) != 0 {
			t.Errorf("input %d: products = %d, want 0", i, len(products))
		}
	}

	last := NormalizeProducts(inputs[len(inputs)-1])
	if len(last) != 1 {
		t.Fatalf("products = %d, want 1", len(last))
	}
	if last[0].Finishes != nil || last[0].Specs != nil || last[0].Resources != nil {
		t.Errorf("wrong-typed fields should degrade to empty, got %+v", last[0])
	}
}

func TestNormalizeProducts_WrappedDocument(t *testing.T) {
	raw := decode(t, `{"products": [{"name": "Totem", "image": "/t.jpg"}]}`)
	if got := len(NormalizeProducts(raw)); got != 1 {
		t.Errorf("products = %d, want 1", got)
	}
}

func TestNormalizeProducts_Frequency(t *testing.T) {
	tests := []struct {
		json string
		want *[2]float64
	}{
		{`[40, 20000]`, &[2]float64{40, 20000}},
		{`["55", "18000.5"]`, &[2]float64{55, 18000.5}},
		{`[40]`, nil},
		{`[40, 20000, 3]`, nil},
		{`[40, "high"]`, nil},
		{`"40-20000"`, nil},
		{`null`, nil},
	}
	for _, tt := range tests {
		raw := decode(t, `[{"name": "P", "image": "/p.jpg", "frequency": `+tt.json+`}]`)
		products := NormalizeProducts(raw)
		if len(products) != 1 {
			t.Fatalf("%s: products = %d, want 1", tt.json, len(products))
		}
		got := products[0].Frequency
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("frequency(%s) = %v, want %v", tt.json, got, tt.want)
		}
	}
}

func TestNormalizeProducts_SpecShapes(t *testing.T) {
	want := []Spec{{Label: "Impedance", Value: "8 ohm"}, {Label: "Sensitivity", Value: "88"}}

	shapes := map[string]string{
		"list":    `[{"label": "Impedance", "value": "8 ohm"}, {"label": "Sensitivity", "value": 88}]`,
		"wrapped": `{"specs": [{"label": "Impedance", "value": "8 ohm"}, {"key": "Sensitivity", "value": 88}]}`,
		"table":   `{"Sensitivity": 88, "Impedance": "8 ohm"}`,
	}
	for name, specs := range shapes {
		raw := decode(t, `[{"name": "P", "image": "/p.jpg", "specs": `+specs+`}]`)
		products := NormalizeProducts(raw)
		if len(products) != 1 {
			t.Fatalf("%s: products = %d", name, len(products))
		}
		if !reflect.DeepEqual(products[0].Specs, want) {
			t.Errorf("%s: specs = %+v, want %+v", name, products[0].Specs, want)
		}
	}
}

func TestNormalizeProducts_FacetFields(t *testing.T) {
	raw := decode(t, `[{
		"name": "Edge 5", "image": "/e.jpg", "power": 40, "weightKg": "1.2", "ipRating": "IP65",
		"finishes": [{"name": "Paintable White", "image": "/w.jpg", "gallery": ["/w1.jpg", 3, ""]}, {"label": "Black"}],
		"resources": [{"label": "Datasheet", "href": "/edge5.pdf"}, {"href": "/cad.zip"}, {"label": "broken"}],
		"specGroups": [{"title": "Acoustic", "specs": [{"label": "Drivers", "value": "1"}]}, {"title": "Empty", "specs": []}]
	}]`)

	p := NormalizeProducts(raw)[0]
	if p.Power != "40" {
		t.Errorf("power = %q, want 40", p.Power)
	}
	if p.WeightKg == nil || *p.WeightKg != 1.2 {
		t.Errorf("weightKg = %v, want 1.2", p.WeightKg)
	}
	if p.IPRating != "IP65" {
		t.Errorf("ipRating = %q", p.IPRating)
	}
	if got := p.FinishKeys(); !reflect.DeepEqual(got, []string{"paintable-white", "black"}) {
		t.Errorf("finish keys = %v", got)
	}
	if got := p.Finishes[0].Gallery; !reflect.DeepEqual(got, []string{"/w1.jpg"}) {
		t.Errorf("gallery = %v", got)
	}
	if len(p.Resources) != 2 || p.Resources[1].Label != "/cad.zip" {
		t.Errorf("resources = %+v", p.Resources)
	}
	if len(p.SpecGroups) != 1 || p.SpecGroups[0].Title != "Acoustic" {
		t.Errorf("spec groups = %+v", p.SpecGroups)
	}
}

func TestNormalizeProducts_Idempotent(t *testing.T) {
	doc := `[
		{"name": "Edge 5", "image": "/e.jpg", "finishes": [{"name": "White"}], "specs": {"B": 1, "A": 2}},
		{"name": "Algol"},
		{"name": "Totem", "image": "/t.jpg", "frequency": [1, 2]}
	]`
	first := NormalizeProducts(decode(t, doc))
	second := NormalizeProducts(decode(t, doc))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestParseProducts_TrailingData(t *testing.T) {
	tests := []string{
		`[{"name": "Edge 5", "image": "/e.jpg"}] {"broken`,
		`[{"name": "Edge 5", "image": "/e.jpg"}] [{"name": "Edge 3"}]`,
		`[{"name": `,
	}
	for _, tt := range tests {
		if _, _, err := ParseProducts([]byte(tt)); err == nil {
			t.Errorf("ParseProducts(%q): expected error", tt)
		}
	}
	if _, st, err := ParseProducts([]byte("[{\"name\": \"Edge 5\", \"image\": \"/e.jpg\"}]\n")); err != nil || st.Kept != 1 {
		t.Errorf("trailing newline: kept=%d err=%v", st.Kept, err)
	}
}
