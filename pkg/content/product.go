package content

import (
	"sort"
	"strings"
)

// Product is a normalized catalog product. Products are built once at load
// and never mutated afterwards.
type Product struct {
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Brand       string      `json:"brand,omitempty"`
	Headline    string      `json:"headline,omitempty"`
	Description string      `json:"description,omitempty"`
	Image       string      `json:"image"`
	Category    string      `json:"category,omitempty"`
	Series      string      `json:"series,omitempty"`
	Finishes    []Finish    `json:"finishes,omitempty"`
	Specs       []Spec      `json:"specs,omitempty"`
	SpecGroups  []SpecGroup `json:"specGroups,omitempty"`
	Resources   []Resource  `json:"resources,omitempty"`

	// Facet-only fields.
	Power     string      `json:"power,omitempty"`
	Frequency *[2]float64 `json:"frequency,omitempty"`
	WeightKg  *float64    `json:"weightKg,omitempty"`
	IPRating  string      `json:"ipRating,omitempty"`
}

// Finish is a color or material variant of a product.
type Finish struct {
	Name    string   `json:"name"`
	Key     string   `json:"key"`
	Image   string   `json:"image,omitempty"`
	Gallery []string `json:"gallery,omitempty"`
}

// Spec is one labelled technical value.
type Spec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SpecGroup is a titled block of specs.
type SpecGroup struct {
	Title string `json:"title"`
	Specs []Spec `json:"specs"`
}

// Resource is a labelled downloadable link (datasheet, manual, CAD).
type Resource struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// FinishKeys returns the slug keys of all finishes, in order.
func (p *Product) FinishKeys() []string {
	keys := make([]string, 0, len(p.Finishes))
	for _, f := range p.Finishes {
		if f.Key != "" {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// NormalizeProducts converts decoded JSON into products. raw may be an array
// of product objects or an object with a "products" array; anything else
// yields no products. Records without a slug, a name or an image are dropped.
func NormalizeProducts(raw any) []Product {
	records := asSlice(raw)
	if records == nil {
		records = asSlice(asMap(raw)["products"])
	}

	out := make([]Product, 0, len(records))
	for _, rec := range records {
		if p, ok := normalizeProduct(asMap(rec)); ok {
			out = append(out, p)
		}
	}
	return out
}

func normalizeProduct(m map[string]any) (Product, bool) {
	if m == nil {
		return Product{}, false
	}

	name := firstString(m, "name")
	if name == "" {
		return Product{}, false
	}
	slug := firstString(m, "slug")
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return Product{}, false
	}

	finishes := normalizeFinishes(m["finishes"])
	image := firstString(m, "image")
	if image == "" {
		// Only the first raw finish counts, named or not.
		if raw := asSlice(m["finishes"]); len(raw) > 0 {
			image = firstString(asMap(raw[0]), "image")
		}
	}
	if image == "" {
		return Product{}, false
	}

	p := Product{
		Slug:        slug,
		Name:        name,
		Headline:    firstString(m, "headline"),
		Description: firstString(m, "description"),
		Image:       image,
		Category:    firstString(m, "category"),
		Series:      firstString(m, "series"),
		Finishes:    finishes,
		Specs:       adaptSpecs(m["specs"]),
		SpecGroups:  normalizeSpecGroups(m["specGroups"]),
		Resources:   normalizeResources(m["resources"]),
		Power:       strings.TrimSpace(asText(m["power"])),
		IPRating:    firstString(m, "ipRating"),
	}
	if f, ok := frequencyRange(m["frequency"]); ok {
		p.Frequency = &f
	}
	if w, ok := asFloat(m["weightKg"]); ok {
		p.WeightKg = &w
	}
	return p, true
}

func normalizeFinishes(v any) []Finish {
	items := asSlice(v)
	if len(items) == 0 {
		return nil
	}
	out := make([]Finish, 0, len(items))
	for _, it := range items {
		m := asMap(it)
		name := firstString(m, "name", "label", "color")
		if name == "" {
			continue
		}
		out = append(out, Finish{
			Name:    name,
			Key:     Slugify(name),
			Image:   firstString(m, "image"),
			Gallery: asStrings(m["gallery"]),
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// frequencyRange accepts exactly two finite numbers. Anything else means the
// field is absent, not [0, 0].
func frequencyRange(v any) ([2]float64, bool) {
	items := asSlice(v)
	if len(items) != 2 {
		return [2]float64{}, false
	}
	lo, ok := asFloat(items[0])
	if !ok {
		return [2]float64{}, false
	}
	hi, ok := asFloat(items[1])
	if !ok {
		return [2]float64{}, false
	}
	return [2]float64{lo, hi}, true
}

// specShape tags the layouts the "specs" field is published in.
type specShape int

const (
	specsAbsent specShape = iota
	specsList             // "specs": [{...}, ...]
	specsWrapped          // "specs": {"specs": [{...}, ...]}
	specsTable            // "specs": {"Impedance": "8 ohm", ...}
)

// sniffSpecs resolves the shape of a raw specs value. It is the only place
// that looks at the raw layout.
func sniffSpecs(v any) (specShape, any) {
	if list := asSlice(v); list != nil {
		return specsList, list
	}
	m := asMap(v)
	if m == nil {
		return specsAbsent, nil
	}
	if inner, ok := m["specs"]; ok {
		if list := asSlice(inner); list != nil {
			return specsWrapped, list
		}
		return specsAbsent, nil
	}
	return specsTable, m
}

func adaptSpecs(v any) []Spec {
	shape, payload := sniffSpecs(v)
	switch shape {
	case specsList, specsWrapped:
		return specsFromList(payload.([]any))
	case specsTable:
		return specsFromTable(payload.(map[string]any))
	default:
		return nil
	}
}

func specsFromList(items []any) []Spec {
	out := make([]Spec, 0, len(items))
	for _, it := range items {
		m := asMap(it)
		label := firstString(m, "label", "key", "name")
		value := strings.TrimSpace(asText(m["value"]))
		if label == "" || value == "" {
			continue
		}
		out = append(out, Spec{Label: label, Value: value})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// specsFromTable sorts by label; JSON objects carry no order once decoded.
func specsFromTable(m map[string]any) []Spec {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	out := make([]Spec, 0, len(labels))
	for _, label := range labels {
		value := strings.TrimSpace(asText(m[label]))
		if strings.TrimSpace(label) == "" || value == "" {
			continue
		}
		out = append(out, Spec{Label: strings.TrimSpace(label), Value: value})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeSpecGroups(v any) []SpecGroup {
	items := asSlice(v)
	if len(items) == 0 {
		return nil
	}
	out := make([]SpecGroup, 0, len(items))
	for _, it := range items {
		m := asMap(it)
		specs := adaptSpecs(m["specs"])
		if len(specs) == 0 {
			continue
		}
		out = append(out, SpecGroup{Title: firstString(m, "title", "label"), Specs: specs})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeResources(v any) []Resource {
	items := asSlice(v)
	if len(items) == 0 {
		return nil
	}
	out := make([]Resource, 0, len(items))
	for _, it := range items {
		m := asMap(it)
		href := firstString(m, "href", "url")
		if href == "" {
			continue
		}
		label := firstString(m, "label", "name")
		if label == "" {
			label = href
		}
		out = append(out, Resource{Label: label, Href: href})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
