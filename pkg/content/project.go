package content

import (
	"sort"
	"strings"
)

// Project is one portfolio entry.
type Project struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Context    string   `json:"context,omitempty"`
	Location   string   `json:"location,omitempty"`
	Focus      []string `json:"focus,omitempty"`
	Completion string   `json:"completion,omitempty"`
	System     []Zone   `json:"system,omitempty"`
	Section    string   `json:"section,omitempty"`
	Vertical   string   `json:"vertical,omitempty"`
}

// Zone is a named area of an installation and the equipment in it.
type Zone struct {
	Name      string   `json:"name"`
	Equipment []string `json:"equipment"`
}

// NormalizeProjects converts decoded JSON into a flat project list. raw is
// either a list of sections ({"section": "Hospitality", "projects": [...]})
// or a bare list of projects. Projects without a title are dropped.
func NormalizeProjects(raw any) []Project {
	items := asSlice(raw)
	if items == nil {
		items = asSlice(asMap(raw)["sections"])
	}

	var out []Project
	for _, it := range items {
		m := asMap(it)
		if m == nil {
			continue
		}
		if nested, ok := m["projects"]; ok {
			vertical := firstString(m, "section", "vertical", "title", "label")
			for _, p := range asSlice(nested) {
				if proj, ok := normalizeProject(asMap(p), vertical); ok {
					out = append(out, proj)
				}
			}
			continue
		}
		if proj, ok := normalizeProject(m, firstString(m, "section", "vertical")); ok {
			out = append(out, proj)
		}
	}
	return out
}

func normalizeProject(m map[string]any, vertical string) (Project, bool) {
	if m == nil {
		return Project{}, false
	}
	title := firstString(m, "title")
	if title == "" {
		return Project{}, false
	}
	slug := Slugify(title)
	if slug == "" {
		return Project{}, false
	}
	return Project{
		Slug:       slug,
		Title:      title,
		Context:    firstString(m, "context"),
		Location:   firstString(m, "location"),
		Focus:      asStrings(m["focus"]),
		Completion: firstString(m, "completion"),
		System:     normalizeSystem(m["system"]),
		Section:    Slugify(vertical),
		Vertical:   vertical,
	}, true
}

// normalizeSystem accepts {"Bar": ["..."], ...} or [{"zone": "Bar", "equipment": [...]}].
// Object zones are sorted by name.
func normalizeSystem(v any) []Zone {
	if list := asSlice(v); list != nil {
		out := make([]Zone, 0, len(list))
		for _, it := range list {
			m := asMap(it)
			name := firstString(m, "zone", "name")
			if name == "" {
				continue
			}
			out = append(out, Zone{Name: name, Equipment: asStrings(m["equipment"])})
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}

	m := asMap(v)
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]Zone, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, Zone{Name: strings.TrimSpace(name), Equipment: asStrings(m[name])})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
