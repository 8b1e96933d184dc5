package content

import "strings"

// Slugify lowercases and trims s, replaces every run of characters outside
// [a-z0-9] with a single hyphen, and strips leading and trailing hyphens.
//
//	"Amina Edge 5"    -> "amina-edge-5"
//	"  Radio.Cubo!! " -> "radio-cubo"
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteByte(c)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// DuplicateSlugs returns every slug that occurs more than once, in order of
// its second occurrence.
func DuplicateSlugs(slugs []string) []string {
	seen := make(map[string]int, len(slugs))
	var dups []string
	for _, s := range slugs {
		seen[s]++
		if seen[s] == 2 {
			dups = append(dups, s)
		}
	}
	return dups
}
