// Package presets maps known document types to their ordered content-field
// lists. Purely static lookup data; the CLI accepts a preset name in place of
// an explicit field list.
package presets

import "sort"

var presets = map[string][]string{
	// Gnip tweet exports carry the tweet text in a single field.
	"gnip": {"body"},
	// Patents and publications share a title + abstract layout.
	"patent":      {"title", "abstract"},
	"publication": {"title", "abstract"},
}

// ContentFields returns the ordered content-field list for a preset name.
func ContentFields(name string) ([]string, bool) {
	fields, ok := presets[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), fields...), true
}

// Names returns all preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
