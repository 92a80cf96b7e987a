package repository

import (
	"sort"
	"strings"
)

// NormalizeLabels trims labels and drops blanks, duplicates and labels containing a
// comma. Tags are read back from Postgres as a comma-joined aggregate, so a comma
// cannot round-trip. The result is sorted.
func NormalizeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || strings.Contains(l, ",") {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
