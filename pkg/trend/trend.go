// Package trend counts canonical product names and ranks them.
package trend

import "sort"

// Entry is one ranked canonical name.
type Entry struct {
	Name  string
	Count int
}

// Rank counts names and returns them by count descending. Ties keep the
// order in which names were first seen. topN <= 0 keeps every name.
func Rank(names []string, topN int) []Entry {
	index := make(map[string]int)
	entries := []Entry{}
	for _, name := range names {
		if i, ok := index[name]; ok {
			entries[i].Count++
			continue
		}
		index[name] = len(entries)
		entries = append(entries, Entry{Name: name, Count: 1})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}
