package search

import "strings"

// Searchable is an item whose text can be searched.
type Searchable interface {
	SearchID() string
	SearchText() string
}

// Location is where a single match sits.
type Location struct {
	ItemID string `json:"item_id"`
	Offset int    `json:"offset"`
}

// Index holds every match of one query over one item collection.
//
// Matches maps item id -> ordinal -> rune offset within the item's text.
// Ordinals are 1-based and increase in item order, then left to right.
type Index struct {
	Query       string                 `json:"query"`
	Matches     map[string]map[int]int `json:"matches"`
	Total       int                    `json:"total"`
	Active      int                    `json:"active"`
	MatchLength int                    `json:"match_length"`

	locations []Location
}

// Build scans items for case-insensitive occurrences of query. The query is
// matched literally. An empty query yields an index with no search active.
func Build[T Searchable](items []T, query string) Index {
	idx := Index{
		Query:   query,
		Matches: make(map[string]map[int]int),
	}
	if query == "" {
		return idx
	}

	needle := []rune(strings.ToLower(query))
	ordinal := 0
	for _, item := range items {
		offsets := findAll([]rune(strings.ToLower(item.SearchText())), needle)
		if len(offsets) == 0 {
			continue
		}
		id := item.SearchID()
		byOrdinal, ok := idx.Matches[id]
		if !ok {
			byOrdinal = make(map[int]int, len(offsets))
			idx.Matches[id] = byOrdinal
		}
		for _, offset := range offsets {
			ordinal++
			byOrdinal[ordinal] = offset
			idx.locations = append(idx.locations, Location{ItemID: id, Offset: offset})
		}
	}

	idx.Total = ordinal
	// Active stays 0 without matches rather than pointing at ordinal 1,
	// which would name a match that does not exist.
	if idx.Total > 0 {
		idx.Active = 1
	}
	idx.MatchLength = len(needle)
	return idx
}

// findAll returns the rune offsets of the non-overlapping occurrences of
// needle in haystack, scanning left to right.
func findAll(haystack, needle []rune) []int {
	var offsets []int
	n := len(needle)
	for i := 0; i+n <= len(haystack); {
		if runesEqual(haystack[i:i+n], needle) {
			offsets = append(offsets, i)
			i += n
			continue
		}
		i++
	}
	return offsets
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Locate returns the item and offset of a 1-based ordinal.
func (idx Index) Locate(ordinal int) (Location, bool) {
	if ordinal < 1 || ordinal > len(idx.locations) {
		return Location{}, false
	}
	return idx.locations[ordinal-1], true
}

// IsActive reports whether a query is set.
func (idx Index) IsActive() bool {
	return idx.Query != ""
}

// ItemMatches returns the offsets of the matches inside one item, keyed by
// ordinal.
func (idx Index) ItemMatches(id string) map[int]int {
	return idx.Matches[id]
}
