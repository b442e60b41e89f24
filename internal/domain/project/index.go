package project

import (
	"maps"
	"slices"

	"github.com/rpggio/statusboard/internal/slug"
)

// Index is the derived lookup structure over a record set. It is rebuilt
// in full and never patched.
type Index struct {
	byID    map[string]struct{}
	byTitle map[string]string
	aliases map[string]string
}

// BuildIndex indexes every record that has both an id and a title, then
// adds each common alias whose target id is indexed. Records are visited
// in id order so later duplicates of a title or alias win deterministically.
func BuildIndex(records map[string]*Record, commonAliases map[string]string) *Index {
	idx := &Index{
		byID:    make(map[string]struct{}, len(records)),
		byTitle: make(map[string]string, len(records)),
		aliases: make(map[string]string),
	}

	for _, key := range slices.Sorted(maps.Keys(records)) {
		rec := records[key]
		if rec == nil || rec.ID == "" || rec.Title == "" {
			continue
		}
		idx.byID[rec.ID] = struct{}{}
		idx.byTitle[rec.Title] = rec.ID
		for _, alias := range rec.Aliases {
			idx.aliases[alias] = rec.ID
		}
	}

	for alias, target := range commonAliases {
		if _, ok := idx.byID[target]; ok {
			idx.aliases[alias] = target
		}
	}

	return idx
}

// Resolve maps a query to a record id: exact id, exact alias, exact title,
// then the query's slug against ids and aliases.
func (idx *Index) Resolve(query string) (string, bool) {
	if idx == nil || query == "" {
		return "", false
	}
	if _, ok := idx.byID[query]; ok {
		return query, true
	}
	if id, ok := idx.aliases[query]; ok {
		return id, true
	}
	if id, ok := idx.byTitle[query]; ok {
		return id, true
	}

	s := slug.Make(query)
	if _, ok := idx.byID[s]; ok {
		return s, true
	}
	if id, ok := idx.aliases[s]; ok {
		return id, true
	}
	return "", false
}

// HasID reports an exact id match.
func (idx *Index) HasID(id string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.byID[id]
	return ok
}

// Alias looks up an exact alias.
func (idx *Index) Alias(alias string) (string, bool) {
	if idx == nil {
		return "", false
	}
	id, ok := idx.aliases[alias]
	return id, ok
}

// Title looks up an exact title.
func (idx *Index) Title(title string) (string, bool) {
	if idx == nil {
		return "", false
	}
	id, ok := idx.byTitle[title]
	return id, ok
}

// IDs returns the indexed ids in sorted order.
func (idx *Index) IDs() []string {
	if idx == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(idx.byID))
}

// Sizes returns the number of indexed ids, titles and aliases.
func (idx *Index) Sizes() (ids, titles, aliases int) {
	if idx == nil {
		return 0, 0, 0
	}
	return len(idx.byID), len(idx.byTitle), len(idx.aliases)
}
