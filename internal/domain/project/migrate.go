package project

import (
	"maps"
	"slices"

	"github.com/rpggio/statusboard/internal/slug"
)

// Migrate upgrades a persisted record set to the current shape and re-keys
// it by id. A record without an id gets the slug of its title (or name),
// its title is backfilled and its old key becomes an alias. Records with
// neither id nor title stay under their key. The input is not modified.
//
// The second result reports whether anything changed; running Migrate on
// its own output reports false.
func Migrate(set map[string]*Record) (map[string]*Record, bool) {
	out := make(map[string]*Record, len(set))
	changed := false

	for _, key := range slices.Sorted(maps.Keys(set)) {
		src := set[key]
		if src == nil {
			changed = true
			continue
		}
		if src.Aliases == nil {
			changed = true
		}
		rec := src.Clone()

		if rec.ID == "" {
			title := rec.Title
			if title == "" {
				title = rec.Name
			}
			if title == "" {
				out[key] = &rec
				continue
			}
			rec.ID = slug.Make(title)
			if rec.ID == "" {
				rec.ID = slug.Make(key)
			}
			if rec.ID == "" {
				rec.ID = key
			}
			rec.Title = title
			changed = true
		}

		if key != rec.ID {
			rec.Aliases = addAlias(rec.Aliases, key)
			changed = true
		}

		if existing, ok := out[rec.ID]; ok {
			for _, alias := range rec.Aliases {
				existing.Aliases = addAlias(existing.Aliases, alias)
			}
			changed = true
			continue
		}
		out[rec.ID] = &rec
	}

	return out, changed
}
