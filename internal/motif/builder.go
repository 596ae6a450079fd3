package motif

import (
	"fmt"
	"sort"
)

// ExchangeLookup returns the allowed residue types for an entry at
// query-build time. A nil lookup means no pick carries exchanges.
type ExchangeLookup func(EntryID) []string

// resolvedPick pairs a considered entry with its resolved location for the
// duration of one build.
type resolvedPick struct {
	entry    Entry
	location Location
}

// BuildQuery compiles a selection-history snapshot into a motif search query:
//
//  1. consider at most MaxMotifSize entries, in history order;
//  2. resolve each considered entry to its structural location;
//  3. validate: exactly one source structure, count within bounds, every
//     location a polymer residue. Failures short-circuit in that order and
//     leave no partial state behind;
//  4. canonicalize residue order (chain, operator, sequence number);
//  5. attach an Exchange for every considered pick with a non-empty exchange
//     set, keyed by the unsorted pick-derived selector. An empty set means
//     "no exchange filter" and is omitted.
//
// BuildQuery is a pure function of its arguments: it reads no ambient state
// and returns a fresh query on every call.
func BuildQuery(entries []Entry, r Resolver, exchanges ExchangeLookup) (*Query, error) {
	if r == nil {
		r = FirstElementResolver{}
	}

	considered := entries
	if len(considered) > MaxMotifSize {
		considered = considered[:MaxMotifSize]
	}

	picks := make([]resolvedPick, 0, len(considered))
	models := make(map[string]struct{}, 1)
	for _, e := range considered {
		loc, err := r.Resolve(e)
		if err != nil {
			return nil, fmt.Errorf("resolve entry %s: %w", e.ID, err)
		}
		picks = append(picks, resolvedPick{entry: e, location: loc})
		models[loc.ModelID] = struct{}{}
	}

	if err := validatePicks(picks, models); err != nil {
		return nil, err
	}

	selectors := make([]ResidueSelector, len(picks))
	for i, p := range picks {
		selectors[i] = p.location.Selector()
	}
	sortSelectors(selectors)

	exs := make([]Exchange, 0, len(picks))
	if exchanges != nil {
		for _, p := range picks {
			allowed := exchanges(p.entry.ID)
			if len(allowed) == 0 {
				continue
			}
			exs = append(exs, Exchange{
				ResidueID: p.location.Selector(),
				Allowed:   allowed,
			})
		}
	}

	return &Query{
		Data:        picks[0].location.ModelID,
		ResidueIDs:  selectors,
		ScoreCutoff: 0,
		Exchanges:   exs,
	}, nil
}

// validatePicks applies the query validation rules in order, short-circuiting
// on the first failure.
func validatePicks(picks []resolvedPick, models map[string]struct{}) error {
	if len(models) != 1 {
		ids := make([]string, 0, len(models))
		for m := range models {
			ids = append(ids, m)
		}
		sort.Strings(ids)
		return &MultiModelError{Models: ids}
	}
	if len(picks) > MaxMotifSize {
		return &TooManyResiduesError{Count: len(picks), Max: MaxMotifSize}
	}
	for _, p := range picks {
		if p.location.SeqID == 0 {
			return &NonPolymericSelectionError{Entry: p.entry.ID, Location: p.location}
		}
	}
	return nil
}
