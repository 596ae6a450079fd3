package motif

import (
	"fmt"
	"strings"
)

// EntryID is the stable identity of a selection-history entry. It is assigned
// by the collaborator that owns the history (the viewer export uses UUIDs)
// and is the only thing picks are keyed by; entries are never compared by
// reference.
type EntryID string

// Entry is one pick in the externally-owned selection history. The entry is
// referenced here, never owned: the history collaborator decides when it
// appears, moves, or disappears.
type Entry struct {
	ID    EntryID `json:"id"`
	Label string  `json:"label,omitempty"`
	Locus Locus   `json:"locus"`
}

// NativeType returns the residue type of the entry's considered element, or
// "" when the locus is empty.
func (e Entry) NativeType() string {
	if len(e.Locus.Elements) == 0 {
		return ""
	}
	return e.Locus.Elements[0].CompID
}

// Locus is the structural location a pick references: the source structure's
// top-level entry identifier plus one or more addressed elements. Multi
// element loci are legal, but only the first element counts.
type Locus struct {
	ModelID  string    `json:"model_id"`
	Elements []Element `json:"elements"`
}

// Element addresses a single residue within a structure using mmCIF
// vocabulary. SeqID 0 is the sentinel for non-polymeric picks (ligands,
// waters, ions).
type Element struct {
	ChainID     string   `json:"label_asym_id"`
	SeqID       int      `json:"label_seq_id"`
	OperatorIDs []string `json:"struct_oper_ids,omitempty"`
	CompID      string   `json:"comp_id"`
}

// Location is the resolved position of a pick, computed at query-build time
// and never persisted.
type Location struct {
	ModelID     string
	ChainID     string
	OperatorID  string
	SeqID       int
	ResidueType string
}

// Resolver maps a selection entry to its structural location. The production
// implementation reads the locus the viewer exported; tests substitute fakes.
type Resolver interface {
	Resolve(Entry) (Location, error)
}

// FirstElementResolver resolves an entry to the first element of its locus.
// Extra elements are ignored deterministically.
type FirstElementResolver struct{}

// Resolve implements Resolver.
func (FirstElementResolver) Resolve(e Entry) (Location, error) {
	if len(e.Locus.Elements) == 0 {
		return Location{}, fmt.Errorf("entry %s: locus has no elements", e.ID)
	}
	el := e.Locus.Elements[0]
	return Location{
		ModelID:     e.Locus.ModelID,
		ChainID:     el.ChainID,
		OperatorID:  JoinOperators(el.OperatorIDs),
		SeqID:       el.SeqID,
		ResidueType: el.CompID,
	}, nil
}

// JoinOperators flattens a symmetry-operator list into its wire form: the
// ids joined with "x", or "1" when no operator applies.
func JoinOperators(ids []string) string {
	if len(ids) == 0 {
		return "1"
	}
	return strings.Join(ids, "x")
}
