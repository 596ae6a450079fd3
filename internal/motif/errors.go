package motif

import (
	"errors"
	"fmt"
	"strings"
)

// Validation failures reported by BuildQuery. All are recoverable user-input
// problems: callers surface them as warnings and leave state unchanged, they
// are never fatal.

// MultiModelError reports picks spanning more than one structure.
type MultiModelError struct {
	Models []string
}

func (e *MultiModelError) Error() string {
	return fmt.Sprintf("picks span %d structures (%s), motif queries allow exactly 1",
		len(e.Models), strings.Join(e.Models, ", "))
}

// TooManyResiduesError reports a considered pick count above MaxMotifSize.
// BuildQuery caps the considered slice before validating, so the public path
// cannot produce this failure; the validator still guards the bound.
type TooManyResiduesError struct {
	Count int
	Max   int
}

func (e *TooManyResiduesError) Error() string {
	return fmt.Sprintf("motif has %d residues, at most %d allowed", e.Count, e.Max)
}

// NonPolymericSelectionError reports a pick that does not address a polymer
// residue (label_seq_id 0: ligands, waters, ions).
type NonPolymericSelectionError struct {
	Entry    EntryID
	Location Location
}

func (e *NonPolymericSelectionError) Error() string {
	return fmt.Sprintf("pick %s (chain %s op %s) is not a polymer residue",
		e.Entry, e.Location.ChainID, e.Location.OperatorID)
}

// IsValidationError reports whether err belongs to the query validation
// taxonomy above.
func IsValidationError(err error) bool {
	var mm *MultiModelError
	var tm *TooManyResiduesError
	var np *NonPolymericSelectionError
	return errors.As(err, &mm) || errors.As(err, &tm) || errors.As(err, &np)
}
