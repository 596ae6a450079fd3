package motif

import "strings"

var aminoAcids = [...][3]string{
	{"Alanine", "ALA", "A"},
	{"Arginine", "ARG", "R"},
	{"Asparagine", "ASN", "N"},
	{"Aspartic acid", "ASP", "D"},
	{"Cysteine", "CYS", "C"},
	{"Glutamic acid", "GLU", "E"},
	{"Glutamine", "GLN", "Q"},
	{"Glycine", "GLY", "G"},
	{"Histidine", "HIS", "H"},
	{"Isoleucine", "ILE", "I"},
	{"Leucine", "LEU", "L"},
	{"Lysine", "LYS", "K"},
	{"Methionine", "MET", "M"},
	{"Phenylalanine", "PHE", "F"},
	{"Proline", "PRO", "P"},
	{"Serine", "SER", "S"},
	{"Threonine", "THR", "T"},
	{"Tryptophan", "TRP", "W"},
	{"Tyrosine", "TYR", "Y"},
	{"Valine", "VAL", "V"},
}

// nucleotides are the chemical component ids of RNA and DNA residues.
var nucleotides = [...]string{"A", "C", "G", "U", "DA", "DC", "DG", "DT"}

// KnownResidueType reports whether code is a component id usable as an
// exchange: a standard amino acid, a nucleotide, or UNK. Matching is
// case-insensitive against the component id only, not names or one-letter
// abbreviations, since "A" means adenosine rather than alanine.
func KnownResidueType(code string) bool {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "UNK" {
		return true
	}
	for _, aa := range aminoAcids {
		if aa[1] == c {
			return true
		}
	}
	for _, n := range nucleotides {
		if n == c {
			return true
		}
	}
	return false
}

// CanonicalResidueType normalizes code to its component id form, reporting
// whether it is accepted by the exchange toggle.
func CanonicalResidueType(code string) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !KnownResidueType(c) {
		return "", false
	}
	return c, true
}

// ResidueNames returns the full name, component id, and one-letter code for
// an amino-acid component id. Unrecognized input comes back as
// (input, "UNK", "X").
func ResidueNames(input string) (string, string, string) {
	c := strings.ToUpper(strings.TrimSpace(input))
	for _, aa := range aminoAcids {
		if aa[1] == c {
			return aa[0], aa[1], aa[2]
		}
	}
	return input, "UNK", "X"
}

// ExchangeVocabulary lists every component id accepted by the exchange
// toggle, amino acids first.
func ExchangeVocabulary() []string {
	out := make([]string, 0, len(aminoAcids)+len(nucleotides)+1)
	for _, aa := range aminoAcids {
		out = append(out, aa[1])
	}
	out = append(out, nucleotides[:]...)
	out = append(out, "UNK")
	return out
}
