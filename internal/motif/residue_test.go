package motif

import "testing"

func TestKnownResidueType(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ALA", true},
		{"ala", true},
		{" his ", true},
		{"DA", true},
		{"U", true},
		{"UNK", true},
		{"HEM", false},
		{"XYZ", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := KnownResidueType(tt.code); got != tt.want {
			t.Errorf("KnownResidueType(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestCanonicalResidueType(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"ala", "ALA", true},
		{" da ", "DA", true},
		{"UNK", "UNK", true},
		{"HEM", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalResidueType(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CanonicalResidueType(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResidueNames(t *testing.T) {
	name, code3, code1 := ResidueNames("HIS")
	if name != "Histidine" || code3 != "HIS" || code1 != "H" {
		t.Errorf("unexpected names for HIS: %s/%s/%s", name, code3, code1)
	}

	name, code3, code1 = ResidueNames("FOO")
	if name != "FOO" || code3 != "UNK" || code1 != "X" {
		t.Errorf("unknown input should fall back, got %s/%s/%s", name, code3, code1)
	}
}

func TestExchangeVocabulary(t *testing.T) {
	vocab := ExchangeVocabulary()
	if len(vocab) != 29 {
		t.Fatalf("expected 29 codes (20 amino acids, 8 nucleotides, UNK), got %d", len(vocab))
	}
	for _, code := range vocab {
		if !KnownResidueType(code) {
			t.Errorf("vocabulary entry %q not recognized by KnownResidueType", code)
		}
	}
}
