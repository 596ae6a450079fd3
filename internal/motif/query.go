package motif

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
)

// Defaults for the outbound search URL. The final location is
// base + urlencode(json(query)) + "&return_type=" + returnType.
const (
	DefaultSearchURL  = "https://www.rcsb.org/search?query="
	DefaultReturnType = "assembly"
)

// ResidueSelector addresses one residue of the query structure on the wire,
// using mmCIF vocabulary.
type ResidueSelector struct {
	ChainID    string `json:"label_asym_id"`
	OperatorID string `json:"struct_oper_id"`
	SeqID      int    `json:"label_seq_id"`
}

// Selector derives the wire selector for a resolved location.
func (l Location) Selector() ResidueSelector {
	return ResidueSelector{
		ChainID:    l.ChainID,
		OperatorID: l.OperatorID,
		SeqID:      l.SeqID,
	}
}

// Exchange constrains one motif position to a list of allowed residue types.
// The allowed list keeps the exchange set's insertion order; it is not
// sorted.
type Exchange struct {
	ResidueID ResidueSelector `json:"residue_id"`
	Allowed   []string        `json:"allowed"`
}

// Query is the outbound structural-motif search query.
type Query struct {
	Data        string            `json:"data"`
	ResidueIDs  []ResidueSelector `json:"residue_ids"`
	ScoreCutoff int               `json:"score_cutoff"`
	Exchanges   []Exchange        `json:"exchanges"`
}

// Encode returns the canonical JSON encoding of the query.
func (q *Query) Encode() ([]byte, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return b, nil
}

// BuildURL assembles the search location for a query. Empty base and
// returnType fall back to the defaults.
func BuildURL(base string, q *Query, returnType string) (string, error) {
	if base == "" {
		base = DefaultSearchURL
	}
	if returnType == "" {
		returnType = DefaultReturnType
	}
	b, err := q.Encode()
	if err != nil {
		return "", err
	}
	return base + url.QueryEscape(string(b)) + "&return_type=" + url.QueryEscape(returnType), nil
}

// sortSelectors canonicalizes selector order by chain id, then operator id,
// then sequence number, so equivalent motifs picked in different orders
// produce identical queries.
func sortSelectors(s []ResidueSelector) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i], s[j]
		if a.ChainID != b.ChainID {
			return a.ChainID < b.ChainID
		}
		if a.OperatorID != b.OperatorID {
			return a.OperatorID < b.OperatorID
		}
		return a.SeqID < b.SeqID
	})
}
