// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import "strings"

// QueryKind classifies raw user input.
type QueryKind int

const (
	KindSearch QueryKind = iota
	KindIdentifier
)

func (k QueryKind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	default:
		return "search"
	}
}

// Query is the classified form of the user's input.
type Query struct {
	Kind QueryKind

	// Key is the lookup key: the trailing identifier segment for
	// identifiers, the trimmed free text for searches.
	Key string

	// Category is the archive prefix of a legacy "category/number"
	// identifier (e.g. "hep-th"). Empty otherwise.
	Category string

	// Raw is the input as given.
	Raw string
}

// IsIdentifier reports whether the query names a paper directly.
func (q Query) IsIdentifier() bool { return q.Kind == KindIdentifier }

// LookupID returns the identifier as the metadata service expects it.
// Legacy identifiers are only resolvable with their archive prefix.
func (q Query) LookupID() string {
	if q.Category != "" {
		return q.Category + "/" + q.Key
	}
	return q.Key
}

// Classify decides whether raw is a direct arXiv identifier or free text.
//
// Input is an identifier when it is entirely numeric once dots are removed
// ("2308.06721"), or when it splits on a single slash into two parts whose
// second part is numeric once dots are removed ("hep-th/9901001"). Anything
// else, including empty input, is a search term.
func Classify(raw string) Query {
	s := strings.TrimSpace(raw)

	if isNumeric(strings.ReplaceAll(s, ".", "")) {
		return Query{Kind: KindIdentifier, Key: s, Raw: raw}
	}

	parts := strings.Split(s, "/")
	if len(parts) == 2 && isNumeric(strings.ReplaceAll(parts[1], ".", "")) {
		return Query{Kind: KindIdentifier, Key: parts[1], Category: parts[0], Raw: raw}
	}

	return Query{Kind: KindSearch, Key: s, Raw: raw}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
