package rules

import "strings"

// RemarksBuilder aggregates content that maps to no defined field. Fragments
// are kept verbatim, in encounter order, never summarized and never dropped.
type RemarksBuilder struct {
	fragments []string
	seen      map[string]bool
}

// NewRemarksBuilder starts a builder, optionally seeded with the remarks
// already extracted for the record.
func NewRemarksBuilder(existing string) *RemarksBuilder {
	b := &RemarksBuilder{seen: make(map[string]bool)}
	if trimmed := strings.TrimSpace(existing); trimmed != "" && trimmed != "NA" {
		b.Append(trimmed)
	}
	return b
}

// Append adds one fragment. Exact duplicates are collapsed; everything else
// is preserved as given.
func (b *RemarksBuilder) Append(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || b.seen[fragment] {
		return
	}
	b.seen[fragment] = true
	b.fragments = append(b.fragments, fragment)
}

// String joins the fragments in encounter order.
func (b *RemarksBuilder) String() string {
	return strings.Join(b.fragments, "; ")
}

// Empty reports whether nothing was aggregated.
func (b *RemarksBuilder) Empty() bool {
	return len(b.fragments) == 0
}
