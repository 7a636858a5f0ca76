package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ============================================================================
// PARTITION CANONICALIZER
// ============================================================================
// A partition assigns every code to exactly one group. Codes the caller did
// not group become singletons. The canonical token orders codes within a
// group lexicographically, then orders groups by size, then by first code.
// Stored fixture tags go through the same ordering (Normalize) so equivalent
// partitions always compare equal structurally.
// ============================================================================

// Canonicalize turns explicit groups into the canonical token over codes.
// Codes not mentioned in any group become their own singleton group.
// Overlapping, duplicated, unknown and empty groups are invariant violations.
func Canonicalize(groups []Group, codes []Code) (Token, error) {
	known := make(map[Code]bool, len(codes))
	for _, c := range codes {
		known[c] = true
	}

	owner := make(map[Code]int, len(codes))
	token := make(Token, 0, len(codes))
	for gi, g := range groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("group %d: %w", gi, ErrEmptyGroup)
		}
		for _, c := range g {
			if !known[c] {
				return nil, fmt.Errorf("group %d, code %q: %w", gi, c, ErrUnknownCode)
			}
			prev, seen := owner[c]
			switch {
			case seen && prev == gi:
				return nil, fmt.Errorf("group %d, code %q: %w", gi, c, ErrDuplicateCode)
			case seen:
				return nil, fmt.Errorf("code %q in groups %d and %d: %w", c, prev, gi, ErrOverlappingGroups)
			}
			owner[c] = gi
		}
		token = append(token, sortedGroup(g))
	}

	for _, c := range codes {
		if _, grouped := owner[c]; !grouped {
			token = append(token, Group{c})
		}
	}

	sortGroups(token)
	return token, nil
}

// Normalize applies the canonical ordering to a stored tag without any
// validation or singleton filling.
func Normalize(raw [][]Code) Token {
	token := make(Token, 0, len(raw))
	for _, g := range raw {
		token = append(token, sortedGroup(g))
	}
	sortGroups(token)
	return token
}

// Singletons returns the all-singletons token for codes.
func Singletons(codes []Code) Token {
	token, _ := Canonicalize(nil, dedupe(codes))
	return token
}

func sortedGroup(g []Code) Group {
	out := make(Group, len(g))
	copy(out, g)
	slices.Sort(out)
	return out
}

func sortGroups(token Token) {
	sort.SliceStable(token, func(i, j int) bool {
		return lessGroup(token[i], token[j])
	})
}

// lessGroup orders by size, then member-wise. For a valid partition the first
// member decides; later members only matter for malformed stored tags.
func lessGroup(a, b Group) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return slices.Compare(a, b) < 0
}

func dedupe(codes []Code) []Code {
	seen := make(map[Code]bool, len(codes))
	out := make([]Code, 0, len(codes))
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// ============================================================================
// TOKEN VALUE SEMANTICS
// ============================================================================

// Equal reports structural equality: same groups, same members, same order.
func (t Token) Equal(other Token) bool {
	return slices.EqualFunc(t, other, func(a, b Group) bool {
		return slices.Equal(a, b)
	})
}

// Clone returns a deep copy.
func (t Token) Clone() Token {
	out := make(Token, len(t))
	for i, g := range t {
		out[i] = slices.Clone(g)
	}
	return out
}

// Codes returns every code in the token, in token order.
func (t Token) Codes() []Code {
	var out []Code
	for _, g := range t {
		out = append(out, g...)
	}
	return out
}

// Fused returns only the groups with more than one member.
func (t Token) Fused() []Group {
	var out []Group
	for _, g := range t {
		if len(g) > 1 {
			out = append(out, g)
		}
	}
	return out
}

// String renders the token as "SA1+SA2|SA3". ParseToken reads it back.
func (t Token) String() string {
	parts := make([]string, len(t))
	for i, g := range t {
		parts[i] = g.String()
	}
	return strings.Join(parts, "|")
}

// String renders a group as "SA1+SA2".
func (g Group) String() string {
	parts := make([]string, len(g))
	for i, c := range g {
		parts[i] = string(c)
	}
	return strings.Join(parts, "+")
}

// ParseToken reads the "SA1+SA2|SA3" form and normalizes it.
// Whitespace around codes is ignored.
func ParseToken(s string) (Token, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Token{}, nil
	}
	var raw [][]Code
	for _, part := range strings.Split(s, "|") {
		g, err := ParseGroup(part)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		raw = append(raw, g)
	}
	return Normalize(raw), nil
}

// ParseGroup reads "SA1+SA2" (or "SA1,SA2") into a group.
func ParseGroup(s string) (Group, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == ',' })
	g := make(Group, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		g = append(g, Code(f))
	}
	if len(g) == 0 {
		return nil, ErrMalformedToken
	}
	return g, nil
}

// ============================================================================
// TAG — stored partition as found in fixtures
// ============================================================================

// Tag is a stored partition. A scalar entry in place of a group is read as a
// singleton group so slightly malformed fixtures still load.
type Tag [][]Code

// UnmarshalJSON decodes an array whose entries are arrays or scalars.
func (t *Tag) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("partition tag: %w", err)
	}
	out := make(Tag, 0, len(entries))
	for _, e := range entries {
		var group []Code
		if err := json.Unmarshal(e, &group); err == nil {
			out = append(out, group)
			continue
		}
		var scalar Field
		if err := json.Unmarshal(e, &scalar); err != nil {
			return fmt.Errorf("partition tag entry %s: %w", e, err)
		}
		out = append(out, []Code{Code(scalar)})
	}
	*t = out
	return nil
}
