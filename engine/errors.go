package engine

import "errors"

var (
	// ErrOverlappingGroups indicates a code was placed in more than one group.
	ErrOverlappingGroups = errors.New("engine: code appears in more than one group")
	// ErrDuplicateCode indicates a code repeats inside a single group.
	ErrDuplicateCode = errors.New("engine: code repeated within a group")
	// ErrUnknownCode indicates a group member outside the full code set.
	ErrUnknownCode = errors.New("engine: code not in the code set")
	// ErrEmptyGroup indicates a group with no members.
	ErrEmptyGroup = errors.New("engine: group must have at least one code")
	// ErrMalformedToken indicates a token string that cannot be parsed.
	ErrMalformedToken = errors.New("engine: malformed partition token")
)
