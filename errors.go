package spandex

import "github.com/cockroachdb/errors"

// Sentinel errors for the failure modes of the document model and the
// matching engines. Call sites wrap these with the offending index, hash
// or attribute so a failure can be diagnosed without re-running; match
// against them with errors.Is.
var (
	// ErrUnknownHash is returned when a hash is resolved against a
	// StringTable that never interned the corresponding string. This is
	// the cross-vocabulary failure mode: a hash produced by one table is
	// meaningless to another unless the same string was interned there.
	ErrUnknownHash = errors.New("unknown string hash")

	// ErrLengthMismatch is returned by NewDoc when the words and spaces
	// sequences differ in length.
	ErrLengthMismatch = errors.New("words and spaces length mismatch")

	// ErrOutOfRange is returned by Doc.Slice for an invalid token range.
	ErrOutOfRange = errors.New("span range out of bounds")

	// ErrIndexOutOfRange is returned by token-addressed operations when
	// the index is outside the document.
	ErrIndexOutOfRange = errors.New("token index out of range")

	// ErrOverlappingSpans is returned by Doc.SetEntities when two spans
	// in the proposed overlay share a token index. The document is left
	// unchanged; the caller decides whether to drop conflicts and retry.
	ErrOverlappingSpans = errors.New("overlapping entity spans")

	// ErrEmptyPattern is returned at compile time for a pattern
	// alternative or phrase with zero elements.
	ErrEmptyPattern = errors.New("empty pattern")

	// ErrInvalidPatternSpec is returned at compile time for an
	// unrecognized attribute name, operator, or value type in a token
	// spec. A malformed rule set never reaches matching.
	ErrInvalidPatternSpec = errors.New("invalid pattern spec")
)
