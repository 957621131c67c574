package property

import (
	"errors"
	"fmt"
)

// Category sentinels for errors.Is matching. The typed errors below
// wrap these, so callers can branch on category without unpacking.
var (
	// ErrUnknownType indicates an unrecognized wire type tag.
	ErrUnknownType = errors.New("unknown property type")

	// ErrSizeMismatch indicates a property whose payload does not match
	// its declared size. This signals corruption and is never repaired
	// silently.
	ErrSizeMismatch = errors.New("declared size mismatch")

	// ErrTruncated indicates the buffer ended before the terminating
	// sentinel was reached. Fatal for the whole decode.
	ErrTruncated = errors.New("truncated property stream")

	// ErrTypeMismatch indicates a node whose runtime value shape does
	// not match its declared type. Fatal for that encode call.
	ErrTypeMismatch = errors.New("value shape does not match property type")

	// ErrEncodeOverflow indicates a payload too large for the int32
	// size field the format reserves.
	ErrEncodeOverflow = errors.New("payload exceeds size field width")
)

// UnknownTypeError reports an unrecognized wire type tag. It is
// recoverable: the decoder skips the property using its declared size
// and preserves the raw bytes.
type UnknownTypeError struct {
	// Tag is the raw wire tag string as encountered.
	Tag string
	// Name is the property carrying the tag.
	Name string
	// Offset is the byte offset where the tag was read.
	Offset int
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown property type %q for %q at offset %d", e.Tag, e.Name, e.Offset)
}

// Unwrap returns the category sentinel.
func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }

// SizeMismatchError reports a property whose consumed payload length
// differs from its declared size, or a declared size that overruns the
// buffer.
type SizeMismatchError struct {
	// Name is the affected property.
	Name string
	// Offset is the byte offset of the property payload.
	Offset int
	// Declared is the size recorded in the stream.
	Declared int32
	// Actual is the number of bytes actually consumed or available.
	Actual int32
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("property %q at offset %d: declared size %d, actual %d",
		e.Name, e.Offset, e.Declared, e.Actual)
}

// Unwrap returns the category sentinel.
func (e *SizeMismatchError) Unwrap() error { return ErrSizeMismatch }

// TruncatedInputError reports a buffer that ended before the
// terminating sentinel.
type TruncatedInputError struct {
	// Offset is the byte offset where input ran out.
	Offset int
	// Context describes what was being read.
	Context string
}

func (e *TruncatedInputError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("truncated input at offset %d while reading %s", e.Offset, e.Context)
	}
	return fmt.Sprintf("truncated input at offset %d", e.Offset)
}

// Unwrap returns the category sentinel.
func (e *TruncatedInputError) Unwrap() error { return ErrTruncated }

// TypeMismatchError reports an encode-time contract violation: a node
// whose runtime value shape does not match its declared type. The
// encoder never coerces.
type TypeMismatchError struct {
	// Name is the offending node.
	Name string
	// Type is the node's declared type.
	Type Type
	// Expected describes the value shape the type requires.
	Expected string
	// Actual describes the shape found.
	Actual string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("property %q (%s): expected %s, got %s",
		e.Name, e.Type, e.Expected, e.Actual)
}

// Unwrap returns the category sentinel.
func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// EncodeOverflowError reports a re-encoded payload whose length cannot
// be represented in the int32 size field the format reserves.
type EncodeOverflowError struct {
	// Name is the offending node.
	Name string
	// Size is the computed payload length.
	Size int
}

func (e *EncodeOverflowError) Error() string {
	return fmt.Sprintf("property %q: payload of %d bytes exceeds the int32 size field", e.Name, e.Size)
}

// Unwrap returns the category sentinel.
func (e *EncodeOverflowError) Unwrap() error { return ErrEncodeOverflow }

// FindingKind classifies recoverable structural findings.
type FindingKind string

const (
	// FindingUnknownType marks a property with an unrecognized wire tag,
	// preserved opaquely.
	FindingUnknownType FindingKind = "UnknownType"

	// FindingSizeMismatch marks a declared/actual size disagreement
	// (reported by Verify; fatal during Decode).
	FindingSizeMismatch FindingKind = "SizeMismatch"

	// FindingTruncated marks input that ended before the sentinel
	// (reported by Verify; fatal during Decode).
	FindingTruncated FindingKind = "TruncatedInput"

	// FindingOpaquePayload marks a map or set payload kept as raw bytes
	// because its structured layout did not decode to the declared size.
	FindingOpaquePayload FindingKind = "OpaquePayload"
)

// Finding is one recoverable structural observation produced during a
// decode or verification pass.
type Finding struct {
	// Kind classifies the finding.
	Kind FindingKind
	// Name is the affected property, when known.
	Name string
	// Offset is the byte offset of the affected data.
	Offset int
	// Detail is a human-readable description.
	Detail string
}

func (f Finding) String() string {
	if f.Name != "" {
		return fmt.Sprintf("%s: %s at offset %d: %s", f.Kind, f.Name, f.Offset, f.Detail)
	}
	return fmt.Sprintf("%s at offset %d: %s", f.Kind, f.Offset, f.Detail)
}
