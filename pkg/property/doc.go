// Package property implements the binary property codec for ASA
// (ARK: Survival Ascended) save containers.
//
// The container stores an ordered, self-describing sequence of tagged
// properties: each entry is a name string, a wire type tag, header
// metadata (index, declared payload size, a tag byte with optional
// trailing extra field), and a type-specific payload. A reserved "None"
// name terminates the sequence; structs nest a sequence of their own.
//
// # Property Tree
//
// Decode produces a List of Nodes. A Node carries both the decoded
// value and every piece of side-channel metadata the format needs for
// byte-exact re-encoding: header flags, struct/package type names,
// array child types, separator presence, and any slack bytes between a
// payload's logical end and its declared end. Metadata must survive
// from decode to encode unmodified unless the caller deliberately
// replaces it together with a new value.
//
// # Round-Trip Identity
//
// The core contract: for any container buffer that decodes cleanly,
// re-encoding the unmodified tree reproduces the input bit for bit.
// Editing a node (for example clearing a corrupted array with
// Node.ClearItems) re-derives counts and declared sizes from the new
// value, yielding a structurally valid container.
//
// # Error Taxonomy
//
// Unknown property types are recoverable: the decoder skips them using
// the declared size, preserves the raw bytes, and records a Finding.
// Size mismatches, truncated input, encode-time shape violations, and
// size-field overflow are fatal and reported with exact offsets via
// SizeMismatchError, TruncatedInputError, TypeMismatchError, and
// EncodeOverflowError. Nothing is silently repaired.
package property
