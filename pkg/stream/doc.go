// Package stream implements the low-level binary cursor used by the
// arkprofile property codec.
//
// ASA save containers are little-endian throughout. Strings use the UE
// length-prefixed, null-terminated layout: a uint32 byte length that
// includes the terminating NUL, followed by the ASCII bytes and the NUL.
// A zero length encodes the empty string with no further bytes.
//
// Reader tracks its byte offset so every decode error can report the
// exact position of the damage. Writer is an append-only buffer with the
// mirror-image write methods; it never fails short of memory exhaustion.
package stream
