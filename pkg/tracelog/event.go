package tracelog

import (
	"time"
)

// Event represents one codec trace event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID correlates all events of one decode/encode pass (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Path is the container file being processed, when known.
	Path string `cbor:"3,keyasint,omitempty"`

	// Direction distinguishes decode from encode passes.
	Direction Direction `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Type-specific payload (one of these will be set).
	Property *PropertyEvent `cbor:"6,keyasint,omitempty"`
	Header   *HeaderEvent   `cbor:"7,keyasint,omitempty"`
	Finding  *FindingEvent  `cbor:"8,keyasint,omitempty"`
	Error    *ErrorEvent    `cbor:"9,keyasint,omitempty"`
}

// Direction indicates which codec pass produced the event.
type Direction uint8

const (
	// DirectionDecode indicates a bytes-to-tree pass.
	DirectionDecode Direction = 0
	// DirectionEncode indicates a tree-to-bytes pass.
	DirectionEncode Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionDecode:
		return "DECODE"
	case DirectionEncode:
		return "ENCODE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryHeader indicates a container envelope event.
	CategoryHeader Category = 0
	// CategoryProperty indicates a property walked by the codec.
	CategoryProperty Category = 1
	// CategoryFinding indicates a recoverable structural finding.
	CategoryFinding Category = 2
	// CategoryError indicates a fatal codec error.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryHeader:
		return "HEADER"
	case CategoryProperty:
		return "PROPERTY"
	case CategoryFinding:
		return "FINDING"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PropertyEvent captures one property as the codec walks it.
type PropertyEvent struct {
	// Name is the property name as stored in the stream.
	Name string `cbor:"1,keyasint"`

	// Type is the wire type tag (e.g. "IntProperty").
	Type string `cbor:"2,keyasint"`

	// Offset is the byte offset of the property header.
	Offset int `cbor:"3,keyasint"`

	// Size is the declared payload size.
	Size int32 `cbor:"4,keyasint"`

	// Depth is the struct nesting depth (0 for top-level).
	Depth int `cbor:"5,keyasint,omitempty"`

	// Count is the element count for arrays, maps, and sets.
	Count *int32 `cbor:"6,keyasint,omitempty"`
}

// HeaderEvent captures the container envelope.
type HeaderEvent struct {
	// Version is the container version field.
	Version int32 `cbor:"1,keyasint"`

	// Name is the profile name from the envelope.
	Name string `cbor:"2,keyasint,omitempty"`

	// MapName is the map name from the envelope.
	MapName string `cbor:"3,keyasint,omitempty"`

	// PropertyStart is the byte offset where the property section begins.
	PropertyStart int `cbor:"4,keyasint"`
}

// FindingEvent captures a recoverable structural finding.
type FindingEvent struct {
	// Kind is the finding kind (e.g. "UnknownType").
	Kind string `cbor:"1,keyasint"`

	// Name is the affected property name.
	Name string `cbor:"2,keyasint,omitempty"`

	// Offset is the byte offset of the affected data.
	Offset int `cbor:"3,keyasint"`

	// Detail is a human-readable description.
	Detail string `cbor:"4,keyasint,omitempty"`
}

// ErrorEvent captures a fatal codec error.
type ErrorEvent struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Offset is the byte offset where the error occurred, if known.
	Offset int `cbor:"2,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
