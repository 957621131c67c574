package property

// Type is the closed enumeration of property wire types.
type Type uint8

const (
	// TypeNone is the sentinel terminating a property sequence.
	TypeNone Type = iota
	// TypeBool is BoolProperty (value stored in the header byte, size 0).
	TypeBool
	// TypeByte is ByteProperty (one byte, or an opaque blob).
	TypeByte
	// TypeInt is IntProperty (int32).
	TypeInt
	// TypeInt16 is Int16Property.
	TypeInt16
	// TypeInt64 is Int64Property.
	TypeInt64
	// TypeUInt16 is UInt16Property.
	TypeUInt16
	// TypeUInt32 is UInt32Property.
	TypeUInt32
	// TypeUInt64 is UInt64Property.
	TypeUInt64
	// TypeFloat is FloatProperty (float32).
	TypeFloat
	// TypeDouble is DoubleProperty (float64).
	TypeDouble
	// TypeStr is StrProperty (length-prefixed null-terminated string).
	TypeStr
	// TypeName is NameProperty (same wire shape as StrProperty).
	TypeName
	// TypeObject is ObjectProperty (object reference).
	TypeObject
	// TypeSoftObject is SoftObjectProperty (UE5 FSoftObjectPath).
	TypeSoftObject
	// TypeText is TextProperty, kept as an opaque leaf of declared size.
	TypeText
	// TypeStruct is StructProperty (nested property sequence or raw leaf).
	TypeStruct
	// TypeArray is ArrayProperty (positionally encoded elements).
	TypeArray
	// TypeMap is MapProperty.
	TypeMap
	// TypeSet is SetProperty.
	TypeSet
	// TypeUnknown is any unrecognized wire tag, skipped via declared size.
	TypeUnknown
)

// kind describes one entry of the type registry: the wire tag string,
// the fixed payload width (0 for variable-length types), and whether
// the type recurses into the tree model.
type kind struct {
	wireName  string
	fixedSize int32
	composite bool
}

// registry is the static table backing type lookups. It is read-only
// after package initialization, so concurrent decodes need no locking.
var registry = map[Type]kind{
	TypeBool:       {wireName: "BoolProperty"},
	TypeByte:       {wireName: "ByteProperty"},
	TypeInt:        {wireName: "IntProperty", fixedSize: 4},
	TypeInt16:      {wireName: "Int16Property", fixedSize: 2},
	TypeInt64:      {wireName: "Int64Property", fixedSize: 8},
	TypeUInt16:     {wireName: "UInt16Property", fixedSize: 2},
	TypeUInt32:     {wireName: "UInt32Property", fixedSize: 4},
	TypeUInt64:     {wireName: "UInt64Property", fixedSize: 8},
	TypeFloat:      {wireName: "FloatProperty", fixedSize: 4},
	TypeDouble:     {wireName: "DoubleProperty", fixedSize: 8},
	TypeStr:        {wireName: "StrProperty"},
	TypeName:       {wireName: "NameProperty"},
	TypeObject:     {wireName: "ObjectProperty"},
	TypeSoftObject: {wireName: "SoftObjectProperty"},
	TypeText:       {wireName: "TextProperty"},
	TypeStruct:     {wireName: "StructProperty", composite: true},
	TypeArray:      {wireName: "ArrayProperty", composite: true},
	TypeMap:        {wireName: "MapProperty", composite: true},
	TypeSet:        {wireName: "SetProperty", composite: true},
}

// typesByName maps wire tag strings back to types.
var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(registry))
	for t, k := range registry {
		m[k.wireName] = t
	}
	return m
}()

// NoneName is the reserved sentinel name terminating a property sequence.
const NoneName = "None"

// ParseType resolves a wire tag string. Unrecognized tags return
// (TypeUnknown, false); the decoder treats them as recoverable.
func ParseType(tag string) (Type, bool) {
	t, ok := typesByName[tag]
	if !ok {
		return TypeUnknown, false
	}
	return t, true
}

// String returns the wire tag for the type.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return NoneName
	case TypeUnknown:
		return "Unknown"
	}
	if k, ok := registry[t]; ok {
		return k.wireName
	}
	return "Invalid"
}

// FixedSize returns the fixed payload width in bytes, or 0 when the
// payload is variable-length. Fixed widths are cross-checked against
// the declared size during decode.
func (t Type) FixedSize() int32 {
	return registry[t].fixedSize
}

// Composite reports whether the type recurses into the tree model
// (structs, arrays, maps, sets) rather than decoding as a scalar leaf.
func (t Type) Composite() bool {
	return registry[t].composite
}

// elementFixedSizes maps array element types to their positional
// encoding width. Array elements of these types carry no per-item
// framing at all.
var elementFixedSizes = map[Type]int32{
	TypeInt:    4,
	TypeUInt32: 4,
	TypeFloat:  4,
	TypeDouble: 8,
	TypeInt64:  8,
	TypeUInt64: 8,
	TypeInt16:  2,
	TypeUInt16: 2,
	TypeByte:   1,
	TypeBool:   1,
}
