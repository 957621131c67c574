package property

import (
	"math"
)

// List is an ordered property sequence. Order is load-bearing: the
// container format is positional, and re-encoding must never reorder.
// Duplicate names are legal (indexed properties) and stay positional.
type List []*Node

// Get returns the first property with the given name, or nil.
func (l List) Get(name string) *Node {
	for _, n := range l {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// GetAll returns every property with the given name, in stream order.
func (l List) GetAll(name string) []*Node {
	var out []*Node
	for _, n := range l {
		if n.Name == name {
			out = append(out, n)
		}
	}
	return out
}

// Names returns the property names in stream order, duplicates included.
func (l List) Names() []string {
	names := make([]string, len(l))
	for i, n := range l {
		names[i] = n.Name
	}
	return names
}

// MapPair is one key/value entry of a structured map payload.
type MapPair struct {
	Key   *Node
	Value *Node
}

// ObjectRef is the decoded form of an ObjectProperty payload.
// Exactly one representation is active: Null, Index, Path (with Flag),
// or the Raw fallback for layouts the decoder does not understand.
type ObjectRef struct {
	// Null marks a null reference; NullWidth is its encoded width (4 or 8).
	Null      bool
	NullWidth int32

	// Index is a plain 4-byte object index.
	Index *int32

	// Path is a blueprint path reference; Flag is the int32 preceding it.
	Path    string
	Flag    int32
	HasPath bool

	// Raw preserves payloads in none of the known layouts.
	Raw []byte
}

// SoftObjectPath is the decoded form of a SoftObjectProperty payload
// (UE5 FSoftObjectPath).
type SoftObjectPath struct {
	Package string
	Asset   string
	SubPath string
}

// Node is one property in the tree. Fields prefixed with nothing are
// the decoded value; the header and shape fields are side-channel
// metadata that must survive decode-to-encode untouched for byte-exact
// round trips (the interchange form keeps them under "_"-prefixed keys).
type Node struct {
	// Name is the property name as stored in the stream.
	Name string

	// Type is the wire type. RawType preserves the original tag string
	// when Type is TypeUnknown.
	Type    Type
	RawType string

	// Offset is the byte offset of the property header in the source
	// buffer. Diagnostics only; not re-encoded.
	Offset int

	// Index is the property's array index field from the header.
	Index int32

	// Size is the declared payload size as recorded in the stream.
	// The encoder recomputes it; after decode it is authoritative for
	// what the stream claimed.
	Size int32

	// Tag is the property tag byte. When non-zero on simple properties
	// an Extra int32 follows it in the header.
	Tag   byte
	Extra *int32

	// Flags preserves the int32 flag fields of composite headers in
	// stream order (observed always 1, echoed back verbatim).
	Flags []int32

	// StructName and Package name the defining type of a struct.
	StructName string
	Package    string

	// Array element shape: ChildType plus, for struct elements, the
	// child struct's defining type, its package, and whether 4-byte
	// zero separators appear between elements.
	ChildType       Type
	ChildStructName string
	ChildPackage    string
	HasSep          bool

	// Map and set element shapes. The Raw* fields preserve inner tag
	// strings outside the known registry, as RawType does for the
	// property's own tag and an array's child tag.
	KeyType      Type
	ValueType    Type
	ElemType     Type
	RawKeyType   string
	RawValueType string
	RawElemType  string

	// Structured reports whether a map/set payload decoded into
	// Pairs/Items (true) or is carried opaquely in Raw (false).
	Structured bool

	// Count preserves the stored element count of an array whose
	// payload is carried opaquely in Raw. For decoded elements the
	// count is derived from Items on encode.
	Count int32

	// Terminated reports whether a struct's inner sequence ended with
	// the None sentinel (as opposed to exactly filling its region).
	Terminated bool

	// Slack preserves bytes between a payload's logical end and its
	// declared end, re-emitted verbatim.
	Slack []byte

	// Value variants; which one is live is determined by Type.
	Bool     bool
	Int      int64
	Uint     uint64
	Float    float64
	Str      string
	Raw      []byte
	Object   *ObjectRef
	Soft     *SoftObjectPath
	Children List
	Items    []*Node
	Pairs    []MapPair
}

// Struct returns the nested property list of a struct node, or nil for
// raw-leaf structs and non-struct nodes.
func (n *Node) Struct() List {
	if n.Type != TypeStruct {
		return nil
	}
	return n.Children
}

// Len returns the element count of an array, set, or map node.
func (n *Node) Len() int {
	switch n.Type {
	case TypeArray, TypeSet:
		return len(n.Items)
	case TypeMap:
		return len(n.Pairs)
	default:
		return 0
	}
}

// ClearItems empties an array or set node. Counts and declared size
// are re-derived from the emptied value on encode, which is the
// designed repair operation for corrupted containers. Slack is dropped
// together with the items it padded.
func (n *Node) ClearItems() {
	n.Items = nil
	n.Pairs = nil
	n.Slack = nil
	if n.Type == TypeArray || n.Type == TypeSet {
		n.Items = []*Node{}
	}
	if n.Type == TypeMap {
		n.Pairs = []MapPair{}
	}
	n.Raw = nil
}

// SetBool replaces a bool node's value.
func (n *Node) SetBool(v bool) {
	n.Bool = v
	if v {
		n.Uint = 1
	} else {
		n.Uint = 0
	}
}

// SetInt replaces a signed integer node's value.
func (n *Node) SetInt(v int64) {
	n.Int = v
}

// SetUint replaces an unsigned integer node's value.
func (n *Node) SetUint(v uint64) {
	n.Uint = v
}

// SetFloat replaces a float or double node's value, refreshing the
// authoritative bit pattern for the node's width.
func (n *Node) SetFloat(v float64) {
	n.Float = v
	switch n.Type {
	case TypeFloat:
		n.Uint = uint64(math.Float32bits(float32(v)))
	case TypeDouble:
		n.Uint = math.Float64bits(v)
	}
}

// SetString replaces a string or name node's value. Any no-payload
// marker from decode is dropped so the new value is actually emitted.
func (n *Node) SetString(v string) {
	n.Str = v
	n.Raw = nil
}

// SetObjectPath replaces an object node's value with a blueprint path
// reference, discarding any preserved raw payload.
func (n *Node) SetObjectPath(path string) {
	n.Object = &ObjectRef{Flag: 1, Path: path, HasPath: true}
	n.Raw = nil
}

// NewBool builds a BoolProperty node.
func NewBool(name string, v bool) *Node {
	n := &Node{Name: name, Type: TypeBool}
	n.SetBool(v)
	return n
}

// NewInt builds an IntProperty node.
func NewInt(name string, v int32) *Node {
	return &Node{Name: name, Type: TypeInt, Int: int64(v)}
}

// NewFloat builds a FloatProperty node.
func NewFloat(name string, v float32) *Node {
	n := &Node{Name: name, Type: TypeFloat}
	n.SetFloat(float64(v))
	return n
}

// NewDouble builds a DoubleProperty node.
func NewDouble(name string, v float64) *Node {
	n := &Node{Name: name, Type: TypeDouble}
	n.SetFloat(v)
	return n
}

// NewString builds a StrProperty node.
func NewString(name, v string) *Node {
	return &Node{Name: name, Type: TypeStr, Str: v}
}

// NewName builds a NameProperty node.
func NewName(name, v string) *Node {
	return &Node{Name: name, Type: TypeName, Str: v}
}

// NewStruct builds a StructProperty node with the given defining type
// name and children. Header flags default to the observed constants.
func NewStruct(name, structName string, children List) *Node {
	return &Node{
		Name:       name,
		Type:       TypeStruct,
		StructName: structName,
		Flags:      []int32{1, 1},
		Children:   children,
		Terminated: true,
	}
}

// NewArray builds an ArrayProperty node of scalar elements.
func NewArray(name string, childType Type, items []*Node) *Node {
	return &Node{
		Name:      name,
		Type:      TypeArray,
		ChildType: childType,
		Flags:     []int32{1},
		Items:     items,
	}
}

// elem builds a bare element node for array/set payloads.
func elem(t Type) *Node {
	return &Node{Type: t}
}
