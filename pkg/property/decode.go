package property

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ark-tools/arkprofile-go/pkg/stream"
	"github.com/ark-tools/arkprofile-go/pkg/tracelog"
)

// maxSaneNameLen bounds property name length when probing whether a
// struct payload holds nested properties or raw data. Real property
// names are short; anything longer is payload bytes misread as a name.
const maxSaneNameLen = 200

// Decoder decodes property sections. The zero value is ready to use;
// Logger and Path only affect trace output.
type Decoder struct {
	// Logger receives one trace event per property. Nil disables tracing.
	Logger tracelog.Logger

	// Path names the container in trace events.
	Path string
}

// Decode parses one property section from buf. It returns the decoded
// tree, any recoverable findings (unknown types, opaque payloads), and
// the first fatal error. The decoder holds no global state and is safe
// for concurrent use on independent buffers.
func Decode(buf []byte) (List, []Finding, error) {
	var d Decoder
	return d.Decode(buf)
}

// Decode parses one property section from buf.
func (d *Decoder) Decode(buf []byte) (List, []Finding, error) {
	return d.DecodeReader(stream.NewReader(buf))
}

// DecodeReader parses a property section starting at the reader's
// current offset, leaving the reader positioned just past the
// terminating None sentinel. Container adapters use this to decode the
// property section embedded between an envelope header and trailer.
func (d *Decoder) DecodeReader(r *stream.Reader) (List, []Finding, error) {
	s := &decodeState{
		r:       r,
		logger:  d.Logger,
		path:    d.Path,
		session: "",
	}
	if s.logger != nil {
		s.session = uuid.NewString()
	}

	list, terminated, err := s.properties(-1)
	if err != nil {
		s.logError(err)
		return list, s.findings, err
	}
	if !terminated {
		err := &TruncatedInputError{Offset: r.Offset(), Context: "terminating sentinel"}
		s.logError(err)
		return list, s.findings, err
	}
	return list, s.findings, nil
}

// decodeState carries the cursor and accumulated findings of one pass.
type decodeState struct {
	r        *stream.Reader
	findings []Finding
	logger   tracelog.Logger
	session  string
	path     string
	depth    int
}

// properties parses a property sequence until the None sentinel or,
// when end >= 0, until the cursor reaches end. It reports whether the
// sentinel was actually consumed.
func (s *decodeState) properties(end int) (List, bool, error) {
	var list List
	for {
		if end >= 0 && s.r.Offset() >= end {
			return list, false, nil
		}

		nameOff := s.r.Offset()
		name, err := s.r.ReadString()
		if err != nil {
			return list, false, s.truncated(nameOff, "property name")
		}
		if name == NoneName {
			return list, true, nil
		}

		typeOff := s.r.Offset()
		tag, err := s.r.ReadString()
		if err != nil {
			return list, false, s.truncated(typeOff, "property type")
		}

		t, known := ParseType(tag)
		var n *Node
		if !known {
			n, err = s.decodeUnknown(name, tag, nameOff, typeOff)
		} else {
			switch t {
			case TypeStruct:
				n, err = s.decodeStruct(name, nameOff)
			case TypeArray:
				n, err = s.decodeArray(name, nameOff)
			case TypeMap:
				n, err = s.decodeMap(name, nameOff)
			case TypeSet:
				n, err = s.decodeSet(name, nameOff)
			case TypeBool:
				n, err = s.decodeBool(name, nameOff)
			default:
				n, err = s.decodeSimple(name, t, nameOff)
			}
		}
		if err != nil {
			return list, false, err
		}

		s.logProperty(n)
		list = append(list, n)
	}
}

// --- per-type decoders -------------------------------------------------

// decodeStruct reads the StructProperty sub-header (flag, struct type
// name, flag, package path) and the nested payload. Structs that hold
// raw data instead of properties (Vector, Rotator, Quat and friends)
// are preserved as opaque leaves.
func (s *decodeState) decodeStruct(name string, off int) (*Node, error) {
	flag1, err := s.readInt32("struct flag")
	if err != nil {
		return nil, err
	}
	structName, err := s.readString("struct type name")
	if err != nil {
		return nil, err
	}
	flag2, err := s.readInt32("struct flag")
	if err != nil {
		return nil, err
	}
	pkg, err := s.readString("struct package")
	if err != nil {
		return nil, err
	}
	index, size, tag, err := s.readSizeFields(name)
	if err != nil {
		return nil, err
	}

	start := s.r.Offset()
	end, err := s.payloadEnd(name, start, size)
	if err != nil {
		return nil, err
	}

	n := &Node{
		Name:       name,
		Type:       TypeStruct,
		Offset:     off,
		Index:      index,
		Size:       size,
		Tag:        tag,
		Flags:      []int32{flag1, flag2},
		StructName: structName,
		Package:    pkg,
	}

	if size > 0 && !s.looksLikeProperty(end) {
		raw, rerr := s.r.ReadBytes(int(size))
		if rerr != nil {
			return nil, s.truncated(start, "struct payload")
		}
		n.Raw = raw
		return n, nil
	}

	s.depth++
	children, terminated, err := s.properties(end)
	s.depth--
	if err != nil {
		return nil, err
	}
	if s.r.Offset() > end {
		return nil, &SizeMismatchError{
			Name:     name,
			Offset:   start,
			Declared: size,
			Actual:   int32(s.r.Offset() - start),
		}
	}
	n.Children = children
	n.Terminated = terminated
	if slack := end - s.r.Offset(); slack > 0 {
		b, rerr := s.r.ReadBytes(slack)
		if rerr != nil {
			return nil, s.truncated(s.r.Offset(), "struct slack")
		}
		n.Slack = b
	}
	return n, nil
}

// decodeArray reads the ArrayProperty sub-header (child type, plus
// struct-child type info) and the positionally encoded elements.
// Elements carry no per-item name/type framing; the child type cached
// in the node is what makes re-encoding possible.
func (s *decodeState) decodeArray(name string, off int) (*Node, error) {
	flag, err := s.readInt32("array flag")
	if err != nil {
		return nil, err
	}
	childTag, err := s.readString("array child type")
	if err != nil {
		return nil, err
	}
	childType, childKnown := ParseType(childTag)

	n := &Node{
		Name:      name,
		Type:      TypeArray,
		Offset:    off,
		ChildType: childType,
		Flags:     []int32{flag},
	}
	if !childKnown {
		n.RawType = childTag
		s.finding(Finding{
			Kind:   FindingUnknownType,
			Name:   name,
			Offset: off,
			Detail: fmt.Sprintf("unknown array element type %q, payload kept opaque", childTag),
		})
	}

	if childType == TypeStruct {
		flag2, err := s.readInt32("array struct flag")
		if err != nil {
			return nil, err
		}
		childStruct, err := s.readString("array struct type name")
		if err != nil {
			return nil, err
		}
		flag3, err := s.readInt32("array struct flag")
		if err != nil {
			return nil, err
		}
		childPkg, err := s.readString("array struct package")
		if err != nil {
			return nil, err
		}
		n.Flags = append(n.Flags, flag2, flag3)
		n.ChildStructName = childStruct
		n.ChildPackage = childPkg
	}

	index, size, tag, err := s.readSizeFields(name)
	if err != nil {
		return nil, err
	}
	n.Index = index
	n.Size = size
	n.Tag = tag

	countOff := s.r.Offset()
	count, err := s.readInt32("array length")
	if err != nil {
		return nil, err
	}
	if size < 4 || count < 0 {
		return nil, &SizeMismatchError{Name: name, Offset: countOff, Declared: size, Actual: 4}
	}

	start := s.r.Offset()
	end, err := s.payloadEnd(name, start, size-4)
	if err != nil {
		return nil, err
	}

	if err := s.decodeArrayElements(n, count, start, end); err != nil {
		return nil, err
	}
	if s.r.Offset() > end {
		return nil, &SizeMismatchError{
			Name:     name,
			Offset:   start,
			Declared: size,
			Actual:   int32(s.r.Offset()-start) + 4,
		}
	}
	if slack := end - s.r.Offset(); slack > 0 {
		b, rerr := s.r.ReadBytes(slack)
		if rerr != nil {
			return nil, s.truncated(s.r.Offset(), "array slack")
		}
		n.Slack = b
	}
	return n, nil
}

// decodeArrayElements fills n.Items (or n.Raw for opaque child types).
func (s *decodeState) decodeArrayElements(n *Node, count int32, start, end int) error {
	if count == 0 {
		n.Items = []*Node{}
		return nil
	}

	switch {
	case n.ChildType == TypeStruct:
		return s.decodeStructElements(n, count, end)

	case elementFixedSizes[n.ChildType] != 0:
		width := elementFixedSizes[n.ChildType]
		if int(width)*int(count) > end-start {
			return &SizeMismatchError{
				Name:     n.Name,
				Offset:   start,
				Declared: int32(end - start),
				Actual:   width * count,
			}
		}
		n.Items = make([]*Node, 0, count)
		for i := int32(0); i < count; i++ {
			item, err := s.readFixedElement(n.ChildType)
			if err != nil {
				return err
			}
			n.Items = append(n.Items, item)
		}
		return nil

	case n.ChildType == TypeStr || n.ChildType == TypeName:
		n.Items = make([]*Node, 0, clampCount(count, end-start))
		for i := int32(0); i < count; i++ {
			v, err := s.readString("array string element")
			if err != nil {
				return err
			}
			if s.r.Offset() > end {
				return s.elementOverrun(n, start)
			}
			item := elem(n.ChildType)
			item.Str = v
			n.Items = append(n.Items, item)
		}
		return nil

	case n.ChildType == TypeObject:
		n.Items = make([]*Node, 0, clampCount(count, end-start))
		for i := int32(0); i < count; i++ {
			prefix, err := s.readInt32("object element prefix")
			if err != nil {
				return err
			}
			path, err := s.readString("object element path")
			if err != nil {
				return err
			}
			if s.r.Offset() > end {
				return s.elementOverrun(n, start)
			}
			item := elem(TypeObject)
			item.Object = &ObjectRef{Flag: prefix, Path: path, HasPath: true}
			n.Items = append(n.Items, item)
		}
		return nil

	case n.ChildType == TypeSoftObject:
		n.Items = make([]*Node, 0, clampCount(count, end-start))
		for i := int32(0); i < count; i++ {
			soft, err := s.readSoftObject()
			if err != nil {
				return err
			}
			if s.r.Offset() > end {
				return s.elementOverrun(n, start)
			}
			item := elem(TypeSoftObject)
			item.Soft = soft
			n.Items = append(n.Items, item)
		}
		return nil

	default:
		// Text, Map, Set, or unknown child types: keep the whole
		// element region opaque.
		raw, err := s.r.ReadBytes(end - s.r.Offset())
		if err != nil {
			return s.truncated(s.r.Offset(), "array payload")
		}
		n.Raw = raw
		n.Count = count
		return nil
	}
}

// decodeStructElements parses count nested property sequences. Some
// containers put a 4-byte zero separator between struct elements and
// some do not; the first gap decides for the whole array and the
// choice is cached for encode.
func (s *decodeState) decodeStructElements(n *Node, count int32, end int) error {
	n.Items = make([]*Node, 0, clampCount(count, end-s.r.Offset()))
	hasSepDecided := false
	for i := int32(0); i < count; i++ {
		if i > 0 {
			gapOff := s.r.Offset()
			peek, err := s.readInt32("array element separator")
			if err != nil {
				return err
			}
			if !hasSepDecided {
				hasSepDecided = true
				n.HasSep = peek == 0
			}
			if !n.HasSep {
				if err := s.r.Seek(gapOff); err != nil {
					return s.truncated(gapOff, "array element separator")
				}
			}
		}
		s.depth++
		children, terminated, err := s.properties(end)
		s.depth--
		if err != nil {
			return err
		}
		if s.r.Offset() > end {
			return s.elementOverrun(n, end)
		}
		item := elem(TypeStruct)
		item.Children = children
		item.Terminated = terminated
		n.Items = append(n.Items, item)
	}
	return nil
}

// readFixedElement reads one positional element of a fixed-width type.
func (s *decodeState) readFixedElement(t Type) (*Node, error) {
	item := elem(t)
	switch t {
	case TypeInt:
		v, err := s.readInt32("array element")
		if err != nil {
			return nil, err
		}
		item.Int = int64(v)
	case TypeInt16:
		v, err := s.r.ReadInt16()
		if err != nil {
			return nil, s.truncated(s.r.Offset(), "array element")
		}
		item.Int = int64(v)
	case TypeInt64:
		v, err := s.r.ReadInt64()
		if err != nil {
			return nil, s.truncated(s.r.Offset(), "array element")
		}
		item.Int = v
	case TypeUInt16:
		v, err := s.r.ReadUint16()
		if err != nil {
			return nil, s.truncated(s.r.Offset(), "array element")
		}
		item.Uint = uint64(v)
	case TypeUInt32:
		v, err := s.r.ReadUint32()
		if err != nil {
			return nil, s.truncated(s.r.Offset(), "array element")
		}
		item.Uint = uint64(v)
	case TypeUInt64:
		v, err := s.r.ReadUint64()
		if err != nil {
			return nil, s.truncated(s.r.Offset(), "array element")
		}
		item.Uint = v
	case TypeFloat:
		bits, err := s.r.ReadUint32()
		if err != nil {
			return nil, s.truncated(s.r.Offset(), "array element")
		}
		item.Uint = uint64(bits)
		item.Float = float64(math.Float32frombits(bits))
	case TypeDouble:
		bits, err := s.r.ReadUint64()
		if err != nil {
			return nil, s.truncated(s.r.Offset(), "array element")
		}
		item.Uint = bits
		item.Float = math.Float64frombits(bits)
	case TypeByte, TypeBool:
		b, err := s.r.ReadUint8()
		if err != nil {
			return nil, s.truncated(s.r.Offset(), "array element")
		}
		item.Uint = uint64(b)
		item.Bool = b != 0
	}
	return item, nil
}

// decodeMap reads a MapProperty. Structured key/value decoding is
// attempted for scalar key and value types; anything else, or a
// structured read that does not land exactly on the declared size,
// keeps the payload opaque.
func (s *decodeState) decodeMap(name string, off int) (*Node, error) {
	flagK, err := s.readInt32("map flag")
	if err != nil {
		return nil, err
	}
	keyTag, err := s.readString("map key type")
	if err != nil {
		return nil, err
	}
	flagV, err := s.readInt32("map flag")
	if err != nil {
		return nil, err
	}
	valTag, err := s.readString("map value type")
	if err != nil {
		return nil, err
	}
	index, size, tag, err := s.readSizeFields(name)
	if err != nil {
		return nil, err
	}

	keyType, keyKnown := ParseType(keyTag)
	valType, valKnown := ParseType(valTag)

	n := &Node{
		Name:      name,
		Type:      TypeMap,
		Offset:    off,
		Index:     index,
		Size:      size,
		Tag:       tag,
		Flags:     []int32{flagK, flagV},
		KeyType:   keyType,
		ValueType: valType,
	}
	if !keyKnown {
		n.RawKeyType = keyTag
		s.finding(Finding{
			Kind:   FindingUnknownType,
			Name:   name,
			Offset: off,
			Detail: fmt.Sprintf("unknown map key type %q, payload kept opaque", keyTag),
		})
	}
	if !valKnown {
		n.RawValueType = valTag
		s.finding(Finding{
			Kind:   FindingUnknownType,
			Name:   name,
			Offset: off,
			Detail: fmt.Sprintf("unknown map value type %q, payload kept opaque", valTag),
		})
	}

	start := s.r.Offset()
	end, err := s.payloadEnd(name, start, size)
	if err != nil {
		return nil, err
	}

	if pairScalar(keyType) && pairScalar(valType) {
		if pairs, ok := s.tryMapPairs(n, start, end); ok {
			n.Pairs = pairs
			n.Structured = true
			return n, nil
		}
		s.finding(Finding{
			Kind:   FindingOpaquePayload,
			Name:   name,
			Offset: start,
			Detail: fmt.Sprintf("map %s->%s did not decode to declared size %d, payload kept opaque", keyTag, valTag, size),
		})
	}

	if err := s.r.Seek(start); err != nil {
		return nil, s.truncated(start, "map payload")
	}
	raw, rerr := s.r.ReadBytes(int(size))
	if rerr != nil {
		return nil, s.truncated(start, "map payload")
	}
	n.Raw = raw
	return n, nil
}

// tryMapPairs attempts the structured map layout: an int32 removed-key
// count (0 in every observed file), an int32 pair count, then the
// pairs. Success requires consuming exactly the declared region.
func (s *decodeState) tryMapPairs(n *Node, start, end int) ([]MapPair, bool) {
	removed, err := s.r.ReadInt32()
	if err != nil || removed != 0 {
		return nil, false
	}
	count, err := s.r.ReadInt32()
	if err != nil || count < 0 || int(count) > end-s.r.Offset() {
		return nil, false
	}
	pairs := make([]MapPair, 0, count)
	for i := int32(0); i < count; i++ {
		key, ok := s.readPairScalar(n.KeyType, end)
		if !ok {
			return nil, false
		}
		val, ok := s.readPairScalar(n.ValueType, end)
		if !ok {
			return nil, false
		}
		pairs = append(pairs, MapPair{Key: key, Value: val})
	}
	if s.r.Offset() != end {
		return nil, false
	}
	return pairs, true
}

// readPairScalar reads one map key or value of a scalar type, bounded
// by the payload region.
func (s *decodeState) readPairScalar(t Type, end int) (*Node, bool) {
	if t == TypeStr || t == TypeName {
		v, err := s.r.ReadString()
		if err != nil || s.r.Offset() > end {
			return nil, false
		}
		item := elem(t)
		item.Str = v
		return item, true
	}
	item, err := s.readFixedElement(t)
	if err != nil || s.r.Offset() > end {
		return nil, false
	}
	return item, true
}

// pairScalar reports whether a map key/value type supports structured
// decoding (self-delimiting string or fixed width).
func pairScalar(t Type) bool {
	if t == TypeStr || t == TypeName {
		return true
	}
	return elementFixedSizes[t] != 0
}

// decodeSet reads a SetProperty. Name-element sets decode into items;
// everything else is kept opaque, matching the known container layout.
func (s *decodeState) decodeSet(name string, off int) (*Node, error) {
	flag, err := s.readInt32("set flag")
	if err != nil {
		return nil, err
	}
	elemTag, err := s.readString("set element type")
	if err != nil {
		return nil, err
	}
	index, size, tag, err := s.readSizeFields(name)
	if err != nil {
		return nil, err
	}

	elemType, elemKnown := ParseType(elemTag)
	n := &Node{
		Name:     name,
		Type:     TypeSet,
		Offset:   off,
		Index:    index,
		Size:     size,
		Tag:      tag,
		Flags:    []int32{flag},
		ElemType: elemType,
	}
	if !elemKnown {
		n.RawElemType = elemTag
		s.finding(Finding{
			Kind:   FindingUnknownType,
			Name:   name,
			Offset: off,
			Detail: fmt.Sprintf("unknown set element type %q, payload kept opaque", elemTag),
		})
	}

	start := s.r.Offset()
	end, err := s.payloadEnd(name, start, size)
	if err != nil {
		return nil, err
	}

	if elemType == TypeName {
		if items, ok := s.trySetNames(end); ok {
			n.Items = items
			n.Structured = true
			return n, nil
		}
		s.finding(Finding{
			Kind:   FindingOpaquePayload,
			Name:   name,
			Offset: start,
			Detail: fmt.Sprintf("name set did not decode to declared size %d, payload kept opaque", size),
		})
		if err := s.r.Seek(start); err != nil {
			return nil, s.truncated(start, "set payload")
		}
	}

	raw, rerr := s.r.ReadBytes(int(size))
	if rerr != nil {
		return nil, s.truncated(start, "set payload")
	}
	n.Raw = raw
	return n, nil
}

// trySetNames attempts the name-set layout: int32 zero, int32 count,
// then count strings, consuming exactly the declared region.
func (s *decodeState) trySetNames(end int) ([]*Node, bool) {
	zero, err := s.r.ReadInt32()
	if err != nil || zero != 0 {
		return nil, false
	}
	count, err := s.r.ReadInt32()
	if err != nil || count < 0 {
		return nil, false
	}
	items := make([]*Node, 0, clampCount(count, end-s.r.Offset()))
	for i := int32(0); i < count; i++ {
		v, err := s.r.ReadString()
		if err != nil || s.r.Offset() > end {
			return nil, false
		}
		item := elem(TypeName)
		item.Str = v
		items = append(items, item)
	}
	if s.r.Offset() != end {
		return nil, false
	}
	return items, true
}

// decodeBool reads a BoolProperty. The value lives in the header byte
// and the declared size is always zero; the raw byte is preserved so
// non-canonical true values round-trip.
func (s *decodeState) decodeBool(name string, off int) (*Node, error) {
	index, err := s.readInt32("bool index")
	if err != nil {
		return nil, err
	}
	sizeOff := s.r.Offset()
	size, err := s.readInt32("bool size")
	if err != nil {
		return nil, err
	}
	if size != 0 {
		return nil, &SizeMismatchError{Name: name, Offset: sizeOff, Declared: size, Actual: 0}
	}
	b, err := s.readUint8("bool value")
	if err != nil {
		return nil, err
	}
	return &Node{
		Name:   name,
		Type:   TypeBool,
		Offset: off,
		Index:  index,
		Bool:   b != 0,
		Uint:   uint64(b),
	}, nil
}

// decodeSimple reads any leaf property: index, declared size, tag byte
// (plus an extra int32 when the tag is set), then the payload.
func (s *decodeState) decodeSimple(name string, t Type, off int) (*Node, error) {
	index, size, tag, extra, err := s.readSimpleHeader(name)
	if err != nil {
		return nil, err
	}

	n := &Node{
		Name:   name,
		Type:   t,
		Offset: off,
		Index:  index,
		Size:   size,
		Tag:    tag,
		Extra:  extra,
	}

	start := s.r.Offset()
	if _, err := s.payloadEnd(name, start, size); err != nil {
		return nil, err
	}

	if fixed := t.FixedSize(); fixed > 0 && size != fixed {
		return nil, &SizeMismatchError{Name: name, Offset: start, Declared: size, Actual: fixed}
	}

	switch t {
	case TypeInt:
		v, err := s.readInt32("int payload")
		if err != nil {
			return nil, err
		}
		n.Int = int64(v)
	case TypeInt16:
		v, verr := s.r.ReadInt16()
		if verr != nil {
			return nil, s.truncated(start, "int16 payload")
		}
		n.Int = int64(v)
	case TypeInt64:
		v, verr := s.r.ReadInt64()
		if verr != nil {
			return nil, s.truncated(start, "int64 payload")
		}
		n.Int = v
	case TypeUInt16:
		v, verr := s.r.ReadUint16()
		if verr != nil {
			return nil, s.truncated(start, "uint16 payload")
		}
		n.Uint = uint64(v)
	case TypeUInt32:
		v, verr := s.r.ReadUint32()
		if verr != nil {
			return nil, s.truncated(start, "uint32 payload")
		}
		n.Uint = uint64(v)
	case TypeUInt64:
		v, verr := s.r.ReadUint64()
		if verr != nil {
			return nil, s.truncated(start, "uint64 payload")
		}
		n.Uint = v
	case TypeFloat:
		bits, verr := s.r.ReadUint32()
		if verr != nil {
			return nil, s.truncated(start, "float payload")
		}
		n.Uint = uint64(bits)
		n.Float = float64(math.Float32frombits(bits))
	case TypeDouble:
		bits, verr := s.r.ReadUint64()
		if verr != nil {
			return nil, s.truncated(start, "double payload")
		}
		n.Uint = bits
		n.Float = math.Float64frombits(bits)

	case TypeStr, TypeName:
		if size == 0 {
			// Zero declared size means no payload at all; remember the
			// distinction so encode emits nothing.
			n.Raw = []byte{}
			return n, nil
		}
		v, verr := s.r.ReadString()
		if verr != nil {
			return nil, s.truncated(start, "string payload")
		}
		n.Str = v

	case TypeByte:
		switch {
		case size == 1:
			b, verr := s.readUint8("byte payload")
			if verr != nil {
				return nil, verr
			}
			n.Uint = uint64(b)
		case size == 0:
			n.Raw = []byte{}
			return n, nil
		default:
			raw, verr := s.r.ReadBytes(int(size))
			if verr != nil {
				return nil, s.truncated(start, "byte payload")
			}
			n.Raw = raw
		}

	case TypeObject:
		raw, verr := s.r.ReadBytes(int(size))
		if verr != nil {
			return nil, s.truncated(start, "object payload")
		}
		n.Object = parseObjectRef(raw)

	case TypeSoftObject:
		soft, verr := s.readSoftObject()
		if verr != nil {
			return nil, verr
		}
		n.Soft = soft

	case TypeText:
		raw, verr := s.r.ReadBytes(int(size))
		if verr != nil {
			return nil, s.truncated(start, "text payload")
		}
		n.Raw = raw
	}

	if consumed := int32(s.r.Offset() - start); consumed != size {
		return nil, &SizeMismatchError{Name: name, Offset: start, Declared: size, Actual: consumed}
	}
	return n, nil
}

// decodeUnknown skips a property with an unrecognized wire tag using
// its declared size, preserving the raw payload and tag verbatim.
// Recoverable per the error-handling contract.
func (s *decodeState) decodeUnknown(name, tag string, off, tagOff int) (*Node, error) {
	index, size, tagByte, extra, err := s.readSimpleHeader(name)
	if err != nil {
		return nil, err
	}
	start := s.r.Offset()
	if _, err := s.payloadEnd(name, start, size); err != nil {
		return nil, err
	}
	raw, rerr := s.r.ReadBytes(int(size))
	if rerr != nil {
		return nil, s.truncated(start, "unknown property payload")
	}

	s.finding(Finding{
		Kind:   FindingUnknownType,
		Name:   name,
		Offset: tagOff,
		Detail: (&UnknownTypeError{Tag: tag, Name: name, Offset: tagOff}).Error(),
	})

	return &Node{
		Name:    name,
		Type:    TypeUnknown,
		RawType: tag,
		Offset:  off,
		Index:   index,
		Size:    size,
		Tag:     tagByte,
		Extra:   extra,
		Raw:     raw,
	}, nil
}

// --- shared helpers ----------------------------------------------------

// readSoftObject reads a UE5 FSoftObjectPath: package, asset, sub-path.
func (s *decodeState) readSoftObject() (*SoftObjectPath, error) {
	pkg, err := s.readString("soft object package")
	if err != nil {
		return nil, err
	}
	asset, err := s.readString("soft object asset")
	if err != nil {
		return nil, err
	}
	sub, err := s.readString("soft object sub-path")
	if err != nil {
		return nil, err
	}
	return &SoftObjectPath{Package: pkg, Asset: asset, SubPath: sub}, nil
}

// parseObjectRef interprets an ObjectProperty payload. Null patterns,
// plain indices, and flag+path layouts are decoded; anything else is
// kept as raw bytes.
func parseObjectRef(raw []byte) *ObjectRef {
	switch {
	case len(raw) == 4 && isAllFF(raw):
		return &ObjectRef{Null: true, NullWidth: 4}
	case len(raw) == 8 && isAllZero(raw[:4]) && isAllFF(raw[4:]):
		return &ObjectRef{Null: true, NullWidth: 8}
	case len(raw) == 4:
		idx := int32(uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24)
		return &ObjectRef{Index: &idx}
	case len(raw) >= 9:
		flag := int32(uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24)
		slen := int(uint32(raw[4]) | uint32(raw[5])<<8 | uint32(raw[6])<<16 | uint32(raw[7])<<24)
		if flag >= 0 && slen > 0 && 8+slen == len(raw) && raw[len(raw)-1] == 0 {
			return &ObjectRef{Flag: flag, Path: string(raw[8 : 8+slen-1]), HasPath: true}
		}
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return &ObjectRef{Raw: out}
}

func isAllFF(b []byte) bool {
	for _, c := range b {
		if c != 0xFF {
			return false
		}
	}
	return true
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// readSimpleHeader reads index + size + tag byte, plus the extra int32
// that follows a non-zero tag.
func (s *decodeState) readSimpleHeader(name string) (index, size int32, tag byte, extra *int32, err error) {
	index, err = s.readInt32("property index")
	if err != nil {
		return
	}
	size, err = s.readInt32("property size")
	if err != nil {
		return
	}
	tag, err = s.readUint8("property tag")
	if err != nil {
		return
	}
	if tag != 0 {
		var e int32
		e, err = s.readInt32("property extra index")
		if err != nil {
			return
		}
		extra = &e
	}
	return
}

// readSizeFields reads the index + size + tag triple of composite
// headers (no extra field follows the tag there).
func (s *decodeState) readSizeFields(name string) (index, size int32, tag byte, err error) {
	index, err = s.readInt32("property index")
	if err != nil {
		return
	}
	size, err = s.readInt32("property size")
	if err != nil {
		return
	}
	tag, err = s.readUint8("property tag")
	return
}

// payloadEnd bounds-checks a declared payload size against the buffer
// and returns the region end offset.
func (s *decodeState) payloadEnd(name string, start int, size int32) (int, error) {
	if size < 0 {
		return 0, &SizeMismatchError{Name: name, Offset: start, Declared: size, Actual: 0}
	}
	end := start + int(size)
	if end > s.r.Len() {
		return 0, &SizeMismatchError{
			Name:     name,
			Offset:   start,
			Declared: size,
			Actual:   int32(s.r.Len() - start),
		}
	}
	return end, nil
}

// looksLikeProperty peeks at the cursor to decide whether a struct
// payload holds nested properties or raw data. Raw-data structs
// (Vector and friends) fail the probe on the first name string.
func (s *decodeState) looksLikeProperty(end int) bool {
	save := s.r.Offset()
	defer func() { _ = s.r.Seek(save) }()

	name, err := s.r.ReadString()
	if err != nil || s.r.Offset() > end {
		return false
	}
	if name == NoneName {
		return true
	}
	if len(name) == 0 || len(name) > maxSaneNameLen || !printableASCII(name) {
		return false
	}
	tag, err := s.r.ReadString()
	if err != nil || s.r.Offset() > end {
		return false
	}
	_, known := ParseType(tag)
	return known
}

func printableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 32 || s[i] >= 127 {
			return false
		}
	}
	return true
}

func (s *decodeState) readInt32(ctx string) (int32, error) {
	off := s.r.Offset()
	v, err := s.r.ReadInt32()
	if err != nil {
		return 0, s.truncated(off, ctx)
	}
	return v, nil
}

func (s *decodeState) readUint8(ctx string) (byte, error) {
	off := s.r.Offset()
	v, err := s.r.ReadUint8()
	if err != nil {
		return 0, s.truncated(off, ctx)
	}
	return v, nil
}

func (s *decodeState) readString(ctx string) (string, error) {
	off := s.r.Offset()
	v, err := s.r.ReadString()
	if err != nil {
		return "", s.truncated(off, ctx)
	}
	return v, nil
}

func (s *decodeState) truncated(off int, ctx string) error {
	return &TruncatedInputError{Offset: off, Context: ctx}
}

// clampCount bounds an element-count preallocation by the remaining
// payload bytes. Every element occupies at least one byte, so a count
// past avail is corrupt and the loop will fail on its own; the clamp
// just keeps a hostile count from forcing a huge allocation first.
func clampCount(count int32, avail int) int {
	if count < 0 {
		return 0
	}
	if int(count) > avail {
		return avail
	}
	return int(count)
}

// elementOverrun reports an array element read that crossed the
// declared payload boundary.
func (s *decodeState) elementOverrun(n *Node, at int) error {
	return &SizeMismatchError{
		Name:     n.Name,
		Offset:   at,
		Declared: n.Size,
		Actual:   int32(s.r.Offset() - at),
	}
}

func (s *decodeState) finding(f Finding) {
	s.findings = append(s.findings, f)
	if s.logger != nil {
		s.logger.Log(tracelog.Event{
			Timestamp: time.Now(),
			SessionID: s.session,
			Path:      s.path,
			Direction: tracelog.DirectionDecode,
			Category:  tracelog.CategoryFinding,
			Finding: &tracelog.FindingEvent{
				Kind:   string(f.Kind),
				Name:   f.Name,
				Offset: f.Offset,
				Detail: f.Detail,
			},
		})
	}
}

func (s *decodeState) logProperty(n *Node) {
	if s.logger == nil {
		return
	}
	ev := tracelog.Event{
		Timestamp: time.Now(),
		SessionID: s.session,
		Path:      s.path,
		Direction: tracelog.DirectionDecode,
		Category:  tracelog.CategoryProperty,
		Property: &tracelog.PropertyEvent{
			Name:   n.Name,
			Type:   n.typeTag(),
			Offset: n.Offset,
			Size:   n.Size,
			Depth:  s.depth,
		},
	}
	if n.Type == TypeArray || n.Type == TypeSet || n.Type == TypeMap {
		count := int32(n.Len())
		ev.Property.Count = &count
	}
	s.logger.Log(ev)
}

func (s *decodeState) logError(err error) {
	if s.logger == nil {
		return
	}
	s.logger.Log(tracelog.Event{
		Timestamp: time.Now(),
		SessionID: s.session,
		Path:      s.path,
		Direction: tracelog.DirectionDecode,
		Category:  tracelog.CategoryError,
		Error: &tracelog.ErrorEvent{
			Message: err.Error(),
			Offset:  s.r.Offset(),
		},
	})
}

// typeTag returns the wire tag for trace output, preserving the raw
// string for unknown types.
func (n *Node) typeTag() string {
	if n.Type == TypeUnknown && n.RawType != "" {
		return n.RawType
	}
	return n.Type.String()
}
