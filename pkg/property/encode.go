package property

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ark-tools/arkprofile-go/pkg/stream"
	"github.com/ark-tools/arkprofile-go/pkg/tracelog"
)

// maxPayload is the largest payload a declared-size field can carry.
const maxPayload = math.MaxInt32

// Encoder serializes property trees back to wire bytes. The zero value
// is ready to use.
type Encoder struct {
	// Logger receives one trace event per property. Nil disables tracing.
	Logger tracelog.Logger

	// Path names the container in trace events.
	Path string
}

// Encode serializes a property list, including the terminating None
// sentinel. Encoding a freshly decoded tree reproduces the input bytes
// exactly.
func Encode(list List) ([]byte, error) {
	var e Encoder
	return e.Encode(list)
}

// Encode serializes a property list with the terminating sentinel.
func (e *Encoder) Encode(list List) ([]byte, error) {
	w := stream.NewWriter()
	if err := e.EncodeWriter(w, list); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeWriter serializes a property list onto an existing writer.
// Container adapters use this to emit the property section between an
// envelope header and trailer.
func (e *Encoder) EncodeWriter(w *stream.Writer, list List) error {
	s := &encodeState{w: w, logger: e.Logger, path: e.Path}
	if s.logger != nil {
		s.session = uuid.NewString()
	}
	if err := s.encodeList(w, list, true); err != nil {
		s.logError(err)
		return err
	}
	return nil
}

type encodeState struct {
	w       *stream.Writer
	logger  tracelog.Logger
	session string
	path    string
	depth   int
}

// encodeList writes each property and, when terminated, the None
// sentinel that closes the sequence.
func (s *encodeState) encodeList(w *stream.Writer, list List, terminated bool) error {
	for _, n := range list {
		if err := s.encodeNode(w, n); err != nil {
			return err
		}
	}
	if terminated {
		w.WriteString(NoneName)
	}
	return nil
}

func (s *encodeState) encodeNode(w *stream.Writer, n *Node) error {
	start := w.Len()
	var err error
	switch n.Type {
	case TypeStruct:
		err = s.encodeStruct(w, n)
	case TypeArray:
		err = s.encodeArray(w, n)
	case TypeMap:
		err = s.encodeMap(w, n)
	case TypeSet:
		err = s.encodeSet(w, n)
	case TypeBool:
		err = s.encodeBool(w, n)
	case TypeUnknown:
		err = s.encodeOpaque(w, n, n.RawType)
	default:
		err = s.encodeSimple(w, n)
	}
	if err != nil {
		return err
	}
	s.logProperty(n, start)
	return nil
}

// flagAt returns the i-th preserved header flag, defaulting to 1 for
// trees built programmatically.
func flagAt(n *Node, i int) int32 {
	if i < len(n.Flags) {
		return n.Flags[i]
	}
	return 1
}

// wireTag returns the tag string to write for an inner type, falling
// back to the preserved raw tag when the type is outside the registry.
func wireTag(t Type, raw string) string {
	if t == TypeUnknown && raw != "" {
		return raw
	}
	return t.String()
}

func (s *encodeState) checkPayload(n *Node, size int) error {
	if size > maxPayload {
		return &EncodeOverflowError{Name: n.Name, Size: size}
	}
	return nil
}

// encodeStruct writes the struct sub-header and either the raw leaf
// payload or the nested property sequence plus preserved slack.
func (s *encodeState) encodeStruct(w *stream.Writer, n *Node) error {
	payload := stream.NewWriter()
	if n.Children == nil && n.Raw != nil {
		payload.WriteBytes(n.Raw)
	} else {
		s.depth++
		err := s.encodeList(payload, n.Children, n.Terminated)
		s.depth--
		if err != nil {
			return err
		}
		payload.WriteBytes(n.Slack)
	}
	if err := s.checkPayload(n, payload.Len()); err != nil {
		return err
	}

	w.WriteString(n.Name)
	w.WriteString(TypeStruct.String())
	w.WriteInt32(flagAt(n, 0))
	w.WriteString(n.StructName)
	w.WriteInt32(flagAt(n, 1))
	w.WriteString(n.Package)
	w.WriteInt32(n.Index)
	w.WriteInt32(int32(payload.Len()))
	w.WriteUint8(n.Tag)
	w.WriteBytes(payload.Bytes())
	return nil
}

// encodeArray writes the array sub-header, the recomputed count and
// declared size, and the positional elements.
func (s *encodeState) encodeArray(w *stream.Writer, n *Node) error {
	childTag := wireTag(n.ChildType, n.RawType)

	payload := stream.NewWriter()
	count, err := s.arrayElements(payload, n)
	if err != nil {
		return err
	}
	payload.WriteBytes(n.Slack)
	if err := s.checkPayload(n, payload.Len()+4); err != nil {
		return err
	}

	w.WriteString(n.Name)
	w.WriteString(TypeArray.String())
	w.WriteInt32(flagAt(n, 0))
	w.WriteString(childTag)
	if n.ChildType == TypeStruct {
		w.WriteInt32(flagAt(n, 1))
		w.WriteString(n.ChildStructName)
		w.WriteInt32(flagAt(n, 2))
		w.WriteString(n.ChildPackage)
	}
	w.WriteInt32(n.Index)
	w.WriteInt32(int32(payload.Len() + 4))
	w.WriteUint8(n.Tag)
	w.WriteInt32(count)
	w.WriteBytes(payload.Bytes())
	return nil
}

// arrayElements writes the element region and returns the count. For
// opaque payloads the preserved count is echoed back.
func (s *encodeState) arrayElements(w *stream.Writer, n *Node) (int32, error) {
	if n.Items == nil {
		w.WriteBytes(n.Raw)
		return n.Count, nil
	}

	count := int32(len(n.Items))
	switch n.ChildType {
	case TypeStruct:
		for i, item := range n.Items {
			if item.Children == nil && item.Type != TypeStruct {
				return 0, &TypeMismatchError{Name: n.Name, Type: TypeArray, Expected: "struct element", Actual: item.Type.String()}
			}
			if i > 0 && n.HasSep {
				w.WriteInt32(0)
			}
			s.depth++
			err := s.encodeList(w, item.Children, item.Terminated)
			s.depth--
			if err != nil {
				return 0, err
			}
		}

	case TypeStr, TypeName:
		for _, item := range n.Items {
			w.WriteString(item.Str)
		}

	case TypeObject:
		for _, item := range n.Items {
			if item.Object == nil {
				return 0, &TypeMismatchError{Name: n.Name, Type: TypeArray, Expected: "object reference element", Actual: "nil"}
			}
			w.WriteInt32(item.Object.Flag)
			w.WriteString(item.Object.Path)
		}

	case TypeSoftObject:
		for _, item := range n.Items {
			if item.Soft == nil {
				return 0, &TypeMismatchError{Name: n.Name, Type: TypeArray, Expected: "soft object element", Actual: "nil"}
			}
			w.WriteString(item.Soft.Package)
			w.WriteString(item.Soft.Asset)
			w.WriteString(item.Soft.SubPath)
		}

	default:
		if elementFixedSizes[n.ChildType] == 0 {
			return 0, &TypeMismatchError{Name: n.Name, Type: TypeArray, Expected: "opaque payload for element type " + n.ChildType.String(), Actual: "decoded items"}
		}
		for _, item := range n.Items {
			writeFixedElement(w, n.ChildType, item)
		}
	}
	return count, nil
}

// writeFixedElement emits one positional element of a fixed-width type.
func writeFixedElement(w *stream.Writer, t Type, item *Node) {
	switch t {
	case TypeInt:
		w.WriteInt32(int32(item.Int))
	case TypeInt16:
		w.WriteInt16(int16(item.Int))
	case TypeInt64:
		w.WriteInt64(item.Int)
	case TypeUInt16:
		w.WriteUint16(uint16(item.Uint))
	case TypeUInt32:
		w.WriteUint32(uint32(item.Uint))
	case TypeUInt64:
		w.WriteUint64(item.Uint)
	case TypeFloat:
		w.WriteUint32(uint32(item.Uint))
	case TypeDouble:
		w.WriteUint64(item.Uint)
	case TypeByte, TypeBool:
		w.WriteUint8(uint8(item.Uint))
	}
}

// encodeMap writes the map sub-header and either structured pairs or
// the preserved opaque payload.
func (s *encodeState) encodeMap(w *stream.Writer, n *Node) error {
	payload := stream.NewWriter()
	if n.Structured || n.Pairs != nil {
		payload.WriteInt32(0)
		payload.WriteInt32(int32(len(n.Pairs)))
		for _, p := range n.Pairs {
			writePairScalar(payload, n.KeyType, p.Key)
			writePairScalar(payload, n.ValueType, p.Value)
		}
	} else {
		payload.WriteBytes(n.Raw)
	}
	if err := s.checkPayload(n, payload.Len()); err != nil {
		return err
	}

	w.WriteString(n.Name)
	w.WriteString(TypeMap.String())
	w.WriteInt32(flagAt(n, 0))
	w.WriteString(wireTag(n.KeyType, n.RawKeyType))
	w.WriteInt32(flagAt(n, 1))
	w.WriteString(wireTag(n.ValueType, n.RawValueType))
	w.WriteInt32(n.Index)
	w.WriteInt32(int32(payload.Len()))
	w.WriteUint8(n.Tag)
	w.WriteBytes(payload.Bytes())
	return nil
}

func writePairScalar(w *stream.Writer, t Type, item *Node) {
	if t == TypeStr || t == TypeName {
		w.WriteString(item.Str)
		return
	}
	writeFixedElement(w, t, item)
}

// encodeSet writes the set sub-header and either structured name
// elements or the preserved opaque payload.
func (s *encodeState) encodeSet(w *stream.Writer, n *Node) error {
	payload := stream.NewWriter()
	if n.Structured || n.Items != nil {
		payload.WriteInt32(0)
		payload.WriteInt32(int32(len(n.Items)))
		for _, item := range n.Items {
			payload.WriteString(item.Str)
		}
	} else {
		payload.WriteBytes(n.Raw)
	}
	if err := s.checkPayload(n, payload.Len()); err != nil {
		return err
	}

	w.WriteString(n.Name)
	w.WriteString(TypeSet.String())
	w.WriteInt32(flagAt(n, 0))
	w.WriteString(wireTag(n.ElemType, n.RawElemType))
	w.WriteInt32(n.Index)
	w.WriteInt32(int32(payload.Len()))
	w.WriteUint8(n.Tag)
	w.WriteBytes(payload.Bytes())
	return nil
}

// encodeBool writes the value byte in the tag position with a zero
// declared size.
func (s *encodeState) encodeBool(w *stream.Writer, n *Node) error {
	w.WriteString(n.Name)
	w.WriteString(TypeBool.String())
	w.WriteInt32(n.Index)
	w.WriteInt32(0)
	b := uint8(n.Uint)
	if n.Bool && b == 0 {
		b = 1
	}
	if !n.Bool {
		b = 0
	}
	w.WriteUint8(b)
	return nil
}

// encodeSimple writes a leaf property header and its payload.
func (s *encodeState) encodeSimple(w *stream.Writer, n *Node) error {
	payload := stream.NewWriter()
	switch n.Type {
	case TypeInt:
		payload.WriteInt32(int32(n.Int))
	case TypeInt16:
		payload.WriteInt16(int16(n.Int))
	case TypeInt64:
		payload.WriteInt64(n.Int)
	case TypeUInt16:
		payload.WriteUint16(uint16(n.Uint))
	case TypeUInt32:
		payload.WriteUint32(uint32(n.Uint))
	case TypeUInt64:
		payload.WriteUint64(n.Uint)
	case TypeFloat:
		payload.WriteUint32(uint32(n.Uint))
	case TypeDouble:
		payload.WriteUint64(n.Uint)

	case TypeStr, TypeName:
		// A non-nil empty Raw marks a property that carried no payload
		// bytes at all, distinct from an empty string.
		if !(n.Raw != nil && n.Str == "") {
			payload.WriteString(n.Str)
		}

	case TypeByte:
		switch {
		case n.Raw != nil:
			payload.WriteBytes(n.Raw)
		default:
			payload.WriteUint8(uint8(n.Uint))
		}

	case TypeObject:
		if n.Object == nil {
			return &TypeMismatchError{Name: n.Name, Type: TypeObject, Expected: "object reference", Actual: "nil"}
		}
		writeObjectRef(payload, n.Object)

	case TypeSoftObject:
		if n.Soft == nil {
			return &TypeMismatchError{Name: n.Name, Type: TypeSoftObject, Expected: "soft object path", Actual: "nil"}
		}
		payload.WriteString(n.Soft.Package)
		payload.WriteString(n.Soft.Asset)
		payload.WriteString(n.Soft.SubPath)

	case TypeText:
		payload.WriteBytes(n.Raw)

	default:
		return &TypeMismatchError{Name: n.Name, Type: n.Type, Expected: "leaf value", Actual: "unsupported type"}
	}
	if err := s.checkPayload(n, payload.Len()); err != nil {
		return err
	}

	w.WriteString(n.Name)
	w.WriteString(n.Type.String())
	s.writeSimpleHeader(w, n, int32(payload.Len()))
	w.WriteBytes(payload.Bytes())
	return nil
}

// encodeOpaque re-emits a property whose type was never understood,
// tag string and payload verbatim.
func (s *encodeState) encodeOpaque(w *stream.Writer, n *Node, tag string) error {
	if err := s.checkPayload(n, len(n.Raw)); err != nil {
		return err
	}
	w.WriteString(n.Name)
	w.WriteString(tag)
	s.writeSimpleHeader(w, n, int32(len(n.Raw)))
	w.WriteBytes(n.Raw)
	return nil
}

func (s *encodeState) writeSimpleHeader(w *stream.Writer, n *Node, size int32) {
	w.WriteInt32(n.Index)
	w.WriteInt32(size)
	w.WriteUint8(n.Tag)
	if n.Tag != 0 {
		var extra int32
		if n.Extra != nil {
			extra = *n.Extra
		}
		w.WriteInt32(extra)
	}
}

// writeObjectRef emits an ObjectProperty payload in the layout it was
// decoded from.
func writeObjectRef(w *stream.Writer, o *ObjectRef) {
	switch {
	case o.Raw != nil:
		w.WriteBytes(o.Raw)
	case o.Null:
		if o.NullWidth == 8 {
			w.WriteInt32(0)
		}
		w.WriteUint32(0xFFFFFFFF)
	case o.HasPath:
		w.WriteInt32(o.Flag)
		w.WriteString(o.Path)
	case o.Index != nil:
		w.WriteInt32(*o.Index)
	default:
		// Programmatic refs with nothing set encode as 4-byte null.
		w.WriteUint32(0xFFFFFFFF)
	}
}

func (s *encodeState) logProperty(n *Node, offset int) {
	if s.logger == nil {
		return
	}
	ev := tracelog.Event{
		Timestamp: time.Now(),
		SessionID: s.session,
		Path:      s.path,
		Direction: tracelog.DirectionEncode,
		Category:  tracelog.CategoryProperty,
		Property: &tracelog.PropertyEvent{
			Name:   n.Name,
			Type:   n.typeTag(),
			Offset: offset,
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

func (s *encodeState) logError(err error) {
	if s.logger == nil {
		return
	}
	s.logger.Log(tracelog.Event{
		Timestamp: time.Now(),
		SessionID: s.session,
		Path:      s.path,
		Direction: tracelog.DirectionEncode,
		Category:  tracelog.CategoryError,
		Error:     &tracelog.ErrorEvent{Message: err.Error()},
	})
}
