package property

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// nodeDoc is the interchange form of one node. Fields that the wire
// format needs for byte-identical re-encoding but that carry no user
// meaning use underscore-prefixed keys.
type nodeDoc struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Index int32  `json:"_index,omitempty" yaml:"_index,omitempty"`
	Tag   uint8  `json:"_tag,omitempty" yaml:"_tag,omitempty"`
	Extra *int32 `json:"_extra,omitempty" yaml:"_extra,omitempty"`

	Flags []int32 `json:"_flags,omitempty" yaml:"_flags,omitempty,flow"`

	StructName string `json:"_struct,omitempty" yaml:"_struct,omitempty"`
	Package    string `json:"_package,omitempty" yaml:"_package,omitempty"`

	ChildType       string `json:"_child_type,omitempty" yaml:"_child_type,omitempty"`
	ChildStructName string `json:"_child_struct,omitempty" yaml:"_child_struct,omitempty"`
	ChildPackage    string `json:"_child_package,omitempty" yaml:"_child_package,omitempty"`
	HasSep          bool   `json:"_has_sep,omitempty" yaml:"_has_sep,omitempty"`

	KeyType   string `json:"_key_type,omitempty" yaml:"_key_type,omitempty"`
	ValueType string `json:"_value_type,omitempty" yaml:"_value_type,omitempty"`
	ElemType  string `json:"_elem_type,omitempty" yaml:"_elem_type,omitempty"`

	Structured bool  `json:"_structured,omitempty" yaml:"_structured,omitempty"`
	Count      int32 `json:"_count,omitempty" yaml:"_count,omitempty"`
	Terminated bool  `json:"_terminated,omitempty" yaml:"_terminated,omitempty"`
	NoPayload  bool  `json:"_no_payload,omitempty" yaml:"_no_payload,omitempty"`

	Slack     string `json:"_slack,omitempty" yaml:"_slack,omitempty"`
	Raw       string `json:"_raw,omitempty" yaml:"_raw,omitempty"`
	FloatBits string `json:"_float_bits,omitempty" yaml:"_float_bits,omitempty"`

	Value      any        `json:"value,omitempty" yaml:"value,omitempty"`
	Object     *objectDoc `json:"object,omitempty" yaml:"object,omitempty"`
	Soft       *softDoc   `json:"soft_object,omitempty" yaml:"soft_object,omitempty"`
	Properties []*nodeDoc `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items      []*nodeDoc `json:"items,omitempty" yaml:"items,omitempty"`
	Pairs      []*pairDoc `json:"pairs,omitempty" yaml:"pairs,omitempty"`
}

type pairDoc struct {
	Key   *nodeDoc `json:"key" yaml:"key"`
	Value *nodeDoc `json:"value" yaml:"value"`
}

type objectDoc struct {
	Null      bool    `json:"null,omitempty" yaml:"null,omitempty"`
	NullWidth int32   `json:"null_width,omitempty" yaml:"null_width,omitempty"`
	Index     *int32  `json:"index,omitempty" yaml:"index,omitempty"`
	Flag      int32   `json:"flag,omitempty" yaml:"flag,omitempty"`
	Path      *string `json:"path,omitempty" yaml:"path,omitempty"`
	Raw       string  `json:"raw,omitempty" yaml:"raw,omitempty"`
}

type softDoc struct {
	Package string `json:"package" yaml:"package"`
	Asset   string `json:"asset" yaml:"asset"`
	SubPath string `json:"sub_path" yaml:"sub_path"`
}

// ToJSON renders a property list as JSON. The output is lossless:
// FromJSON followed by Encode reproduces the original bytes. An empty
// indent produces compact output.
func ToJSON(list List, indent string) ([]byte, error) {
	docs := listToDocs(list)
	if indent == "" {
		return json.Marshal(docs)
	}
	return json.MarshalIndent(docs, "", indent)
}

// FromJSON parses a property list from its JSON form.
func FromJSON(data []byte) (List, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var docs []*nodeDoc
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("parsing property JSON: %w", err)
	}
	return docsToList(docs)
}

// ToYAML renders a property list as YAML, same data model as ToJSON.
func ToYAML(list List) ([]byte, error) {
	return yaml.Marshal(listToDocs(list))
}

// FromYAML parses a property list from its YAML form.
func FromYAML(data []byte) (List, error) {
	var docs []*nodeDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing property YAML: %w", err)
	}
	return docsToList(docs)
}

// --- tree to document ----------------------------------------------------

func listToDocs(list List) []*nodeDoc {
	docs := make([]*nodeDoc, 0, len(list))
	for _, n := range list {
		docs = append(docs, nodeToDoc(n))
	}
	return docs
}

func nodeToDoc(n *Node) *nodeDoc {
	d := &nodeDoc{
		Name:  n.Name,
		Type:  n.typeTag(),
		Index: n.Index,
		Tag:   n.Tag,
		Extra: n.Extra,
		Flags: n.Flags,
		Slack: hex.EncodeToString(n.Slack),
	}

	switch n.Type {
	case TypeBool:
		d.Value = n.Bool
		if n.Uint != 0 && n.Uint != 1 {
			d.Raw = hex.EncodeToString([]byte{byte(n.Uint)})
		}

	case TypeInt, TypeInt16, TypeInt64:
		d.Value = n.Int
	case TypeUInt16, TypeUInt32, TypeUInt64:
		d.Value = n.Uint

	case TypeFloat:
		setFloatDoc(d, n.Float, n.Uint)
	case TypeDouble:
		setFloatDoc(d, n.Float, n.Uint)

	case TypeStr, TypeName:
		if n.Raw != nil && n.Str == "" {
			d.NoPayload = true
		} else {
			d.Value = n.Str
		}

	case TypeByte:
		switch {
		case n.Raw != nil && len(n.Raw) == 0:
			d.NoPayload = true
		case n.Raw != nil:
			d.Raw = hex.EncodeToString(n.Raw)
		default:
			d.Value = n.Uint
		}

	case TypeObject:
		d.Object = objectToDoc(n.Object)

	case TypeSoftObject:
		if n.Soft != nil {
			d.Soft = &softDoc{Package: n.Soft.Package, Asset: n.Soft.Asset, SubPath: n.Soft.SubPath}
		}

	case TypeText, TypeUnknown:
		d.Raw = hex.EncodeToString(n.Raw)

	case TypeStruct:
		d.StructName = n.StructName
		d.Package = n.Package
		d.Terminated = n.Terminated
		if n.Children == nil && n.Raw != nil {
			d.Raw = hex.EncodeToString(n.Raw)
		} else {
			d.Properties = listToDocs(n.Children)
			if len(d.Properties) == 0 {
				d.Properties = nil
			}
		}

	case TypeArray:
		d.ChildType = wireTag(n.ChildType, n.RawType)
		d.ChildStructName = n.ChildStructName
		d.ChildPackage = n.ChildPackage
		d.HasSep = n.HasSep
		if n.Items == nil {
			d.Raw = hex.EncodeToString(n.Raw)
			d.Count = n.Count
		} else {
			d.Structured = true
			d.Items = elemsToDocs(n.Items, n.ChildType)
		}

	case TypeMap:
		d.KeyType = wireTag(n.KeyType, n.RawKeyType)
		d.ValueType = wireTag(n.ValueType, n.RawValueType)
		if n.Pairs == nil && !n.Structured {
			d.Raw = hex.EncodeToString(n.Raw)
		} else {
			d.Structured = true
			for _, p := range n.Pairs {
				d.Pairs = append(d.Pairs, &pairDoc{
					Key:   elemToDoc(p.Key, n.KeyType),
					Value: elemToDoc(p.Value, n.ValueType),
				})
			}
		}

	case TypeSet:
		d.ElemType = wireTag(n.ElemType, n.RawElemType)
		if n.Items == nil && !n.Structured {
			d.Raw = hex.EncodeToString(n.Raw)
		} else {
			d.Structured = true
			d.Items = elemsToDocs(n.Items, n.ElemType)
		}
	}
	return d
}

func elemsToDocs(items []*Node, t Type) []*nodeDoc {
	docs := make([]*nodeDoc, 0, len(items))
	for _, item := range items {
		docs = append(docs, elemToDoc(item, t))
	}
	return docs
}

// elemToDoc renders one positional element. Elements carry no name or
// type of their own; the container's child type governs them.
func elemToDoc(item *Node, t Type) *nodeDoc {
	d := &nodeDoc{}
	switch t {
	case TypeStruct:
		d.Terminated = item.Terminated
		d.Properties = listToDocs(item.Children)
		if len(d.Properties) == 0 {
			d.Properties = nil
		}
	case TypeInt, TypeInt16, TypeInt64:
		d.Value = item.Int
	case TypeUInt16, TypeUInt32, TypeUInt64, TypeByte, TypeBool:
		d.Value = item.Uint
	case TypeFloat:
		setFloatDoc(d, item.Float, item.Uint)
	case TypeDouble:
		setFloatDoc(d, item.Float, item.Uint)
	case TypeStr, TypeName:
		d.Value = item.Str
	case TypeObject:
		d.Object = objectToDoc(item.Object)
	case TypeSoftObject:
		if item.Soft != nil {
			d.Soft = &softDoc{Package: item.Soft.Package, Asset: item.Soft.Asset, SubPath: item.Soft.SubPath}
		}
	}
	return d
}

// setFloatDoc emits the numeric value for finite floats and the raw
// bit pattern for anything JSON cannot carry.
func setFloatDoc(d *nodeDoc, f float64, bits uint64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		d.FloatBits = strconv.FormatUint(bits, 16)
		return
	}
	d.Value = f
}

func objectToDoc(o *ObjectRef) *objectDoc {
	if o == nil {
		return nil
	}
	d := &objectDoc{
		Null:      o.Null,
		NullWidth: o.NullWidth,
		Index:     o.Index,
		Flag:      o.Flag,
		Raw:       hex.EncodeToString(o.Raw),
	}
	if o.HasPath {
		p := o.Path
		d.Path = &p
	}
	return d
}

// --- document to tree ----------------------------------------------------

func docsToList(docs []*nodeDoc) (List, error) {
	if docs == nil {
		return nil, nil
	}
	list := make(List, 0, len(docs))
	for i, d := range docs {
		n, err := docToNode(d)
		if err != nil {
			return nil, fmt.Errorf("property %d (%q): %w", i, d.Name, err)
		}
		list = append(list, n)
	}
	return list, nil
}

func docToNode(d *nodeDoc) (*Node, error) {
	t, known := ParseType(d.Type)
	n := &Node{
		Name:  d.Name,
		Type:  t,
		Index: d.Index,
		Tag:   d.Tag,
		Extra: d.Extra,
		Flags: d.Flags,
	}
	if !known {
		n.Type = TypeUnknown
		n.RawType = d.Type
	}
	var err error
	if n.Slack, err = hexField(d.Slack, "_slack"); err != nil {
		return nil, err
	}

	switch n.Type {
	case TypeBool:
		b, ok := d.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("bool property needs a boolean value")
		}
		n.Bool = b
		if d.Raw != "" {
			raw, err := hexField(d.Raw, "_raw")
			if err != nil {
				return nil, err
			}
			if len(raw) != 1 {
				return nil, fmt.Errorf("bool raw byte must be one byte")
			}
			n.Uint = uint64(raw[0])
		} else if b {
			n.Uint = 1
		}

	case TypeInt, TypeInt16, TypeInt64:
		if n.Int, err = toInt64(d.Value); err != nil {
			return nil, err
		}
	case TypeUInt16, TypeUInt32, TypeUInt64:
		if n.Uint, err = toUint64(d.Value); err != nil {
			return nil, err
		}

	case TypeFloat:
		if err = loadFloat(n, d, 4); err != nil {
			return nil, err
		}
	case TypeDouble:
		if err = loadFloat(n, d, 8); err != nil {
			return nil, err
		}

	case TypeStr, TypeName:
		if d.NoPayload {
			n.Raw = []byte{}
		} else if n.Str, err = toStr(d.Value); err != nil {
			return nil, err
		}

	case TypeByte:
		switch {
		case d.NoPayload:
			n.Raw = []byte{}
		case d.Raw != "":
			if n.Raw, err = hexField(d.Raw, "_raw"); err != nil {
				return nil, err
			}
		default:
			if n.Uint, err = toUint64(d.Value); err != nil {
				return nil, err
			}
		}

	case TypeObject:
		if n.Object, err = docToObject(d.Object); err != nil {
			return nil, err
		}

	case TypeSoftObject:
		if d.Soft == nil {
			return nil, fmt.Errorf("soft object property needs a soft_object value")
		}
		n.Soft = &SoftObjectPath{Package: d.Soft.Package, Asset: d.Soft.Asset, SubPath: d.Soft.SubPath}

	case TypeText, TypeUnknown:
		raw, err := hexField(d.Raw, "_raw")
		if err != nil {
			return nil, err
		}
		if raw == nil {
			raw = []byte{}
		}
		n.Raw = raw

	case TypeStruct:
		n.StructName = d.StructName
		n.Package = d.Package
		n.Terminated = d.Terminated
		if d.Raw != "" {
			if n.Raw, err = hexField(d.Raw, "_raw"); err != nil {
				return nil, err
			}
		} else if n.Children, err = docsToList(d.Properties); err != nil {
			return nil, err
		}

	case TypeArray:
		ct, ctKnown := ParseType(d.ChildType)
		n.ChildType = ct
		if !ctKnown {
			n.ChildType = TypeUnknown
			n.RawType = d.ChildType
		}
		n.ChildStructName = d.ChildStructName
		n.ChildPackage = d.ChildPackage
		n.HasSep = d.HasSep
		if d.Structured {
			if n.Items, err = docsToElems(d.Items, n.ChildType); err != nil {
				return nil, err
			}
			if n.Items == nil {
				n.Items = []*Node{}
			}
		} else {
			if n.Raw, err = hexField(d.Raw, "_raw"); err != nil {
				return nil, err
			}
			if n.Raw == nil {
				n.Raw = []byte{}
			}
			n.Count = d.Count
		}

	case TypeMap:
		kt, ktKnown := ParseType(d.KeyType)
		vt, vtKnown := ParseType(d.ValueType)
		n.KeyType = kt
		n.ValueType = vt
		if !ktKnown {
			n.KeyType = TypeUnknown
			n.RawKeyType = d.KeyType
		}
		if !vtKnown {
			n.ValueType = TypeUnknown
			n.RawValueType = d.ValueType
		}
		if d.Structured {
			n.Structured = true
			n.Pairs = make([]MapPair, 0, len(d.Pairs))
			for _, p := range d.Pairs {
				key, err := docToElem(p.Key, kt)
				if err != nil {
					return nil, err
				}
				val, err := docToElem(p.Value, vt)
				if err != nil {
					return nil, err
				}
				n.Pairs = append(n.Pairs, MapPair{Key: key, Value: val})
			}
		} else {
			if n.Raw, err = hexField(d.Raw, "_raw"); err != nil {
				return nil, err
			}
			if n.Raw == nil {
				n.Raw = []byte{}
			}
		}

	case TypeSet:
		et, etKnown := ParseType(d.ElemType)
		n.ElemType = et
		if !etKnown {
			n.ElemType = TypeUnknown
			n.RawElemType = d.ElemType
		}
		if d.Structured {
			n.Structured = true
			if n.Items, err = docsToElems(d.Items, et); err != nil {
				return nil, err
			}
			if n.Items == nil {
				n.Items = []*Node{}
			}
		} else {
			if n.Raw, err = hexField(d.Raw, "_raw"); err != nil {
				return nil, err
			}
			if n.Raw == nil {
				n.Raw = []byte{}
			}
		}
	}
	return n, nil
}

func docsToElems(docs []*nodeDoc, t Type) ([]*Node, error) {
	if docs == nil {
		return nil, nil
	}
	items := make([]*Node, 0, len(docs))
	for i, d := range docs {
		item, err := docToElem(d, t)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func docToElem(d *nodeDoc, t Type) (*Node, error) {
	item := elem(t)
	var err error
	switch t {
	case TypeStruct:
		item.Terminated = d.Terminated
		if item.Children, err = docsToList(d.Properties); err != nil {
			return nil, err
		}
	case TypeInt, TypeInt16, TypeInt64:
		if item.Int, err = toInt64(d.Value); err != nil {
			return nil, err
		}
	case TypeUInt16, TypeUInt32, TypeUInt64, TypeByte, TypeBool:
		if item.Uint, err = toUint64(d.Value); err != nil {
			return nil, err
		}
		item.Bool = item.Uint != 0
	case TypeFloat:
		if err = loadFloat(item, d, 4); err != nil {
			return nil, err
		}
	case TypeDouble:
		if err = loadFloat(item, d, 8); err != nil {
			return nil, err
		}
	case TypeStr, TypeName:
		if item.Str, err = toStr(d.Value); err != nil {
			return nil, err
		}
	case TypeObject:
		if item.Object, err = docToObject(d.Object); err != nil {
			return nil, err
		}
	case TypeSoftObject:
		if d.Soft == nil {
			return nil, fmt.Errorf("soft object element needs a soft_object value")
		}
		item.Soft = &SoftObjectPath{Package: d.Soft.Package, Asset: d.Soft.Asset, SubPath: d.Soft.SubPath}
	default:
		return nil, fmt.Errorf("element type %s cannot be loaded from text form", t)
	}
	return item, nil
}

// loadFloat restores a float node, preferring an explicit bit pattern
// over the numeric value.
func loadFloat(n *Node, d *nodeDoc, width int) error {
	if d.FloatBits != "" {
		bits, err := strconv.ParseUint(d.FloatBits, 16, 64)
		if err != nil {
			return fmt.Errorf("invalid _float_bits: %w", err)
		}
		n.Uint = bits
		if width == 4 {
			n.Float = float64(math.Float32frombits(uint32(bits)))
		} else {
			n.Float = math.Float64frombits(bits)
		}
		return nil
	}
	f, err := toFloat64(d.Value)
	if err != nil {
		return err
	}
	n.Float = f
	if width == 4 {
		n.Uint = uint64(math.Float32bits(float32(f)))
	} else {
		n.Uint = math.Float64bits(f)
	}
	return nil
}

func docToObject(d *objectDoc) (*ObjectRef, error) {
	if d == nil {
		return nil, fmt.Errorf("object property needs an object value")
	}
	o := &ObjectRef{
		Null:      d.Null,
		NullWidth: d.NullWidth,
		Index:     d.Index,
		Flag:      d.Flag,
	}
	if d.Null && d.NullWidth == 0 {
		o.NullWidth = 4
	}
	if d.Path != nil {
		o.Path = *d.Path
		o.HasPath = true
	}
	if d.Raw != "" {
		raw, err := hexField(d.Raw, "object raw")
		if err != nil {
			return nil, err
		}
		o.Raw = raw
	}
	return o, nil
}

func hexField(s, field string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s hex: %w", field, err)
	}
	return b, nil
}

// toInt64 accepts the numeric representations the JSON and YAML
// decoders produce.
func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Int64()
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("integer value %d out of range", x)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("expected integer value, got %v", x)
		}
		return int64(x), nil
	default:
		return 0, fmt.Errorf("expected integer value, got %T", v)
	}
}

func toUint64(v any) (uint64, error) {
	switch x := v.(type) {
	case json.Number:
		return strconv.ParseUint(x.String(), 10, 64)
	case int:
		if x < 0 {
			return 0, fmt.Errorf("unsigned value cannot be negative")
		}
		return uint64(x), nil
	case int64:
		if x < 0 {
			return 0, fmt.Errorf("unsigned value cannot be negative")
		}
		return uint64(x), nil
	case uint64:
		return x, nil
	case float64:
		if x < 0 || x != math.Trunc(x) {
			return 0, fmt.Errorf("expected unsigned integer, got %v", x)
		}
		return uint64(x), nil
	default:
		return 0, fmt.Errorf("expected unsigned integer, got %T", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Float64()
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float64:
		return x, nil
	default:
		return 0, fmt.Errorf("expected float value, got %T", v)
	}
}

func toStr(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string value, got %T", v)
	}
	return s, nil
}
