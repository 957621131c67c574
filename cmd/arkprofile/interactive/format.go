package interactive

import (
	"fmt"
	"strings"

	"github.com/ark-tools/arkprofile-go/pkg/profile"
	"github.com/ark-tools/arkprofile-go/pkg/property"
)

// FormatSummary renders the envelope fields and the headline counts a
// user checks before repairing a profile.
func FormatSummary(p *profile.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File type:   %s\n", p.FileType)
	fmt.Fprintf(&b, "GUID:        %s\n", p.GUID)
	fmt.Fprintf(&b, "Version:     %d\n", p.Version)
	fmt.Fprintf(&b, "Name:        %s\n", p.Name)
	fmt.Fprintf(&b, "Controller:  %s\n", p.Controller)
	fmt.Fprintf(&b, "Game mode:   %s\n", p.GameMode)
	fmt.Fprintf(&b, "Map:         %s (%s)\n", p.MapName, p.MapPath)
	fmt.Fprintf(&b, "Properties:  %d top-level\n", len(p.Properties))

	if items := p.ArkItems(); items != nil {
		fmt.Fprintf(&b, "Ark items:   %d\n", items.Len())
	}
	if dinos := p.TamedDinos(); dinos != nil {
		fmt.Fprintf(&b, "Tamed dinos: %d\n", dinos.Len())
	}
	if p.ArkData().Get("ClubArkTokens") != nil {
		fmt.Fprintf(&b, "Club tokens: %d\n", p.ClubArkTokens())
	}
	return b.String()
}

// FormatList renders one line per property: name, type, and a short
// value or element count.
func FormatList(list property.List) string {
	var b strings.Builder
	for _, n := range list {
		fmt.Fprintf(&b, "  %-36s %-16s %s\n", n.Name, typeLabel(n), FormatValue(n))
	}
	return b.String()
}

// FormatNode renders one property with its wire-level detail.
func FormatNode(n *property.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:   %s\n", n.Name)
	fmt.Fprintf(&b, "Type:   %s\n", typeLabel(n))
	fmt.Fprintf(&b, "Offset: %d\n", n.Offset)
	fmt.Fprintf(&b, "Size:   %d\n", n.Size)
	fmt.Fprintf(&b, "Value:  %s\n", FormatValue(n))

	if len(n.Children) > 0 {
		fmt.Fprintln(&b, "Children:")
		b.WriteString(FormatList(n.Children))
	}
	for i, el := range n.Items {
		if i == maxShownElements {
			fmt.Fprintf(&b, "  ... %d more elements\n", len(n.Items)-maxShownElements)
			break
		}
		fmt.Fprintf(&b, "  [%d] %s\n", i, FormatValue(el))
	}
	for i, pair := range n.Pairs {
		if i == maxShownElements {
			fmt.Fprintf(&b, "  ... %d more pairs\n", len(n.Pairs)-maxShownElements)
			break
		}
		fmt.Fprintf(&b, "  %s: %s\n", FormatValue(pair.Key), FormatValue(pair.Value))
	}
	return b.String()
}

const maxShownElements = 25

// FormatValue renders a node's value on one line.
func FormatValue(n *property.Node) string {
	switch n.Type {
	case property.TypeBool:
		return fmt.Sprintf("%t", n.Bool)
	case property.TypeInt, property.TypeInt16, property.TypeInt64:
		return fmt.Sprintf("%d", n.Int)
	case property.TypeUInt16, property.TypeUInt32, property.TypeUInt64:
		return fmt.Sprintf("%d", n.Uint)
	case property.TypeByte:
		if n.Raw != nil {
			return fmt.Sprintf("<%d raw bytes>", len(n.Raw))
		}
		return fmt.Sprintf("%d", n.Uint)
	case property.TypeFloat, property.TypeDouble:
		return fmt.Sprintf("%g", n.Float)
	case property.TypeStr, property.TypeName:
		return fmt.Sprintf("%q", n.Str)
	case property.TypeObject:
		if n.Object == nil || n.Object.Null {
			return "<null object>"
		}
		if n.Object.HasPath {
			return n.Object.Path
		}
		if n.Object.Index != nil {
			return fmt.Sprintf("object #%d", *n.Object.Index)
		}
		return fmt.Sprintf("<%d raw bytes>", len(n.Object.Raw))
	case property.TypeSoftObject:
		if n.Soft == nil {
			return "<null soft object>"
		}
		return n.Soft.Package
	case property.TypeStruct:
		if n.Children != nil {
			return fmt.Sprintf("{%d properties}", len(n.Children))
		}
		return fmt.Sprintf("<%d raw bytes>", len(n.Raw))
	case property.TypeArray, property.TypeSet:
		if n.Items == nil && n.Raw != nil {
			return fmt.Sprintf("<%d opaque bytes>", len(n.Raw))
		}
		return fmt.Sprintf("[%d elements]", len(n.Items))
	case property.TypeMap:
		if !n.Structured && n.Raw != nil {
			return fmt.Sprintf("<%d opaque bytes>", len(n.Raw))
		}
		return fmt.Sprintf("{%d pairs}", len(n.Pairs))
	default:
		return fmt.Sprintf("<%d raw bytes>", len(n.Raw))
	}
}

func typeLabel(n *property.Node) string {
	switch n.Type {
	case property.TypeStruct:
		if n.StructName != "" {
			return fmt.Sprintf("Struct<%s>", n.StructName)
		}
	case property.TypeArray:
		return fmt.Sprintf("Array<%s>", elemLabel(n.ChildType, n.ChildStructName))
	case property.TypeSet:
		return fmt.Sprintf("Set<%s>", n.ElemType)
	case property.TypeMap:
		return fmt.Sprintf("Map<%s,%s>", n.KeyType, n.ValueType)
	case property.TypeUnknown:
		return n.RawType
	}
	return n.Type.String()
}

func elemLabel(t property.Type, structName string) string {
	if t == property.TypeStruct && structName != "" {
		return structName
	}
	return t.String()
}
