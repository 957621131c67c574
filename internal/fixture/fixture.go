// Package fixture builds realistic PlayerLocalData containers for
// tests: a healthy profile with the structures the game writes, plus
// helpers that corrupt specific bytes.
package fixture

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/ark-tools/arkprofile-go/pkg/profile"
	"github.com/ark-tools/arkprofile-go/pkg/property"
	"github.com/ark-tools/arkprofile-go/pkg/stream"
)

// NewProfile returns a small but structurally faithful profile: the
// envelope, MyArkData with tribute items and dinos, achievements, and
// the usual trailer.
func NewProfile() *profile.Profile {
	p := profile.New()
	p.HeaderV1 = 3
	p.HeaderV2 = 1
	p.GUID = uuid.MustParse("8d9e3f10-5a4b-4c2d-9e1f-0a1b2c3d4e5f")
	p.FileType = "PlayerLocalData"
	p.Name = "PlayerLocalData"
	p.Controller = "PlayerController"
	p.MapName = "TheIsland_WP"
	p.MapPath = "/Game/Maps/TheIslandSubMaps/TheIsland_WP"
	p.HeaderSize = 0

	p.Properties = property.List{
		property.NewStruct("MyArkData", "PrimalLocalProfileStructArk", property.List{
			ArkItemsArray("ArkItems", []int32{40, 100, 1}),
			tamedDinosArray(),
			property.NewInt("ClubArkTokens", 250),
		}),
		property.NewArray("GlobalExplorerNoteUnlocks", property.TypeInt, IntItems(12, 40, 7)),
		achievementsArray(),
		property.NewString("LastPlayedMap", "TheIsland_WP"),
		property.NewBool("bHasSeenIntro", true),
	}

	trailer := stream.NewWriter()
	trailer.WriteInt32(1)
	trailer.WriteBytes(p.GUID[:])
	p.Trailing = trailer.Bytes()
	return p
}

// Bytes encodes the healthy fixture profile.
func Bytes() []byte {
	buf, err := NewProfile().Encode()
	if err != nil {
		panic(err)
	}
	return buf
}

// IntItems wraps int32 values as positional array elements.
func IntItems(values ...int32) []*property.Node {
	items := make([]*property.Node, 0, len(values))
	for _, v := range values {
		items = append(items, &property.Node{Type: property.TypeInt, Int: int64(v)})
	}
	return items
}

// ArkItemsArray builds a struct-element tribute item array with
// inter-element separators, one item per quantity.
func ArkItemsArray(name string, quantities []int32) *property.Node {
	items := make([]*property.Node, 0, len(quantities))
	for _, q := range quantities {
		items = append(items, &property.Node{
			Type:       property.TypeStruct,
			Terminated: true,
			Children: property.List{
				property.NewName("ItemArchetype", "PrimalItemResource_Metal_C"),
				property.NewInt("ItemQuantity", q),
				property.NewFloat("ItemRating", 1.5),
			},
		})
	}
	return &property.Node{
		Name:            name,
		Type:            property.TypeArray,
		ChildType:       property.TypeStruct,
		ChildStructName: "PrimalItemNetInfo",
		Flags:           []int32{1, 1, 1},
		HasSep:          true,
		Items:           items,
	}
}

func tamedDinosArray() *property.Node {
	dino := &property.Node{
		Type:       property.TypeStruct,
		Terminated: true,
		Children: property.List{
			property.NewName("DinoClass", "Raptor_Character_BP_C"),
			property.NewInt("DinoLevel", 73),
		},
	}
	return &property.Node{
		Name:            "ArkTamedDinosData",
		Type:            property.TypeArray,
		ChildType:       property.TypeStruct,
		ChildStructName: "PrimalDinoNetInfo",
		Flags:           []int32{1, 1, 1},
		HasSep:          true,
		Items:           []*property.Node{dino},
	}
}

func achievementsArray() *property.Node {
	return property.NewArray("UnlockedAchievements", property.TypeName, []*property.Node{
		{Type: property.TypeName, Str: "ACH_FirstBlood"},
		{Type: property.TypeName, Str: "ACH_AlphaRex"},
	})
}

// Truncate cuts n bytes off the end.
func Truncate(buf []byte, n int) []byte {
	if n >= len(buf) {
		return nil
	}
	return buf[:len(buf)-n]
}

// PatchByte returns a copy of buf with one byte replaced.
func PatchByte(buf []byte, off int, b byte) []byte {
	out := make([]byte, len(buf))
	copy(out, buf)
	out[off] = b
	return out
}

// ShortenSize returns a copy of buf with the declared size of the
// named simple property reduced by delta. The property must use the
// plain name/type/index/size header layout.
func ShortenSize(buf []byte, name string, delta int32) []byte {
	off := FindName(buf, name)
	if off < 0 {
		return buf
	}
	tagOff := off + stream.StringSize(name)
	tagLen := int(binary.LittleEndian.Uint32(buf[tagOff:]))
	sizeOff := tagOff + 4 + tagLen + 4

	out := make([]byte, len(buf))
	copy(out, buf)
	size := int32(binary.LittleEndian.Uint32(out[sizeOff:]))
	binary.LittleEndian.PutUint32(out[sizeOff:], uint32(size-delta))
	return out
}

// UnknownTag returns a copy of buf with the named property's type tag
// replaced by an unrecognized tag of the same length, so offsets and
// the declared size stay valid.
func UnknownTag(buf []byte, name string) []byte {
	off := FindName(buf, name)
	if off < 0 {
		return buf
	}
	tagOff := off + stream.StringSize(name)

	out := make([]byte, len(buf))
	copy(out, buf)
	out[tagOff+4] = 'X'
	return out
}

// FindName locates the wire encoding of a property name, returning the
// offset of its length prefix or -1.
func FindName(buf []byte, name string) int {
	w := stream.NewWriter()
	w.WriteString(name)
	needle := w.Bytes()
	for i := 0; i+len(needle) <= len(buf); i++ {
		if string(buf[i:i+len(needle)]) == string(needle) {
			return i
		}
	}
	return -1
}
