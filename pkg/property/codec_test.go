package property

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ark-tools/arkprofile-go/pkg/stream"
	"github.com/ark-tools/arkprofile-go/pkg/tracelog"
)

// sampleList builds a tree touching every scalar type plus nesting.
func sampleList() List {
	stats := NewStruct("MyPersistentCharacterStats", "PrimalPersistentCharacterStatsStruct", List{
		NewInt("CharacterStatusComponent_ExtraCharacterLevel", 104),
		NewFloat("CharacterStatusComponent_ExperiencePoints", 1547923.5),
		NewBool("bHasAscended", true),
		NewName("PlayerCharacterName", "Surveyor"),
	})
	return List{
		NewString("PlayerName", "Surveyor"),
		NewInt("PlayerDataVersion", 2),
		NewBool("bIsFemale", false),
		NewDouble("LastLoginTime", 74312.25),
		stats,
		NewArray("PerMapExplorerNoteUnlocks", TypeInt, []*Node{
			{Type: TypeInt, Int: 12},
			{Type: TypeInt, Int: 40},
			{Type: TypeInt, Int: 7},
		}),
	}
}

func mustEncode(t *testing.T, list List) []byte {
	t.Helper()
	buf, err := Encode(list)
	require.NoError(t, err)
	return buf
}

func mustDecode(t *testing.T, buf []byte) List {
	t.Helper()
	list, findings, err := Decode(buf)
	require.NoError(t, err)
	require.Empty(t, findings)
	return list
}

func TestRoundTripScalars(t *testing.T) {
	buf := mustEncode(t, sampleList())
	decoded := mustDecode(t, buf)

	require.Len(t, decoded, 6)
	assert.Equal(t, "Surveyor", decoded.Get("PlayerName").Str)
	assert.Equal(t, int64(2), decoded.Get("PlayerDataVersion").Int)
	assert.False(t, decoded.Get("bIsFemale").Bool)
	assert.Equal(t, 74312.25, decoded.Get("LastLoginTime").Float)

	stats := decoded.Get("MyPersistentCharacterStats")
	require.NotNil(t, stats)
	assert.Equal(t, "PrimalPersistentCharacterStatsStruct", stats.StructName)
	assert.True(t, stats.Terminated)
	require.Len(t, stats.Struct(), 4)
	assert.Equal(t, int64(104), stats.Struct().Get("CharacterStatusComponent_ExtraCharacterLevel").Int)
	assert.True(t, stats.Struct().Get("bHasAscended").Bool)

	notes := decoded.Get("PerMapExplorerNoteUnlocks")
	require.NotNil(t, notes)
	assert.Equal(t, TypeInt, notes.ChildType)
	require.Len(t, notes.Items, 3)
	assert.Equal(t, int64(40), notes.Items[1].Int)

	out := mustEncode(t, decoded)
	assert.Equal(t, buf, out)
}

func TestRoundTripFloatBitPatterns(t *testing.T) {
	nan32 := &Node{Name: "OddStat", Type: TypeFloat, Uint: 0x7FC00001, Float: float64(math.Float32frombits(0x7FC00001))}
	negZero := NewFloat("NegZero", float32(math.Copysign(0, -1)))
	inf := NewDouble("BigNum", math.Inf(1))
	buf := mustEncode(t, List{nan32, negZero, inf})

	decoded := mustDecode(t, buf)
	assert.Equal(t, uint64(0x7FC00001), decoded.Get("OddStat").Uint)
	assert.Equal(t, uint64(math.Float32bits(float32(math.Copysign(0, -1)))), decoded.Get("NegZero").Uint)
	assert.True(t, math.IsInf(decoded.Get("BigNum").Float, 1))

	assert.Equal(t, buf, mustEncode(t, decoded))
}

// Two arrays of struct elements, one with 4-byte zero separators
// between elements and one without. The separator choice must be
// detected per array and reproduced exactly.
func TestStructArraySeparatorDetection(t *testing.T) {
	item := func(qty int32) *Node {
		return &Node{Type: TypeStruct, Terminated: true, Children: List{
			NewInt("ItemQuantity", qty),
			NewName("ItemArchetype", "PrimalItemResource_Wood_C"),
		}}
	}
	withSep := &Node{
		Name: "ArkItems", Type: TypeArray, ChildType: TypeStruct,
		ChildStructName: "PrimalPlayerCharacterConfigStructSaddle",
		Flags:           []int32{1, 1, 1},
		HasSep:          true,
		Items:           []*Node{item(10), item(25), item(3)},
	}
	withoutSep := &Node{
		Name: "ArkItems", Type: TypeArray, ChildType: TypeStruct,
		ChildStructName: "PrimalPlayerCharacterConfigStructSaddle",
		Flags:           []int32{1, 1, 1},
		Items:           []*Node{item(5), item(8)},
	}

	buf := mustEncode(t, List{withSep, withoutSep})
	decoded := mustDecode(t, buf)

	arrays := decoded.GetAll("ArkItems")
	require.Len(t, arrays, 2)
	assert.True(t, arrays[0].HasSep)
	require.Len(t, arrays[0].Items, 3)
	assert.Equal(t, int64(25), arrays[0].Items[1].Children.Get("ItemQuantity").Int)
	assert.False(t, arrays[1].HasSep)
	require.Len(t, arrays[1].Items, 2)

	assert.Equal(t, buf, mustEncode(t, decoded))
}

func TestStructRawLeafRoundTrip(t *testing.T) {
	// Vector-style struct: 12 bytes of raw floats, no nested properties.
	w := stream.NewWriter()
	w.WriteString("SpawnLocation")
	w.WriteString("StructProperty")
	w.WriteInt32(1)
	w.WriteString("Vector")
	w.WriteInt32(1)
	w.WriteString("")
	w.WriteInt32(0)
	w.WriteInt32(12)
	w.WriteUint8(0)
	w.WriteFloat32(100.5)
	w.WriteFloat32(-40)
	w.WriteFloat32(3200)
	w.WriteString(NoneName)
	buf := w.Bytes()

	decoded := mustDecode(t, buf)
	leaf := decoded.Get("SpawnLocation")
	require.NotNil(t, leaf)
	assert.Equal(t, "Vector", leaf.StructName)
	assert.Nil(t, leaf.Children)
	assert.Len(t, leaf.Raw, 12)

	assert.Equal(t, buf, mustEncode(t, decoded))
}

func TestStructSlackPreserved(t *testing.T) {
	// Inner properties end with None before the declared size runs out;
	// the remaining bytes must survive the round trip verbatim.
	inner := stream.NewWriter()
	inner.WriteString("Flag")
	inner.WriteString("BoolProperty")
	inner.WriteInt32(0)
	inner.WriteInt32(0)
	inner.WriteUint8(1)
	inner.WriteString(NoneName)
	inner.WriteBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF})

	w := stream.NewWriter()
	w.WriteString("Padded")
	w.WriteString("StructProperty")
	w.WriteInt32(1)
	w.WriteString("PaddedStruct")
	w.WriteInt32(1)
	w.WriteString("")
	w.WriteInt32(0)
	w.WriteInt32(int32(inner.Len()))
	w.WriteUint8(0)
	w.WriteBytes(inner.Bytes())
	w.WriteString(NoneName)
	buf := w.Bytes()

	decoded := mustDecode(t, buf)
	padded := decoded.Get("Padded")
	require.NotNil(t, padded)
	assert.True(t, padded.Terminated)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, padded.Slack)

	assert.Equal(t, buf, mustEncode(t, decoded))
}

func TestCorruptionDetectedAtOffset(t *testing.T) {
	list := List{NewInt("Level", 42)}
	buf := mustEncode(t, list)

	// name(10) + type(16) + index(4): the size field follows.
	sizeOff := 10 + 16 + 4
	payloadOff := sizeOff + 4 + 1

	corrupted := make([]byte, len(buf))
	copy(corrupted, buf)
	corrupted[sizeOff] = 3

	_, _, err := Decode(corrupted)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSizeMismatch)
	var sizeErr *SizeMismatchError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, "Level", sizeErr.Name)
	assert.Equal(t, payloadOff, sizeErr.Offset)
	assert.Equal(t, int32(3), sizeErr.Declared)
}

func TestDeclaredSizeOverrunsBuffer(t *testing.T) {
	buf := mustEncode(t, List{NewString("Note", "hello")})
	sizeOff := 9 + 16 + 4 // name "Note"(9) + type(16) + index(4)
	corrupted := make([]byte, len(buf))
	copy(corrupted, buf)
	corrupted[sizeOff] = 0xFF
	corrupted[sizeOff+1] = 0xFF
	corrupted[sizeOff+2] = 0x00
	corrupted[sizeOff+3] = 0x00

	_, _, err := Decode(corrupted)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

// Every strict prefix of a valid stream must fail loudly, never panic
// and never return a silently shortened tree.
func TestTruncationProperty(t *testing.T) {
	buf := mustEncode(t, sampleList())
	for i := 0; i < len(buf); i++ {
		_, _, err := Decode(buf[:i])
		assert.Errorf(t, err, "prefix of %d bytes decoded without error", i)
	}
}

func TestMissingTerminatorIsTruncation(t *testing.T) {
	buf := mustEncode(t, List{NewInt("Level", 1)})
	// Strip the trailing None sentinel.
	short := buf[:len(buf)-stream.StringSize(NoneName)]
	_, _, err := Decode(short)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestUnknownTypeIsRecoverable(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("Mystery")
	w.WriteString("FancyProperty")
	w.WriteInt32(0)
	w.WriteInt32(6)
	w.WriteUint8(0)
	w.WriteBytes([]byte{1, 2, 3, 4, 5, 6})
	w.WriteString("Level")
	w.WriteString("IntProperty")
	w.WriteInt32(0)
	w.WriteInt32(4)
	w.WriteUint8(0)
	w.WriteInt32(77)
	w.WriteString(NoneName)
	buf := w.Bytes()

	list, findings, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FindingUnknownType, findings[0].Kind)
	assert.Equal(t, "Mystery", findings[0].Name)

	require.Len(t, list, 2)
	assert.Equal(t, TypeUnknown, list[0].Type)
	assert.Equal(t, "FancyProperty", list[0].RawType)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, list[0].Raw)
	assert.Equal(t, int64(77), list[1].Int)

	assert.Equal(t, buf, mustEncode(t, list))
}

func TestMapStructuredPairs(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("StatPoints")
	w.WriteString("MapProperty")
	w.WriteInt32(1)
	w.WriteString("NameProperty")
	w.WriteInt32(1)
	w.WriteString("IntProperty")
	w.WriteInt32(0)
	size := 8 + stream.StringSize("Health") + 4 + stream.StringSize("Stamina") + 4
	w.WriteInt32(int32(size))
	w.WriteUint8(0)
	w.WriteInt32(0)
	w.WriteInt32(2)
	w.WriteString("Health")
	w.WriteInt32(100)
	w.WriteString("Stamina")
	w.WriteInt32(80)
	w.WriteString(NoneName)
	buf := w.Bytes()

	list := mustDecode(t, buf)
	m := list.Get("StatPoints")
	require.NotNil(t, m)
	assert.True(t, m.Structured)
	require.Len(t, m.Pairs, 2)
	assert.Equal(t, "Health", m.Pairs[0].Key.Str)
	assert.Equal(t, int64(100), m.Pairs[0].Value.Int)
	assert.Equal(t, "Stamina", m.Pairs[1].Key.Str)

	assert.Equal(t, buf, mustEncode(t, list))
}

func TestMapOpaqueFallback(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("StatPoints")
	w.WriteString("MapProperty")
	w.WriteInt32(1)
	w.WriteString("NameProperty")
	w.WriteInt32(1)
	w.WriteString("IntProperty")
	w.WriteInt32(0)
	w.WriteInt32(8)
	w.WriteUint8(0)
	// removed-key count is non-zero, so the structured layout bails.
	w.WriteInt32(7)
	w.WriteInt32(0)
	w.WriteString(NoneName)
	buf := w.Bytes()

	list, findings, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FindingOpaquePayload, findings[0].Kind)

	m := list.Get("StatPoints")
	require.NotNil(t, m)
	assert.False(t, m.Structured)
	assert.Len(t, m.Raw, 8)

	assert.Equal(t, buf, mustEncode(t, list))
}

func TestSetOfNames(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("UnlockedEmotes")
	w.WriteString("SetProperty")
	w.WriteInt32(0)
	w.WriteString("NameProperty")
	w.WriteInt32(0)
	size := 8 + stream.StringSize("Wave") + stream.StringSize("Clap")
	w.WriteInt32(int32(size))
	w.WriteUint8(0)
	w.WriteInt32(0)
	w.WriteInt32(2)
	w.WriteString("Wave")
	w.WriteString("Clap")
	w.WriteString(NoneName)
	buf := w.Bytes()

	list := mustDecode(t, buf)
	set := list.Get("UnlockedEmotes")
	require.NotNil(t, set)
	assert.True(t, set.Structured)
	require.Len(t, set.Items, 2)
	assert.Equal(t, "Wave", set.Items[0].Str)

	assert.Equal(t, buf, mustEncode(t, list))
}

func TestMapUnknownInnerTagsRoundTrip(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("StatBuffs")
	w.WriteString("MapProperty")
	w.WriteInt32(1)
	w.WriteString("EnumProperty")
	w.WriteInt32(1)
	w.WriteString("GameplayTagContainer")
	w.WriteInt32(0)
	w.WriteInt32(8)
	w.WriteUint8(0)
	w.WriteBytes([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	w.WriteString(NoneName)
	buf := w.Bytes()

	list, findings, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, FindingUnknownType, findings[0].Kind)
	assert.Equal(t, FindingUnknownType, findings[1].Kind)

	m := list.Get("StatBuffs")
	require.NotNil(t, m)
	assert.Equal(t, TypeUnknown, m.KeyType)
	assert.Equal(t, "EnumProperty", m.RawKeyType)
	assert.Equal(t, TypeUnknown, m.ValueType)
	assert.Equal(t, "GameplayTagContainer", m.RawValueType)
	assert.False(t, m.Structured)
	assert.Len(t, m.Raw, 8)

	assert.Equal(t, buf, mustEncode(t, list))
}

func TestSetUnknownElementTagRoundTrip(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("ActiveBuffs")
	w.WriteString("SetProperty")
	w.WriteInt32(0)
	w.WriteString("EnumProperty")
	w.WriteInt32(0)
	w.WriteInt32(6)
	w.WriteUint8(0)
	w.WriteBytes([]byte{9, 8, 7, 6, 5, 4})
	w.WriteString(NoneName)
	buf := w.Bytes()

	list, findings, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FindingUnknownType, findings[0].Kind)
	assert.Equal(t, "ActiveBuffs", findings[0].Name)

	set := list.Get("ActiveBuffs")
	require.NotNil(t, set)
	assert.Equal(t, TypeUnknown, set.ElemType)
	assert.Equal(t, "EnumProperty", set.RawElemType)
	assert.Len(t, set.Raw, 6)

	assert.Equal(t, buf, mustEncode(t, list))
}

func TestHostileArrayCountRejected(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("Names")
	w.WriteString("ArrayProperty")
	w.WriteInt32(1)
	w.WriteString("StrProperty")
	w.WriteInt32(0)
	// Declared size leaves 4 payload bytes but claims 2^30 elements.
	w.WriteInt32(8)
	w.WriteUint8(0)
	w.WriteInt32(1 << 30)
	w.WriteInt32(0)
	w.WriteString(NoneName)

	_, _, err := Decode(w.Bytes())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestHostileSetCountFallsBackToOpaque(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("UnlockedEmotes")
	w.WriteString("SetProperty")
	w.WriteInt32(0)
	w.WriteString("NameProperty")
	w.WriteInt32(0)
	w.WriteInt32(12)
	w.WriteUint8(0)
	w.WriteInt32(0)
	w.WriteInt32(1 << 30)
	w.WriteInt32(7)
	w.WriteString(NoneName)
	buf := w.Bytes()

	list, findings, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FindingOpaquePayload, findings[0].Kind)

	set := list.Get("UnlockedEmotes")
	require.NotNil(t, set)
	assert.False(t, set.Structured)
	assert.Len(t, set.Raw, 12)

	assert.Equal(t, buf, mustEncode(t, list))
}

func TestBoolNonCanonicalByte(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("bWeird")
	w.WriteString("BoolProperty")
	w.WriteInt32(0)
	w.WriteInt32(0)
	w.WriteUint8(0x2A)
	w.WriteString(NoneName)
	buf := w.Bytes()

	list := mustDecode(t, buf)
	b := list.Get("bWeird")
	require.NotNil(t, b)
	assert.True(t, b.Bool)
	assert.Equal(t, uint64(0x2A), b.Uint)

	assert.Equal(t, buf, mustEncode(t, list))
}

func TestBoolNonZeroSizeIsCorruption(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("bBroken")
	w.WriteString("BoolProperty")
	w.WriteInt32(0)
	w.WriteInt32(4)
	w.WriteUint8(1)
	w.WriteString(NoneName)

	_, _, err := Decode(w.Bytes())
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

// A StrProperty of declared size zero carries no payload bytes at all,
// which is distinct from an empty string (four zero bytes). Both forms
// must survive unchanged.
func TestStringNoPayloadVersusEmpty(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("Absent")
	w.WriteString("StrProperty")
	w.WriteInt32(0)
	w.WriteInt32(0)
	w.WriteUint8(0)
	w.WriteString("Empty")
	w.WriteString("StrProperty")
	w.WriteInt32(0)
	w.WriteInt32(4)
	w.WriteUint8(0)
	w.WriteString("")
	w.WriteString(NoneName)
	buf := w.Bytes()

	list := mustDecode(t, buf)
	absent := list.Get("Absent")
	require.NotNil(t, absent)
	assert.NotNil(t, absent.Raw)
	assert.Empty(t, absent.Str)
	empty := list.Get("Empty")
	require.NotNil(t, empty)
	assert.Nil(t, empty.Raw)
	assert.Empty(t, empty.Str)

	assert.Equal(t, buf, mustEncode(t, list))
}

func TestObjectRefForms(t *testing.T) {
	tests := []struct {
		name  string
		build func(w *stream.Writer)
		check func(t *testing.T, o *ObjectRef)
	}{
		{
			name: "null four byte",
			build: func(w *stream.Writer) {
				w.WriteInt32(4)
				w.WriteUint8(0)
				w.WriteUint32(0xFFFFFFFF)
			},
			check: func(t *testing.T, o *ObjectRef) {
				assert.True(t, o.Null)
				assert.Equal(t, int32(4), o.NullWidth)
			},
		},
		{
			name: "null eight byte",
			build: func(w *stream.Writer) {
				w.WriteInt32(8)
				w.WriteUint8(0)
				w.WriteInt32(0)
				w.WriteUint32(0xFFFFFFFF)
			},
			check: func(t *testing.T, o *ObjectRef) {
				assert.True(t, o.Null)
				assert.Equal(t, int32(8), o.NullWidth)
			},
		},
		{
			name: "index",
			build: func(w *stream.Writer) {
				w.WriteInt32(4)
				w.WriteUint8(0)
				w.WriteInt32(1234)
			},
			check: func(t *testing.T, o *ObjectRef) {
				require.NotNil(t, o.Index)
				assert.Equal(t, int32(1234), *o.Index)
			},
		},
		{
			name: "path",
			build: func(w *stream.Writer) {
				path := "/Game/Mods/Thing.Thing_C"
				w.WriteInt32(int32(4 + stream.StringSize(path)))
				w.WriteUint8(0)
				w.WriteInt32(1)
				w.WriteString(path)
			},
			check: func(t *testing.T, o *ObjectRef) {
				assert.True(t, o.HasPath)
				assert.Equal(t, "/Game/Mods/Thing.Thing_C", o.Path)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := stream.NewWriter()
			w.WriteString("Ref")
			w.WriteString("ObjectProperty")
			w.WriteInt32(0)
			tt.build(w)
			w.WriteString(NoneName)
			buf := w.Bytes()

			list := mustDecode(t, buf)
			ref := list.Get("Ref")
			require.NotNil(t, ref)
			require.NotNil(t, ref.Object)
			tt.check(t, ref.Object)

			assert.Equal(t, buf, mustEncode(t, list))
		})
	}
}

func TestClearItemsReencodesEmpty(t *testing.T) {
	buf := mustEncode(t, sampleList())
	list := mustDecode(t, buf)

	notes := list.Get("PerMapExplorerNoteUnlocks")
	require.NotNil(t, notes)
	notes.ClearItems()

	out := mustEncode(t, list)
	assert.Less(t, len(out), len(buf))

	reparsed := mustDecode(t, out)
	cleared := reparsed.Get("PerMapExplorerNoteUnlocks")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Items)
	assert.Equal(t, int32(4), cleared.Size)
}

func TestEncodeTypeMismatch(t *testing.T) {
	broken := NewArray("Refs", TypeObject, []*Node{{Type: TypeObject}})
	_, err := Encode(List{broken})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSimpleExtraFieldRoundTrip(t *testing.T) {
	w := stream.NewWriter()
	w.WriteString("Indexed")
	w.WriteString("IntProperty")
	w.WriteInt32(0)
	w.WriteInt32(4)
	w.WriteUint8(1)
	w.WriteInt32(3) // extra index follows a non-zero tag byte
	w.WriteInt32(9000)
	w.WriteString(NoneName)
	buf := w.Bytes()

	list := mustDecode(t, buf)
	n := list.Get("Indexed")
	require.NotNil(t, n)
	require.NotNil(t, n.Extra)
	assert.Equal(t, int32(3), *n.Extra)
	assert.Equal(t, int64(9000), n.Int)

	assert.Equal(t, buf, mustEncode(t, list))
}

// collectLogger gathers trace events for assertions.
type collectLogger struct {
	mu     sync.Mutex
	events []tracelog.Event
}

func (c *collectLogger) Log(ev tracelog.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func TestDecoderEmitsTraceEvents(t *testing.T) {
	buf := mustEncode(t, sampleList())

	var logger collectLogger
	dec := Decoder{Logger: &logger, Path: "player.arkprofile"}
	_, _, err := dec.Decode(buf)
	require.NoError(t, err)

	require.NotEmpty(t, logger.events)
	session := logger.events[0].SessionID
	assert.NotEmpty(t, session)
	for _, ev := range logger.events {
		assert.Equal(t, session, ev.SessionID)
		assert.Equal(t, "player.arkprofile", ev.Path)
		assert.Equal(t, tracelog.DirectionDecode, ev.Direction)
	}

	var names []string
	for _, ev := range logger.events {
		if ev.Category == tracelog.CategoryProperty {
			names = append(names, ev.Property.Name)
		}
	}
	assert.Contains(t, names, "PlayerName")
	assert.Contains(t, names, "CharacterStatusComponent_ExtraCharacterLevel")
}

func TestUnknownSentinelMatching(t *testing.T) {
	err := error(&UnknownTypeError{Tag: "WeirdProperty", Name: "X", Offset: 10})
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.True(t, errors.Is(err, ErrUnknownType))

	var typed *UnknownTypeError
	assert.ErrorAs(t, err, &typed)
	assert.Equal(t, "WeirdProperty", typed.Tag)
}
