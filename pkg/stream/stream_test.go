package stream

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteUint8(0xAB)
	w.WriteInt16(-2)
	w.WriteUint16(65535)
	w.WriteInt32(-100000)
	w.WriteUint32(4000000000)
	w.WriteInt64(-1 << 40)
	w.WriteUint64(1 << 60)
	w.WriteFloat32(1.5)
	w.WriteFloat64(-2.25)

	r := NewReader(w.Bytes())

	b, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), b)

	i16, err := r.ReadInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-2), i16)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), u16)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-100000), i32)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(4000000000), u32)

	i64, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-1<<40), i64)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<60), u64)

	f32, err := r.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f32)

	f64, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, -2.25, f64)

	assert.Equal(t, 0, r.Remaining())
}

func TestStringEncoding(t *testing.T) {
	tests := []struct {
		name string
		s    string
		size int
	}{
		{name: "empty", s: "", size: 4},
		{name: "none sentinel", s: "None", size: 9},
		{name: "property name", s: "ArkItems", size: 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter()
			w.WriteString(tt.s)
			assert.Equal(t, tt.size, w.Len())
			assert.Equal(t, tt.size, StringSize(tt.s))

			r := NewReader(w.Bytes())
			got, err := r.ReadString()
			require.NoError(t, err)
			assert.Equal(t, tt.s, got)
			assert.Equal(t, 0, r.Remaining())
		})
	}
}

func TestStringWireLayout(t *testing.T) {
	w := NewWriter()
	w.WriteString("None")
	// uint32(5) + "None" + NUL
	assert.Equal(t, []byte{0x05, 0x00, 0x00, 0x00, 'N', 'o', 'n', 'e', 0x00}, w.Bytes())
}

func TestReaderTruncation(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})

	_, err := r.ReadUint32()
	require.ErrorIs(t, err, ErrTruncated)
	// A failed read must not advance the cursor.
	assert.Equal(t, 0, r.Offset())

	// A string whose length prefix overruns the buffer restores the
	// cursor to the start of the prefix.
	r = NewReader([]byte{0x10, 0x00, 0x00, 0x00, 'a'})
	_, err = r.ReadString()
	require.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, 0, r.Offset())
}

func TestReaderSeek(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4})
	require.NoError(t, r.Seek(2))
	b, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, byte(3), b)

	assert.ErrorIs(t, r.Seek(5), ErrSeekOutOfRange)
	assert.ErrorIs(t, r.Seek(-1), ErrSeekOutOfRange)
}

func TestFloatSpecialValues(t *testing.T) {
	w := NewWriter()
	w.WriteFloat32(float32(math.NaN()))
	w.WriteFloat64(math.Inf(-1))

	r := NewReader(w.Bytes())
	f32, err := r.ReadFloat32()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(f32)))

	f64, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.True(t, math.IsInf(f64, -1))
}
