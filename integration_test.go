package arkprofile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ark-tools/arkprofile-go/internal/fixture"
	"github.com/ark-tools/arkprofile-go/pkg/profile"
	"github.com/ark-tools/arkprofile-go/pkg/tracelog"
)

// TestE2E_RepairWorkflow exercises the full repair loop a user runs on
// a corrupted profile: verify, load, clear the broken array, save, and
// confirm the result verifies clean and still round-trips.
func TestE2E_RepairWorkflow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PlayerLocalData.arkprofile")
	require.NoError(t, os.WriteFile(path, fixture.Bytes(), 0o644))

	// The pristine file verifies clean.
	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	rep := profile.Verify(buf)
	require.True(t, rep.OK(), "findings: %v", rep.Findings)

	// Load, drop the tribute items, save.
	p, err := profile.Load(path)
	require.NoError(t, err)
	itemsBefore := p.ArkItems().Len()
	require.Greater(t, itemsBefore, 0)
	require.True(t, p.ClearArkItems())
	require.NoError(t, p.Save(path))

	// The repaired file verifies clean and the array is empty.
	repaired, err := profile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, repaired.ArkItems().Len())
	assert.Equal(t, p.GUID, repaired.GUID)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	rep = profile.Verify(out)
	assert.True(t, rep.OK(), "findings: %v", rep.Findings)

	// Repair is idempotent at the byte level.
	again, err := repaired.Encode()
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

// TestE2E_CorruptionRoundTrip checks that a size-field corruption is
// reported with its offset and that the trace log records the decode.
func TestE2E_CorruptionRoundTrip(t *testing.T) {
	buf := fixture.Bytes()

	off := fixture.FindName(buf, "ClubArkTokens")
	require.GreaterOrEqual(t, off, 0)
	sizeOff := off + 18 + 16 + 4
	buf = fixture.PatchByte(buf, sizeOff, 2)

	rep := profile.Verify(buf)
	require.False(t, rep.OK())
	assert.NotEmpty(t, rep.Findings)

	dir := t.TempDir()
	tracePath := filepath.Join(dir, "decode.trace")
	logger, err := tracelog.NewFileLogger(tracePath)
	require.NoError(t, err)

	codec := profile.Codec{Logger: logger, Path: "corrupt.arkprofile"}
	_, err = codec.Decode(buf)
	assert.Error(t, err)
	require.NoError(t, logger.Close())

	reader, err := tracelog.NewReader(tracePath)
	require.NoError(t, err)
	defer reader.Close()
	events, err := reader.All()
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}

// TestE2E_TextEditingWorkflow drives the extract-edit-build path via
// the JSON document form.
func TestE2E_TextEditingWorkflow(t *testing.T) {
	p, err := profile.Decode(fixture.Bytes())
	require.NoError(t, err)

	doc, err := p.ToJSON("  ")
	require.NoError(t, err)
	assert.Contains(t, string(doc), "ClubArkTokens")

	rebuilt, err := profile.FromJSON(doc)
	require.NoError(t, err)

	out, err := rebuilt.Encode()
	require.NoError(t, err)
	assert.Equal(t, fixture.Bytes(), out)
}
