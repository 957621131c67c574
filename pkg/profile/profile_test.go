package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ark-tools/arkprofile-go/internal/fixture"
	"github.com/ark-tools/arkprofile-go/pkg/profile"
	"github.com/ark-tools/arkprofile-go/pkg/property"
)

func TestDecodeEncodeByteIdentity(t *testing.T) {
	buf := fixture.Bytes()

	p, err := profile.Decode(buf)
	require.NoError(t, err)
	assert.Empty(t, p.Findings)

	out, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, buf, out)
}

func TestEnvelopeFields(t *testing.T) {
	p, err := profile.Decode(fixture.Bytes())
	require.NoError(t, err)

	assert.Equal(t, int32(1), p.Version)
	assert.Equal(t, "PlayerLocalData", p.FileType)
	assert.Equal(t, "PlayerLocalData", p.Name)
	assert.Equal(t, "PlayerController", p.Controller)
	assert.Equal(t, "PersistentLevel", p.GameMode)
	assert.Equal(t, "TheIsland_WP", p.MapName)
	assert.Equal(t, int32(5), p.Reserved2)
	assert.Equal(t, "8d9e3f10-5a4b-4c2d-9e1f-0a1b2c3d4e5f", p.GUID.String())
	assert.Len(t, p.Trailing, 20)
}

func TestUnsupportedVersionRejected(t *testing.T) {
	buf := fixture.Bytes()
	// Version int32 sits after the three header ints.
	corrupted := fixture.PatchByte(buf, 12, 2)

	_, err := profile.Decode(corrupted)
	require.Error(t, err)
	assert.ErrorIs(t, err, profile.ErrEnvelope)
}

func TestTruncatedEnvelope(t *testing.T) {
	_, err := profile.Decode(fixture.Bytes()[:20])
	assert.ErrorIs(t, err, profile.ErrEnvelope)
}

func TestAccessors(t *testing.T) {
	p, err := profile.Decode(fixture.Bytes())
	require.NoError(t, err)

	items := p.ArkItems()
	require.NotNil(t, items)
	require.Len(t, items.Items, 3)
	assert.Equal(t, int64(100), items.Items[1].Children.Get("ItemQuantity").Int)

	dinos := p.TamedDinos()
	require.NotNil(t, dinos)
	assert.Len(t, dinos.Items, 1)

	assert.Equal(t, int64(250), p.ClubArkTokens())

	notes := p.ExplorerNoteUnlocks()
	require.NotNil(t, notes)
	assert.Len(t, notes.Items, 3)

	ach := p.Achievements()
	require.NotNil(t, ach)
	assert.Equal(t, "ACH_FirstBlood", ach.Items[0].Str)

	assert.Nil(t, p.MapMarkers())
	assert.Zero(t, p.SavedFavoritesVersion())
}

func TestClearArkItemsRepairsProfile(t *testing.T) {
	buf := fixture.Bytes()
	p, err := profile.Decode(buf)
	require.NoError(t, err)

	require.True(t, p.ClearArkItems())
	require.True(t, p.ClearTamedDinos())

	out, err := p.Encode()
	require.NoError(t, err)
	assert.Less(t, len(out), len(buf))

	reparsed, err := profile.Decode(out)
	require.NoError(t, err)
	assert.Empty(t, reparsed.ArkItems().Items)
	assert.Empty(t, reparsed.TamedDinos().Items)
	// Untouched siblings survive the repair.
	assert.Equal(t, int64(250), reparsed.ClubArkTokens())
	assert.Equal(t, "TheIsland_WP", reparsed.MapName)
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "PlayerLocalData.arkprofile")
	require.NoError(t, os.WriteFile(src, fixture.Bytes(), 0o644))

	p, err := profile.Load(src)
	require.NoError(t, err)

	dst := filepath.Join(dir, "repaired.arkprofile")
	require.NoError(t, p.Save(dst))

	out, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, fixture.Bytes(), out)
}

func TestVerifyCleanProfile(t *testing.T) {
	rep := profile.Verify(fixture.Bytes())
	assert.True(t, rep.OK())
	assert.Equal(t, 20, rep.TrailerBytes)
	// 5 top-level, 3 inside MyArkData, nested item and dino children.
	assert.Greater(t, rep.PropertiesChecked, 10)
}

func TestVerifyReportsCorruption(t *testing.T) {
	buf := fixture.Bytes()
	off := fixture.FindName(buf, "ClubArkTokens")
	require.GreaterOrEqual(t, off, 0)
	// The size field follows name, type tag, and index.
	sizeOff := off + 18 + 16 + 4
	corrupted := fixture.PatchByte(buf, sizeOff, 2)

	rep := profile.Verify(corrupted)
	assert.False(t, rep.OK())
	require.NotEmpty(t, rep.Findings)

	var found bool
	for _, f := range rep.Findings {
		if f.Kind == property.FindingSizeMismatch && f.Name == "ClubArkTokens" {
			found = true
		}
	}
	assert.True(t, found, "expected a size mismatch finding for ClubArkTokens, got %v", rep.Findings)
}

func TestVerifyShortenedStringSize(t *testing.T) {
	corrupted := fixture.ShortenSize(fixture.Bytes(), "LastPlayedMap", 2)

	rep := profile.Verify(corrupted)
	assert.False(t, rep.OK())

	var found bool
	for _, f := range rep.Findings {
		if f.Kind == property.FindingSizeMismatch && f.Name == "LastPlayedMap" {
			found = true
		}
	}
	assert.True(t, found, "expected a size mismatch finding for LastPlayedMap, got %v", rep.Findings)
}

func TestUnknownTagSurvivesRoundTrip(t *testing.T) {
	buf := fixture.UnknownTag(fixture.Bytes(), "LastPlayedMap")

	p, err := profile.Decode(buf)
	require.NoError(t, err)
	require.NotEmpty(t, p.Findings)
	assert.Equal(t, property.FindingUnknownType, p.Findings[0].Kind)

	n := p.Properties.Get("LastPlayedMap")
	require.NotNil(t, n)
	assert.Equal(t, property.TypeUnknown, n.Type)
	assert.Equal(t, "XtrProperty", n.RawType)

	out, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, buf, out)
}

func TestVerifyTruncatedFile(t *testing.T) {
	buf := fixture.Bytes()
	rep := profile.Verify(fixture.Truncate(buf, 40))
	assert.False(t, rep.OK())
}

func TestJSONDocumentRoundTrip(t *testing.T) {
	buf := fixture.Bytes()
	p, err := profile.Decode(buf)
	require.NoError(t, err)

	doc, err := p.ToJSON("  ")
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"map_name": "TheIsland_WP"`)

	reloaded, err := profile.FromJSON(doc)
	require.NoError(t, err)

	out, err := reloaded.Encode()
	require.NoError(t, err)
	assert.Equal(t, buf, out)
}

func TestYAMLDocumentRoundTrip(t *testing.T) {
	buf := fixture.Bytes()
	p, err := profile.Decode(buf)
	require.NoError(t, err)

	doc, err := p.ToYAML()
	require.NoError(t, err)

	reloaded, err := profile.FromYAML(doc)
	require.NoError(t, err)

	out, err := reloaded.Encode()
	require.NoError(t, err)
	assert.Equal(t, buf, out)
}
