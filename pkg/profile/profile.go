package profile

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ark-tools/arkprofile-go/pkg/property"
	"github.com/ark-tools/arkprofile-go/pkg/stream"
	"github.com/ark-tools/arkprofile-go/pkg/tracelog"
)

// ErrEnvelope indicates a malformed container envelope.
var ErrEnvelope = errors.New("malformed container envelope")

// EnvelopeError reports what was wrong with the envelope and where.
type EnvelopeError struct {
	Offset int
	Detail string
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("envelope at offset %d: %s", e.Offset, e.Detail)
}

// Unwrap returns the category sentinel.
func (e *EnvelopeError) Unwrap() error { return ErrEnvelope }

// supportedVersion is the only container version observed in the wild.
const supportedVersion = 1

// trailerLen is the usual trailing section: one int32 plus a GUID.
const trailerLen = 20

// Profile is a decoded PlayerLocalData container. Every envelope field
// is kept verbatim, including the reserved values that carry fixed
// constants in healthy files, so Encode reproduces the source bytes.
type Profile struct {
	HeaderV1 int32
	HeaderV2 int32
	HeaderV3 int32
	Version  int32
	GUID     uuid.UUID
	FileType string

	// Reserved1 and Reserved2 sit between the file type and the name
	// block (observed 0 and 5).
	Reserved1 int32
	Reserved2 int32

	Name       string
	Controller string
	GameMode   string
	MapName    string
	MapPath    string

	// ZeroPad is the 12-byte block after the map path (observed all
	// zero). Reserved3 follows the header size (observed 0) and
	// Separator is the single byte before the property section.
	ZeroPad    [12]byte
	HeaderSize int32
	Reserved3  int32
	Separator  byte

	Properties property.List

	// Trailing is everything after the property terminator, usually an
	// int32 and a GUID.
	Trailing []byte

	// Findings collects recoverable observations from the last decode.
	Findings []property.Finding
}

// New returns a profile with the constant envelope fields set to their
// observed values.
func New() *Profile {
	return &Profile{
		Version:   supportedVersion,
		Reserved2: 5,
		GameMode:  "PersistentLevel",
	}
}

// Codec decodes and encodes profiles with optional tracing.
type Codec struct {
	// Logger receives trace events. Nil disables tracing.
	Logger tracelog.Logger

	// Path names the container in trace events.
	Path string
}

// Decode parses a complete container from buf.
func Decode(buf []byte) (*Profile, error) {
	var c Codec
	return c.Decode(buf)
}

// Load reads and decodes a container file.
func Load(path string) (*Profile, error) {
	c := Codec{Path: path}
	return c.Load(path)
}

// Load reads and decodes a container file.
func (c *Codec) Load(path string) (*Profile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return c.Decode(buf)
}

// Decode parses a complete container from buf.
func (c *Codec) Decode(buf []byte) (*Profile, error) {
	r := stream.NewReader(buf)
	p := &Profile{}
	if err := p.decodeEnvelope(r); err != nil {
		return nil, err
	}

	if c.Logger != nil {
		c.Logger.Log(tracelog.Event{
			Timestamp: time.Now(),
			SessionID: uuid.NewString(),
			Path:      c.Path,
			Direction: tracelog.DirectionDecode,
			Category:  tracelog.CategoryHeader,
			Header: &tracelog.HeaderEvent{
				Version:       p.Version,
				Name:          p.Name,
				MapName:       p.MapName,
				PropertyStart: r.Offset(),
			},
		})
	}

	dec := property.Decoder{Logger: c.Logger, Path: c.Path}
	props, findings, err := dec.DecodeReader(r)
	if err != nil {
		return nil, err
	}
	p.Properties = props
	p.Findings = findings

	if r.Remaining() > 0 {
		trailing, err := r.ReadBytes(r.Remaining())
		if err != nil {
			return nil, err
		}
		p.Trailing = trailing
	}
	return p, nil
}

func (p *Profile) decodeEnvelope(r *stream.Reader) error {
	fail := func(detail string) error {
		return &EnvelopeError{Offset: r.Offset(), Detail: detail}
	}

	var err error
	if p.HeaderV1, err = r.ReadInt32(); err != nil {
		return fail("file too short for header")
	}
	if p.HeaderV2, err = r.ReadInt32(); err != nil {
		return fail("file too short for header")
	}
	if p.HeaderV3, err = r.ReadInt32(); err != nil {
		return fail("file too short for header")
	}
	if p.Version, err = r.ReadInt32(); err != nil {
		return fail("file too short for header")
	}
	if p.Version != supportedVersion {
		return fail(fmt.Sprintf("unsupported container version %d", p.Version))
	}

	guid, err := r.ReadBytes(16)
	if err != nil {
		return fail("file too short for GUID")
	}
	copy(p.GUID[:], guid)

	if p.FileType, err = r.ReadString(); err != nil {
		return fail("unreadable file type string")
	}
	if p.Reserved1, err = r.ReadInt32(); err != nil {
		return fail("file too short for reserved fields")
	}
	if p.Reserved2, err = r.ReadInt32(); err != nil {
		return fail("file too short for reserved fields")
	}

	for _, dst := range []*string{&p.Name, &p.Controller, &p.GameMode, &p.MapName, &p.MapPath} {
		if *dst, err = r.ReadString(); err != nil {
			return fail("unreadable envelope string")
		}
	}

	pad, err := r.ReadBytes(12)
	if err != nil {
		return fail("file too short for padding block")
	}
	copy(p.ZeroPad[:], pad)

	if p.HeaderSize, err = r.ReadInt32(); err != nil {
		return fail("file too short for header size")
	}
	if p.Reserved3, err = r.ReadInt32(); err != nil {
		return fail("file too short for reserved fields")
	}
	if p.Separator, err = r.ReadUint8(); err != nil {
		return fail("file too short for separator byte")
	}
	return nil
}

// Encode serializes the container back to bytes. A profile decoded
// from valid input re-encodes byte-identically.
func (p *Profile) Encode() ([]byte, error) {
	var c Codec
	return c.Encode(p)
}

// Save encodes the container and writes it to path.
func (p *Profile) Save(path string) error {
	c := Codec{Path: path}
	return c.Save(p, path)
}

// Encode serializes the container back to bytes.
func (c *Codec) Encode(p *Profile) ([]byte, error) {
	w := stream.NewWriter()
	w.WriteInt32(p.HeaderV1)
	w.WriteInt32(p.HeaderV2)
	w.WriteInt32(p.HeaderV3)
	w.WriteInt32(p.Version)
	w.WriteBytes(p.GUID[:])
	w.WriteString(p.FileType)
	w.WriteInt32(p.Reserved1)
	w.WriteInt32(p.Reserved2)
	w.WriteString(p.Name)
	w.WriteString(p.Controller)
	w.WriteString(p.GameMode)
	w.WriteString(p.MapName)
	w.WriteString(p.MapPath)
	w.WriteBytes(p.ZeroPad[:])
	w.WriteInt32(p.HeaderSize)
	w.WriteInt32(p.Reserved3)
	w.WriteUint8(p.Separator)

	if c.Logger != nil {
		c.Logger.Log(tracelog.Event{
			Timestamp: time.Now(),
			SessionID: uuid.NewString(),
			Path:      c.Path,
			Direction: tracelog.DirectionEncode,
			Category:  tracelog.CategoryHeader,
			Header: &tracelog.HeaderEvent{
				Version:       p.Version,
				Name:          p.Name,
				MapName:       p.MapName,
				PropertyStart: w.Len(),
			},
		})
	}

	enc := property.Encoder{Logger: c.Logger, Path: c.Path}
	if err := enc.EncodeWriter(w, p.Properties); err != nil {
		return nil, err
	}
	w.WriteBytes(p.Trailing)
	return w.Bytes(), nil
}

// Save encodes the container and writes it to path.
func (c *Codec) Save(p *Profile, path string) error {
	buf, err := c.Encode(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}

// --- convenience accessors ----------------------------------------------

// ArkData returns the children of the top-level MyArkData struct, or
// nil when absent. This struct holds the ark tribute inventory that
// grows without bound and corrupts profiles.
func (p *Profile) ArkData() property.List {
	if n := p.Properties.Get("MyArkData"); n != nil {
		return n.Struct()
	}
	return nil
}

// ArkItems returns the ark tribute item array inside MyArkData.
func (p *Profile) ArkItems() *property.Node {
	return p.ArkData().Get("ArkItems")
}

// TamedDinos returns the uploaded dino array inside MyArkData.
func (p *Profile) TamedDinos() *property.Node {
	return p.ArkData().Get("ArkTamedDinosData")
}

// CustomCloudData returns the custom cloud data array inside MyArkData.
func (p *Profile) CustomCloudData() *property.Node {
	return p.ArkData().Get("CustomCloudDatas")
}

// PersistentItemUnlocks returns the persistent item unlock array
// inside MyArkData.
func (p *Profile) PersistentItemUnlocks() *property.Node {
	return p.ArkData().Get("PersistentItemUnlocks")
}

// ClubArkTokens returns the stored token count, or 0 when absent.
func (p *Profile) ClubArkTokens() int64 {
	if n := p.ArkData().Get("ClubArkTokens"); n != nil {
		return n.Int
	}
	return 0
}

// Achievements returns the unlocked achievement array.
func (p *Profile) Achievements() *property.Node {
	return p.Properties.Get("UnlockedAchievements")
}

// AchievementItems returns the collected achievement item array.
func (p *Profile) AchievementItems() *property.Node {
	return p.Properties.Get("AchievementItemsCollectedList")
}

// ExplorerNoteUnlocks returns the global explorer note unlock array.
func (p *Profile) ExplorerNoteUnlocks() *property.Node {
	return p.Properties.Get("GlobalExplorerNoteUnlocks")
}

// NamedExplorerNoteUnlocks returns the named explorer note unlock array.
func (p *Profile) NamedExplorerNoteUnlocks() *property.Node {
	return p.Properties.Get("GlobalNamedExplorerNoteUnlocks")
}

// TamedDinoTags returns the tamed dino tag array.
func (p *Profile) TamedDinoTags() *property.Node {
	return p.Properties.Get("TamedDinoTags")
}

// FogOfWars returns the per-map fog of war array.
func (p *Profile) FogOfWars() *property.Node {
	return p.Properties.Get("PerMapFogOfWars")
}

// MapMarkers returns the per-map marker array.
func (p *Profile) MapMarkers() *property.Node {
	return p.Properties.Get("MapMarkersPerMaps")
}

// SavedFavoritesVersion returns the stored favorites version, or 0.
func (p *Profile) SavedFavoritesVersion() int64 {
	if n := p.Properties.Get("SavedFavoritesVersion"); n != nil {
		return n.Int
	}
	return 0
}

// ClearArkItems empties the ark tribute item array, the usual fix for
// profiles the game refuses to load. Reports whether the array existed.
func (p *Profile) ClearArkItems() bool {
	return clearNode(p.ArkItems())
}

// ClearTamedDinos empties the uploaded dino array. Reports whether the
// array existed.
func (p *Profile) ClearTamedDinos() bool {
	return clearNode(p.TamedDinos())
}

func clearNode(n *property.Node) bool {
	if n == nil {
		return false
	}
	n.ClearItems()
	return true
}
