package profile

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ark-tools/arkprofile-go/pkg/property"
)

// headerDoc is the envelope in text form. Reserved fields are carried
// so corrupted-but-loadable files still round-trip.
type headerDoc struct {
	HeaderV1   int32  `json:"header_v1" yaml:"header_v1"`
	HeaderV2   int32  `json:"header_v2" yaml:"header_v2"`
	HeaderV3   int32  `json:"header_v3" yaml:"header_v3"`
	Version    int32  `json:"version" yaml:"version"`
	GUID       string `json:"guid" yaml:"guid"`
	FileType   string `json:"file_type" yaml:"file_type"`
	Reserved1  int32  `json:"reserved1" yaml:"reserved1"`
	Reserved2  int32  `json:"reserved2" yaml:"reserved2"`
	Name       string `json:"name" yaml:"name"`
	Controller string `json:"controller" yaml:"controller"`
	GameMode   string `json:"game_mode" yaml:"game_mode"`
	MapName    string `json:"map_name" yaml:"map_name"`
	MapPath    string `json:"map_path" yaml:"map_path"`
	ZeroPad    string `json:"zero_pad,omitempty" yaml:"zero_pad,omitempty"`
	HeaderSize int32  `json:"header_size" yaml:"header_size"`
	Reserved3  int32  `json:"reserved3" yaml:"reserved3"`
	Separator  uint8  `json:"separator,omitempty" yaml:"separator,omitempty"`
}

func (p *Profile) headerDoc() headerDoc {
	h := headerDoc{
		HeaderV1:   p.HeaderV1,
		HeaderV2:   p.HeaderV2,
		HeaderV3:   p.HeaderV3,
		Version:    p.Version,
		GUID:       hex.EncodeToString(p.GUID[:]),
		FileType:   p.FileType,
		Reserved1:  p.Reserved1,
		Reserved2:  p.Reserved2,
		Name:       p.Name,
		Controller: p.Controller,
		GameMode:   p.GameMode,
		MapName:    p.MapName,
		MapPath:    p.MapPath,
		HeaderSize: p.HeaderSize,
		Reserved3:  p.Reserved3,
		Separator:  p.Separator,
	}
	if p.ZeroPad != [12]byte{} {
		h.ZeroPad = hex.EncodeToString(p.ZeroPad[:])
	}
	return h
}

func (p *Profile) applyHeaderDoc(h headerDoc) error {
	p.HeaderV1 = h.HeaderV1
	p.HeaderV2 = h.HeaderV2
	p.HeaderV3 = h.HeaderV3
	p.Version = h.Version
	p.FileType = h.FileType
	p.Reserved1 = h.Reserved1
	p.Reserved2 = h.Reserved2
	p.Name = h.Name
	p.Controller = h.Controller
	p.GameMode = h.GameMode
	p.MapName = h.MapName
	p.MapPath = h.MapPath
	p.HeaderSize = h.HeaderSize
	p.Reserved3 = h.Reserved3
	p.Separator = h.Separator

	if h.GUID != "" {
		raw, err := hex.DecodeString(h.GUID)
		if err != nil || len(raw) != 16 {
			return fmt.Errorf("invalid guid %q", h.GUID)
		}
		g, err := uuid.FromBytes(raw)
		if err != nil {
			return fmt.Errorf("invalid guid %q: %w", h.GUID, err)
		}
		p.GUID = g
	}
	if h.ZeroPad != "" {
		raw, err := hex.DecodeString(h.ZeroPad)
		if err != nil || len(raw) != 12 {
			return fmt.Errorf("invalid zero_pad %q", h.ZeroPad)
		}
		copy(p.ZeroPad[:], raw)
	}
	return nil
}

type jsonDocument struct {
	Header     headerDoc       `json:"header"`
	Properties json.RawMessage `json:"properties"`
	Trailer    string          `json:"trailer,omitempty"`
}

// ToJSON renders the whole container as a lossless JSON document.
func (p *Profile) ToJSON(indent string) ([]byte, error) {
	props, err := property.ToJSON(p.Properties, indent)
	if err != nil {
		return nil, err
	}
	doc := jsonDocument{
		Header:     p.headerDoc(),
		Properties: props,
		Trailer:    hex.EncodeToString(p.Trailing),
	}
	if indent == "" {
		return json.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", indent)
}

// FromJSON rebuilds a container from its JSON document form.
func FromJSON(data []byte) (*Profile, error) {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing profile JSON: %w", err)
	}
	p := &Profile{}
	if err := p.applyHeaderDoc(doc.Header); err != nil {
		return nil, err
	}
	if doc.Properties != nil {
		props, err := property.FromJSON(doc.Properties)
		if err != nil {
			return nil, err
		}
		p.Properties = props
	}
	if doc.Trailer != "" {
		trailing, err := hex.DecodeString(doc.Trailer)
		if err != nil {
			return nil, fmt.Errorf("invalid trailer hex: %w", err)
		}
		p.Trailing = trailing
	}
	return p, nil
}

type yamlDocument struct {
	Header     headerDoc `yaml:"header"`
	Properties yaml.Node `yaml:"properties"`
	Trailer    string    `yaml:"trailer,omitempty"`
}

// ToYAML renders the whole container as a lossless YAML document.
func (p *Profile) ToYAML() ([]byte, error) {
	props, err := property.ToYAML(p.Properties)
	if err != nil {
		return nil, err
	}
	var propNode yaml.Node
	if err := yaml.Unmarshal(props, &propNode); err != nil {
		return nil, err
	}
	doc := yamlDocument{
		Header:  p.headerDoc(),
		Trailer: hex.EncodeToString(p.Trailing),
	}
	if len(propNode.Content) > 0 {
		doc.Properties = *propNode.Content[0]
	} else {
		doc.Properties = yaml.Node{Kind: yaml.SequenceNode}
	}
	return yaml.Marshal(doc)
}

// FromYAML rebuilds a container from its YAML document form.
func FromYAML(data []byte) (*Profile, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing profile YAML: %w", err)
	}
	p := &Profile{}
	if err := p.applyHeaderDoc(doc.Header); err != nil {
		return nil, err
	}
	if doc.Properties.Kind != 0 {
		props, err := yaml.Marshal(&doc.Properties)
		if err != nil {
			return nil, err
		}
		list, err := property.FromYAML(props)
		if err != nil {
			return nil, err
		}
		p.Properties = list
	}
	if doc.Trailer != "" {
		trailing, err := hex.DecodeString(doc.Trailer)
		if err != nil {
			return nil, fmt.Errorf("invalid trailer hex: %w", err)
		}
		p.Trailing = trailing
	}
	return p, nil
}
