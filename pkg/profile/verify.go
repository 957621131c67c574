package profile

import (
	"errors"
	"fmt"

	"github.com/ark-tools/arkprofile-go/pkg/property"
	"github.com/ark-tools/arkprofile-go/pkg/stream"
)

// Report is the outcome of a non-raising structural check. Findings
// cover both recoverable observations and anything a strict decode
// would have treated as fatal.
type Report struct {
	// PropertiesChecked counts every property the walk reached,
	// including nested and positional ones.
	PropertiesChecked int

	// PropertyEnd is the offset just past the terminating sentinel,
	// when the walk got that far.
	PropertyEnd int

	// TrailerBytes is the length of the trailing section.
	TrailerBytes int

	// Findings lists every structural problem with its offset.
	Findings []property.Finding
}

// OK reports whether the file verified cleanly.
func (r *Report) OK() bool {
	return len(r.Findings) == 0
}

// Verify re-decodes buf and reports every structural problem it can
// find without ever failing. It is the diagnostic counterpart of
// Decode: a clean report means Decode will succeed and the re-encoded
// bytes will match.
func Verify(buf []byte) *Report {
	rep := &Report{}
	r := stream.NewReader(buf)

	var p Profile
	if err := p.decodeEnvelope(r); err != nil {
		rep.add(err)
		return rep
	}

	var dec property.Decoder
	list, findings, err := dec.DecodeReader(r)
	rep.Findings = append(rep.Findings, findings...)
	rep.PropertiesChecked = countNodes(list)
	if err != nil {
		rep.add(err)
		return rep
	}
	rep.PropertyEnd = r.Offset()

	rep.TrailerBytes = r.Remaining()
	if rep.TrailerBytes != 0 && rep.TrailerBytes != trailerLen {
		rep.Findings = append(rep.Findings, property.Finding{
			Kind:   property.FindingSizeMismatch,
			Offset: r.Offset(),
			Detail: fmt.Sprintf("unexpected trailing section of %d bytes (want 0 or %d)", rep.TrailerBytes, trailerLen),
		})
	}
	return rep
}

// add converts a fatal decode error into a finding.
func (r *Report) add(err error) {
	f := property.Finding{Detail: err.Error()}
	switch {
	case errors.Is(err, property.ErrSizeMismatch):
		f.Kind = property.FindingSizeMismatch
		var typed *property.SizeMismatchError
		if errors.As(err, &typed) {
			f.Name = typed.Name
			f.Offset = typed.Offset
		}
	case errors.Is(err, property.ErrTruncated):
		f.Kind = property.FindingTruncated
		var typed *property.TruncatedInputError
		if errors.As(err, &typed) {
			f.Offset = typed.Offset
		}
	case errors.Is(err, ErrEnvelope):
		f.Kind = property.FindingTruncated
		var typed *EnvelopeError
		if errors.As(err, &typed) {
			f.Offset = typed.Offset
		}
	default:
		f.Kind = property.FindingTruncated
	}
	r.Findings = append(r.Findings, f)
}

// countNodes walks a decoded tree counting every property reached.
func countNodes(list property.List) int {
	n := 0
	for _, node := range list {
		n++
		n += countNodes(node.Children)
		for _, item := range node.Items {
			n += countNodes(item.Children)
		}
	}
	return n
}
