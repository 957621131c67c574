package commands

import (
	"fmt"
	"os"

	"github.com/ark-tools/arkprofile-go/pkg/profile"
	"github.com/ark-tools/arkprofile-go/pkg/tracelog"
)

// RunExtract decodes an .arkprofile file and writes its text form.
func RunExtract(path, output, format, indent string, logger tracelog.Logger) error {
	c := profile.Codec{Logger: logger, Path: path}
	p, err := c.Load(path)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	for _, f := range p.Findings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", f)
	}

	var out []byte
	switch format {
	case "json":
		out, err = p.ToJSON(indent)
	case "yaml":
		out, err = p.ToYAML()
	default:
		return fmt.Errorf("unknown format: %s (supported: json, yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}

	if output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
