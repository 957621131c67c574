package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ark-tools/arkprofile-go/pkg/profile"
	"github.com/ark-tools/arkprofile-go/pkg/tracelog"
)

// RunBuild rebuilds an .arkprofile binary from its JSON or YAML text
// form. The input format is sniffed from the file extension.
func RunBuild(path, output string, logger tracelog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var p *profile.Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		p, err = profile.FromJSON(data)
	case ".yaml", ".yml":
		p, err = profile.FromYAML(data)
	default:
		return fmt.Errorf("cannot determine input format of %s (want .json, .yaml, or .yml)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if output == "" {
		base := strings.TrimSuffix(path, filepath.Ext(path))
		output = base + ".arkprofile"
	}

	c := profile.Codec{Logger: logger, Path: output}
	if err := c.Save(p, output); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}
