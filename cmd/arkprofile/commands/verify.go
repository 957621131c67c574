package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/ark-tools/arkprofile-go/pkg/profile"
)

// RunVerify checks one container file and prints a report. It returns
// whether the file verified cleanly; IO problems are returned as
// errors instead.
func RunVerify(path string, verbose bool, w io.Writer) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fmt.Fprintf(w, "File: %s (%d bytes)\n", path, len(data))
	rep := profile.Verify(data)
	fmt.Fprintf(w, "  Properties checked: %d\n", rep.PropertiesChecked)
	if rep.TrailerBytes > 0 {
		fmt.Fprintf(w, "  Trailer: %d bytes\n", rep.TrailerBytes)
	}

	if rep.OK() {
		fmt.Fprintln(w, "  OK")
		return true, nil
	}

	fmt.Fprintf(w, "  Findings: %d\n", len(rep.Findings))
	limit := len(rep.Findings)
	if !verbose && limit > 5 {
		limit = 5
	}
	for _, f := range rep.Findings[:limit] {
		fmt.Fprintf(w, "    %s\n", f)
	}
	if limit < len(rep.Findings) {
		fmt.Fprintf(w, "    ... and %d more (use -v to show all)\n", len(rep.Findings)-limit)
	}
	return false, nil
}
