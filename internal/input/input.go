// Package input reads the ordered target list the scanner consumes.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// Read parses targets from r, one per line. Blank lines and lines
// starting with '#' are dropped; every other line is normalized and
// validated, and invalid entries are skipped silently.
func Read(r io.Reader) ([]types.Target, error) {
	var targets []types.Target

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t := types.NormalizeTarget(line)
		if t.Valid() {
			targets = append(targets, t)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading targets: %w", err)
	}

	return targets, nil
}

// ReadFile reads targets from path. An unreadable file is a
// configuration fault and aborts the run.
func ReadFile(path string) ([]types.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening target file: %w", err)
	}
	defer f.Close()
	return Read(f)
}
