// Package reader loads script and macro files as slices of lines for the
// entrypoint and the :load command. Files are small hand-written macro sets;
// slurping them whole is fine.
package reader

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const bom = "\uFEFF" // byte order mark, only permitted as very first character

// ReadLines reads a file into a slice of strings, one per line.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadLinesToStrings(f), nil
}

// ReadLinesToStrings converts input into separate lines, stripping a
// leading BOM if present.
func ReadLinesToStrings(r io.Reader) []string {
	var lines []string

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, bom)
		}
		lines = append(lines, line)
	}

	return lines
}
