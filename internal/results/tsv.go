package results

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xcthulhu/roland-mc/internal/estimator"
	"github.com/xcthulhu/roland-mc/internal/fsutil"
)

// FormatRow renders one table line: the radius with six significant digits
// in shortest form, a tab, the ratio with six decimals, and a newline.
func FormatRow(radius, ratio float64) string {
	return fmt.Sprintf("%.6g\t%f\n", radius, ratio)
}

// TSVSink writes the result table to a file, flushing and syncing after
// every row so a crash loses at most the row being written.
type TSVSink struct {
	path string
	file fsutil.File
	w    *bufio.Writer
	rows int
}

// NewTSVSink creates (or truncates) path on fsys.
func NewTSVSink(fsys fsutil.FileSystem, path string) (*TSVSink, error) {
	f, err := fsys.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create result table %s: %w", path, err)
	}
	return &TSVSink{path: path, file: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the file the sink writes to.
func (s *TSVSink) Path() string { return s.path }

// Rows returns the number of rows written so far.
func (s *TSVSink) Rows() int { return s.rows }

func (s *TSVSink) Write(res estimator.Result) error {
	if _, err := s.w.WriteString(FormatRow(res.Radius, res.Ratio)); err != nil {
		return fmt.Errorf("failed to write row for radius %g: %w", res.Radius, err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", s.path, err)
	}
	s.rows++
	return nil
}

func (s *TSVSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("failed to flush %s: %w", s.path, err)
	}
	return s.file.Close()
}

// ReadTSV parses a result table. Blank lines are skipped.
func ReadTSV(r io.Reader) ([]Row, error) {
	var rows []Row
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		parts := strings.Split(text, "\t")
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: expected 2 tab-separated columns, got %d", line, len(parts))
		}
		radius, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid radius %q: %w", line, parts[0], err)
		}
		ratio, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid ratio %q: %w", line, parts[1], err)
		}
		rows = append(rows, Row{Radius: radius, Ratio: ratio})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read result table: %w", err)
	}
	return rows, nil
}

// ReadTSVFile opens path on fsys and parses it with ReadTSV.
func ReadTSVFile(fsys fsutil.FileSystem, path string) ([]Row, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result table: %w", err)
	}
	defer f.Close()
	return ReadTSV(f)
}
