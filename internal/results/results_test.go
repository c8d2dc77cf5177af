package results

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xcthulhu/roland-mc/internal/estimator"
	"github.com/xcthulhu/roland-mc/internal/fsutil"
)

func TestFormatRow(t *testing.T) {
	tests := []struct {
		radius, ratio float64
		want          string
	}{
		{0, 1, "0\t1.000000\n"},
		{0.01, 0.5, "0.01\t0.500000\n"},
		{0.03, 0.123456789, "0.03\t0.123457\n"},
		{99.99, 0, "99.99\t0.000000\n"},
		{100, 0.25, "100\t0.250000\n"},
		{0.00001, 1, "1e-05\t1.000000\n"},
		{1234567, 0, "1.23457e+06\t0.000000\n"},
	}
	for _, tc := range tests {
		if got := FormatRow(tc.radius, tc.ratio); got != tc.want {
			t.Errorf("FormatRow(%v, %v) = %q, want %q", tc.radius, tc.ratio, got, tc.want)
		}
	}
}

func TestTSVSink_SyncsEveryRow(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	sink, err := NewTSVSink(mfs, "/gammamc.tsv")
	if err != nil {
		t.Fatalf("NewTSVSink: %v", err)
	}
	if sink.Path() != "/gammamc.tsv" {
		t.Errorf("Path() = %q", sink.Path())
	}

	if err := sink.Write(estimator.Result{Radius: 0, Ratio: 1}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	data, err := mfs.ReadFile("/gammamc.tsv")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "0\t1.000000\n" {
		t.Errorf("first row must be durable before the second write, got %q", data)
	}
	if n := mfs.SyncCount("/gammamc.tsv"); n != 1 {
		t.Errorf("SyncCount = %d after one row, want 1", n)
	}

	if err := sink.Write(estimator.Result{Radius: 0.01, Ratio: 0.987}); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if n := mfs.SyncCount("/gammamc.tsv"); n != 2 {
		t.Errorf("SyncCount = %d after two rows, want 2", n)
	}
	if sink.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", sink.Rows())
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err = mfs.ReadFile("/gammamc.tsv")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if want := "0\t1.000000\n0.01\t0.987000\n"; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestNewTSVSink_MissingDir(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	_, err := NewTSVSink(mfs, "missing/out.tsv")
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if !strings.Contains(err.Error(), "missing/out.tsv") {
		t.Errorf("error %q should name the path", err)
	}
}

func TestReadTSV(t *testing.T) {
	input := "0\t1.000000\n0.01\t0.987000\n\n1e-05\t0.5\n"
	rows, err := ReadTSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTSV: %v", err)
	}

	want := []Row{
		{Radius: 0, Ratio: 1},
		{Radius: 0.01, Ratio: 0.987},
		{Radius: 0.00001, Ratio: 0.5},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("ReadTSV mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"one column", "0.5\n", "expected 2"},
		{"three columns", "0\t1\t2\n", "expected 2"},
		{"bad radius", "abc\t0.1\n", "invalid radius"},
		{"bad ratio", "0.1\tx\n", "invalid ratio"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadTSV(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) || !strings.Contains(err.Error(), "line 1") {
				t.Errorf("error %q should mention %q on line 1", err, tc.want)
			}
		})
	}
}

func TestReadTSVFile_RoundTrip(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	sink, err := NewTSVSink(mfs, "/t.tsv")
	if err != nil {
		t.Fatalf("NewTSVSink: %v", err)
	}
	for _, r := range []estimator.Result{{Radius: 0, Ratio: 1}, {Radius: 2.5, Ratio: 0.3125}} {
		if err := sink.Write(r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows, err := ReadTSVFile(mfs, "/t.tsv")
	if err != nil {
		t.Fatalf("ReadTSVFile: %v", err)
	}
	if diff := cmp.Diff([]Row{{Radius: 0, Ratio: 1}, {Radius: 2.5, Ratio: 0.3125}}, rows); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := ReadTSVFile(mfs, "/absent.tsv"); err == nil {
		t.Error("expected error for absent file")
	}
}

type failingSink struct {
	writeErr, closeErr error
	writes             int
	closed             bool
}

func (f *failingSink) Write(estimator.Result) error {
	f.writes++
	return f.writeErr
}

func (f *failingSink) Close() error {
	f.closed = true
	return f.closeErr
}

func TestMultiSink(t *testing.T) {
	collector := NewCollector()
	ok := &failingSink{}
	m := NewMultiSink(collector, nil, ok)

	if err := m.Write(estimator.Result{Radius: 1, Ratio: 0.5}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if ok.writes != 1 {
		t.Errorf("writes = %d, want 1", ok.writes)
	}
	if diff := cmp.Diff([]Row{{Radius: 1, Ratio: 0.5}}, collector.Rows()); diff != "" {
		t.Errorf("collector mismatch (-want +got):\n%s", diff)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ok.closed {
		t.Error("downstream sink was not closed")
	}
}

func TestMultiSink_Errors(t *testing.T) {
	errWrite := errors.New("disk full")
	errClose := errors.New("close failed")
	bad := &failingSink{writeErr: errWrite, closeErr: errClose}
	after := &failingSink{closeErr: errors.New("second close failed")}
	m := NewMultiSink(bad, after)

	if err := m.Write(estimator.Result{}); !errors.Is(err, errWrite) {
		t.Errorf("Write error = %v, want %v", err, errWrite)
	}
	if after.writes != 0 {
		t.Errorf("sinks after a failure should not be written, got %d writes", after.writes)
	}

	err := m.Close()
	if !errors.Is(err, errClose) {
		t.Errorf("Close error = %v, want %v", err, errClose)
	}
	if err == nil || !strings.Contains(err.Error(), "second close failed") {
		t.Errorf("Close error %v should include every failure", err)
	}
	if !after.closed {
		t.Error("every sink should be closed")
	}
}

func TestCollector_RowsIsCopy(t *testing.T) {
	c := NewCollector()
	if err := c.Write(estimator.Result{Radius: 1, Ratio: 0.1}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rows := c.Rows()
	rows[0].Ratio = 99
	if got := c.Rows()[0].Ratio; got != 0.1 {
		t.Errorf("Rows() returned shared storage: ratio now %g", got)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
