package monitoring

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// A nil logger is a no-op and must not reach the previous logger.
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestSetOutput(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var buf bytes.Buffer
	SetOutput(&buf, "gammamc: ")
	Logf("radius %g ratio %f", 0.5, 0.25)

	out := buf.String()
	if !strings.HasPrefix(out, "gammamc: ") {
		t.Errorf("expected prefix, got %q", out)
	}
	if !strings.Contains(out, "radius 0.5 ratio 0.250000") {
		t.Errorf("expected formatted message, got %q", out)
	}

	buf.Reset()
	SetOutput(nil, "")
	Logf("muted")
	if buf.Len() != 0 {
		t.Errorf("expected no output after muting, got %q", buf.String())
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}
