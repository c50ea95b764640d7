package diagnostics

import (
	"bytes"
	"errors"
	"testing"
)

func TestPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Pass("users.yaml")
	r.Fail("orders.yaml", errors.New("Expected value of type `int`, got `str`"))
	r.Shape("payload.json", "dict[str,int]")
	r.Summary(3, 1)

	want := "ok   users.yaml\n" +
		"FAIL orders.yaml: Expected value of type `int`, got `str`\n" +
		"payload.json: dict[str,int]\n" +
		"3 checked, 1 failed\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestBufferedWriterDisablesColor(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Pass("x")
	if bytes.Contains(buf.Bytes(), []byte("\x1b[")) {
		t.Errorf("non-terminal output contains escape codes: %q", buf.String())
	}
}

func TestForcedColor(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, WithColor(true))

	r.Pass("users.yaml")
	r.Summary(1, 0)

	want := "\x1b[32mok\x1b[0m   users.yaml\n" +
		"\x1b[32m1 checked, all ok\x1b[0m\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestFailSummaryIsRed(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, WithColor(true))

	r.Fail("db", errors.New("boom"))
	r.Summary(2, 1)

	want := "\x1b[31mFAIL\x1b[0m db: boom\n" +
		"\x1b[31m2 checked, 1 failed\x1b[0m\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
