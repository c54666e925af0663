package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Process", statusError, "not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Process:", "[ERROR] not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Process", statusOK, "running", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestStatusSectionRender(t *testing.T) {
	section := statusSection{title: "Server"}
	section.add("Channel", statusInfo, "%s", "/tmp/x.sock")
	var buf bytes.Buffer
	section.render(&buf, false)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "== Server ==" || lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("unexpected header %q", lines[:2])
	}
	if !strings.Contains(lines[2], "[INFO] /tmp/x.sock") {
		t.Fatalf("unexpected line %q", lines[2])
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := renderTable([]tableColumn{{Header: "ID", Align: alignRight}, {Header: "Source"}}, [][]string{{"7", "/data/in"}, {"12"}})
	for _, want := range []string{"ID", "Source", "/data/in", "12"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected table to contain %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("expected empty render without columns")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
