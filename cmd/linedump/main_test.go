package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-tailor/resume/docx"
	"resume-tailor/resume/docx/docxtest"
	"resume-tailor/resume/model"
)

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "resume.docx")
	data := docxtest.Build(t,
		docxtest.Paragraph("Jane Doe")+
			docxtest.Paragraph("Built data pipelines processing millions of events"),
	)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestRunPrintsLines(t *testing.T) {
	in := writeSample(t, t.TempDir())

	var out bytes.Buffer
	if err := run(&out, in, "", "", false, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "   0  Jane Doe\n   1  Built data pipelines processing millions of events\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	if err := run(&out, in, "", "", false, true); err != nil {
		t.Fatalf("run prompt: %v", err)
	}
	if out.String() != " Line 1: Built data pipelines processing millions of events \n" {
		t.Fatalf("unexpected prompt output %q", out.String())
	}
}

func TestRunAppliesEdits(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir)
	editsPath := filepath.Join(dir, "edits.json")
	if err := os.WriteFile(editsPath, []byte(`[{"lineNum":1,"text":"Scaled pipelines to billions of events"},{"lineNum":9,"text":"x"}]`), 0o644); err != nil {
		t.Fatalf("write edits: %v", err)
	}
	outPath := filepath.Join(dir, "out", "preview.docx")

	var out bytes.Buffer
	if err := run(&out, in, editsPath, outPath, false, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "1 applied, 1 ignored") {
		t.Fatalf("missing report: %s", out.String())
	}

	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	parts, err := docx.Extract(written)
	if err != nil {
		t.Fatalf("extract output: %v", err)
	}
	if got := model.Texts(parts); got[0] != "Jane Doe" || got[1] != "Scaled pipelines to billions of events" {
		t.Fatalf("unexpected parts %v", got)
	}
}
