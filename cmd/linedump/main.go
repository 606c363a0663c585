package main

// Print the line model of a resume, optionally applying edits:
//   go run ./cmd/linedump -in resume.docx
//   go run ./cmd/linedump -in resume.docx -edits edits.json -out preview.docx

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resume-tailor/internal/recommendations"
	"resume-tailor/resume/docx"
	"resume-tailor/resume/model"
)

func main() {
	inPath := flag.String("in", "", "path to the .docx resume")
	editsPath := flag.String("edits", "", "optional JSON file with [{\"lineNum\":n,\"text\":\"...\"}]")
	outPath := flag.String("out", "./out/preview.docx", "output path when -edits is set")
	asJSON := flag.Bool("json", false, "print the line model as JSON")
	promptOnly := flag.Bool("prompt", false, "print only the lines sent to the model")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "-in is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(os.Stdout, *inPath, *editsPath, *outPath, *asJSON, *promptOnly); err != nil {
		fmt.Fprintf(os.Stderr, "linedump: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, inPath, editsPath, outPath string, asJSON, promptOnly bool) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	parts, err := docx.Extract(data)
	if err != nil {
		return err
	}

	if err := printParts(w, parts, asJSON, promptOnly); err != nil {
		return err
	}
	if editsPath == "" {
		return nil
	}

	edits, err := readEdits(editsPath)
	if err != nil {
		return err
	}
	out, report, err := docx.Apply(data, edits)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s: %d applied, %d ignored\n", outPath, report.Applied, report.Ignored)
	return nil
}

func printParts(w io.Writer, parts []model.ResumePart, asJSON, promptOnly bool) error {
	switch {
	case promptOnly:
		_, err := io.WriteString(w, recommendations.ResumeText(parts))
		return err
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(parts)
	default:
		for _, p := range parts {
			if _, err := fmt.Fprintf(w, "%4d  %s\n", p.LineNumber, p.Text); err != nil {
				return err
			}
		}
		return nil
	}
}

func readEdits(path string) ([]model.Edit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var edits []model.Edit
	if err := json.Unmarshal(raw, &edits); err != nil {
		return nil, fmt.Errorf("parse edits: %w", err)
	}
	return edits, nil
}
