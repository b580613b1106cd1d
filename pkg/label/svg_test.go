package label

import (
	"bytes"
	"testing"
)

func TestExportDebugSVGContainsRects(t *testing.T) {
	rec := sampleRecord()
	data, err := ExportDebugSVG(rec, DefaultDebugSVGOptions())
	if err != nil {
		t.Fatalf("ExportDebugSVG: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Fatal("output missing <svg element")
	}
	if !bytes.Contains(data, []byte("<rect")) {
		t.Fatal("output missing <rect elements for char boxes")
	}
}

func TestExportDebugSVGSkipsDegenerateBoxes(t *testing.T) {
	rec := sampleRecord()
	rec.CharBoxes = append(rec.CharBoxes, CharacterBox{Char: "x", X0: 5, Y0: 5, X1: 5, Y1: 5})
	data, err := ExportDebugSVG(rec, DefaultDebugSVGOptions())
	if err != nil {
		t.Fatalf("ExportDebugSVG: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Fatal("output missing <svg element")
	}
	// One canvas frame rect plus one rect per non-degenerate box (2).
	if n := bytes.Count(data, []byte("<rect")); n != 3 {
		t.Fatalf("expected 3 <rect elements with the degenerate box skipped, got %d", n)
	}
}
