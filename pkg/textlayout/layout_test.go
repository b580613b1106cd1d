package textlayout

import (
	"strings"
	"testing"

	"github.com/dshills/ocrsynth/pkg/config"
)

func TestBreakIntoLinesSingleLineUnchanged(t *testing.T) {
	lines, err := BreakIntoLines("Hello world", 1, config.BreakWord)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "Hello world" {
		t.Fatalf("lines = %v, want [\"Hello world\"]", lines)
	}
}

func TestBreakIntoLinesEmptyText(t *testing.T) {
	lines, err := BreakIntoLines("", 3, config.BreakWord)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "" {
		t.Fatalf("lines = %v, want one empty line", lines)
	}
}

func TestBreakIntoLinesWordModePreservesWords(t *testing.T) {
	lines, err := BreakIntoLines("Hello world testing", 2, config.BreakWord)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	joined := strings.Join(lines, " ")
	for _, w := range []string{"Hello", "world", "testing"} {
		if !strings.Contains(joined, w) {
			t.Fatalf("word %q missing from reassembled lines %v", w, lines)
		}
	}
}

func TestBreakIntoLinesCharacterModeRemainderOnEarlierLines(t *testing.T) {
	lines, err := BreakIntoLines("abcdefg", 3, config.BreakCharacter)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if len(lines[0]) < len(lines[2]) {
		t.Fatalf("expected remainder on earlier lines, got %v", lines)
	}
	if strings.Join(lines, "") != "abcdefg" {
		t.Fatalf("lines do not reassemble to original text: %v", lines)
	}
}

func uniformMetrics(line string) (float64, float64) {
	return float64(len(line)) * 10, 20
}

func TestMultilineDimensionsHorizontal(t *testing.T) {
	lines := []string{"ab", "abcd"}
	w, h := MultilineDimensions(lines, uniformMetrics, 1.2, config.LTR)
	if w != 40 {
		t.Fatalf("width = %v, want 40", w)
	}
	wantH := 20 * (1 + 1.2*1)
	if h != wantH {
		t.Fatalf("height = %v, want %v", h, wantH)
	}
}

func TestLinePositionsRejectsInvalidAlignment(t *testing.T) {
	_, err := LinePositions([]string{"a"}, uniformMetrics, 1.0, config.AlignLeft, config.TTB)
	if err == nil {
		t.Fatal("expected error for left alignment on vertical direction")
	}
}

func TestLinePositionsMatchesMultilineDimensions(t *testing.T) {
	lines := []string{"ab", "abcd"}
	const spacing = 1.2
	_, wantHeight := MultilineDimensions(lines, uniformMetrics, spacing, config.LTR)
	offsets, err := LinePositions(lines, uniformMetrics, spacing, config.AlignLeft, config.LTR)
	if err != nil {
		t.Fatal(err)
	}
	_, lineHeight := uniformMetrics(lines[len(lines)-1])
	lastBottom := offsets[len(offsets)-1].DY + lineHeight
	if lastBottom != wantHeight {
		t.Fatalf("last line bottom = %v, want exactly the surface height %v", lastBottom, wantHeight)
	}
}

func TestLinePositionsCenterAlignment(t *testing.T) {
	lines := []string{"a", "abc"}
	offsets, err := LinePositions(lines, uniformMetrics, 0, config.AlignCenter, config.LTR)
	if err != nil {
		t.Fatal(err)
	}
	if len(offsets) != 2 {
		t.Fatalf("len(offsets) = %d, want 2", len(offsets))
	}
	if offsets[0].DX <= offsets[1].DX {
		t.Fatalf("expected shorter line to be indented more: %v", offsets)
	}
	if offsets[1].DX != 0 {
		t.Fatalf("longest line should have zero indent, got %v", offsets[1].DX)
	}
}
