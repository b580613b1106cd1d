package label

import (
	"bytes"
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"
)

// DebugSVGOptions configures the optional bounding-box overlay export used
// to visually audit a generated label against its image.
type DebugSVGOptions struct {
	StrokeColor string // box outline color, default "red"
	StrokeWidth int    // default 1
	ShowChars   bool   // overlay each box's character above it
}

// DefaultDebugSVGOptions returns sensible defaults for WriteDebugSVG.
func DefaultDebugSVGOptions() DebugSVGOptions {
	return DebugSVGOptions{StrokeColor: "red", StrokeWidth: 1, ShowChars: true}
}

// ExportDebugSVG renders the record's character boxes as an SVG overlay
// sized to the final canvas, one rectangle per CharacterBox plus an
// optional character label above it.
func ExportDebugSVG(r *GenerationRecord, opts DebugSVGOptions) ([]byte, error) {
	if opts.StrokeColor == "" {
		opts.StrokeColor = "red"
	}
	if opts.StrokeWidth <= 0 {
		opts.StrokeWidth = 1
	}

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(r.CanvasWidth, r.CanvasHeight)
	canvas.Rect(0, 0, r.CanvasWidth, r.CanvasHeight, "fill:none")

	style := fmt.Sprintf("stroke:%s;stroke-width:%d;fill:none", opts.StrokeColor, opts.StrokeWidth)
	for _, box := range r.CharBoxes {
		w := box.Width()
		h := box.Height()
		if w <= 0 || h <= 0 {
			continue
		}
		canvas.Rect(int(box.X0), int(box.Y0), int(w), int(h), style)
		if opts.ShowChars && box.Char != "" {
			canvas.Text(int(box.X0), int(box.Y0)-2, box.Char, "font-size:10;fill:"+opts.StrokeColor)
		}
	}

	canvas.End()
	return buf.Bytes(), nil
}

// WriteDebugSVG renders and writes the debug overlay to path with 0644
// permissions.
func WriteDebugSVG(r *GenerationRecord, path string, opts DebugSVGOptions) error {
	data, err := ExportDebugSVG(r, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
