package label

import (
	"encoding/json"
	"os"

	"github.com/dshills/ocrsynth/pkg/plan"
)

// AugmentationManifest records which augmentation stages ran for one
// image, one flag per stage. A flag is set when the Plan's sampled
// AugmentParams move that stage off its neutral value; the parameter
// values themselves are not recorded here.
type AugmentationManifest struct {
	Rotation    bool `json:"rotation"`
	Perspective bool `json:"perspective"`
	Elastic     bool `json:"elastic"`
	Grid        bool `json:"grid"`
	Optical     bool `json:"optical"`
}

// GenerationRecord is the complete label written alongside each generated
// image: the Plan that produced it plus every value resolved during
// execution.
type GenerationRecord struct {
	*plan.Plan

	ResolvedLines []string `json:"resolved_lines"`

	CanvasWidth  int `json:"canvas_width"`
	CanvasHeight int `json:"canvas_height"`

	TextSurfaceX float64 `json:"text_surface_x"`
	TextSurfaceY float64 `json:"text_surface_y"`

	CharBoxes []CharacterBox `json:"char_boxes"`

	AppliedAugmentations AugmentationManifest `json:"applied_augmentations"`

	OutputImagePath string `json:"output_image_path"`
}

// Serialize renders the record as indented JSON, matching the teacher's
// export encoding (2-space indent) so label files stay diffable.
func (r *GenerationRecord) Serialize() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// SaveJSONToFile writes the record's JSON encoding to path with 0644
// permissions.
func (r *GenerationRecord) SaveJSONToFile(path string) error {
	data, err := r.Serialize()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadGenerationRecord reads back a record written by SaveJSONToFile, used
// by the CLI's debug-overlay pass to re-render char boxes without holding
// every record in memory across a whole run.
func LoadGenerationRecord(path string) (*GenerationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r GenerationRecord
	r.Plan = &plan.Plan{}
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
