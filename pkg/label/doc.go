// Package label defines the per-image output record: CharacterBox, the
// augmentation manifest, and GenerationRecord, the complete label written
// alongside each generated image.
//
// GenerationRecord embeds the Plan that produced it plus every value
// resolved during execution (resolved text lines, canvas size, placement,
// bounding boxes). Serialize encodes the record and SaveJSONToFile writes it
// to disk, in the same
// encoding/json + fixed-permissions pattern the teacher's export package
// uses for its own JSON artifacts.
package label
