package layout

import "time"

// StalenessMarker is the cell drawn for each full minute since the last
// successful fetch. Underscores read as a bar growing along the row while
// staying legible at the smallest row height.
const StalenessMarker = '_'

// EncodeStaleness overlays one marker cell per full minute of age onto the
// row, growing from the left and clamped to the row width. Zero age returns
// the row unchanged. The result always keeps the fixed row width, and the
// same age always produces the same output.
func (f *Formatter) EncodeStaleness(row string, age time.Duration) string {
	bars := int(age / time.Minute)
	if bars <= 0 {
		return row
	}
	if bars > f.chars {
		bars = f.chars
	}

	out := []rune(row)
	for len(out) < f.chars {
		out = append(out, ' ')
	}
	for i := 0; i < bars; i++ {
		out[i] = StalenessMarker
	}
	return string(out)
}
