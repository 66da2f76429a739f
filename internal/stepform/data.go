package stepform

import "maps"

// Data is the form-data bag shared by every step.
type Data map[string]any

// Clone returns a shallow copy. Nil clones to an empty, non-nil map.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	maps.Copy(out, d)
	return out
}

// Merge writes every key of patch into d. Keys absent from patch are untouched.
// Nested maps are replaced, not merged.
func (d Data) Merge(patch Data) {
	maps.Copy(d, patch)
}

// String returns the value at key if it is a string.
func (d Data) String(key string) string {
	s, _ := d[key].(string)
	return s
}
