package types

// Fields is a flat mapping of field name to value produced by one
// analysis module for one target. Values are strings, numbers, bools,
// or nested structures destined for JSON-compatible output.
type Fields map[string]any

// Merge copies every key from other into f. On collision the incoming
// value wins, so when modules are merged in enable order the later
// module's value survives. This is the documented union rule for
// building a ScanRecord out of module results.
func (f Fields) Merge(other Fields) {
	for k, v := range other {
		f[k] = v
	}
}

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
