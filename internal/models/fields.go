package models

// Fields is a flat field → value map describing one state of a row.
type Fields map[string]any

// Table returns the nested Fields stored under name. Values decoded from
// jsonb arrive as map[string]any, so both shapes are accepted.
func (f Fields) Table(name string) (Fields, bool) {
	switch v := f[name].(type) {
	case Fields:
		return v, len(v) > 0
	case map[string]any:
		return Fields(v), len(v) > 0
	}
	return nil, false
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Overlay returns a copy of f with every key of patch written over it.
func (f Fields) Overlay(patch Fields) Fields {
	out := f.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}
