package upload

import "reflect"

// NormalizedBatch is a policy together with the posted files that are
// actually present. Build it with Normalize.
type NormalizedBatch struct {
	Policy Policy
	files  []PostedFile
}

// Normalize drops absent entries from files, keeping order. A nil pointer
// wrapped in the interface counts as absent too.
func Normalize(p Policy, files []PostedFile) NormalizedBatch {
	out := make([]PostedFile, 0, len(files))
	for _, f := range files {
		if !absent(f) {
			out = append(out, f)
		}
	}
	return NormalizedBatch{Policy: p, files: out}
}

func absent(f PostedFile) bool {
	if f == nil {
		return true
	}
	v := reflect.ValueOf(f)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Files returns a copy of the normalized file list.
func (nb NormalizedBatch) Files() []PostedFile {
	return append([]PostedFile(nil), nb.files...)
}

func (nb NormalizedBatch) Len() int { return len(nb.files) }
