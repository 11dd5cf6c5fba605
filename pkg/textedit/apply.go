package textedit

import "bytes"

// Apply applies edits prepared by Prepare to text and returns the result.
// text is never modified.
func Apply(text []byte, edits []TextEdit) []byte {
	if len(edits) == 0 {
		return bytes.Clone(text)
	}

	delta := 0
	for _, e := range edits {
		delta += e.Delta()
	}

	var out bytes.Buffer
	out.Grow(len(text) + delta)

	cursor := 0
	for _, e := range edits {
		out.Write(text[cursor:e.StartOffset])
		out.WriteString(e.NewText)
		cursor = e.EndOffset
	}
	out.Write(text[cursor:])

	return out.Bytes()
}

// ApplyAll prepares and applies edits in one call.
func ApplyAll(text []byte, edits []TextEdit) ([]byte, error) {
	prepared, err := Prepare(edits, len(text))
	if err != nil {
		return nil, err
	}
	return Apply(text, prepared), nil
}

// MapOffset returns where offset lands after the prepared edits are applied.
// An offset inside a replaced range moves to the end of its replacement.
func MapOffset(offset int, edits []TextEdit) int {
	shift := 0
	for _, e := range edits {
		switch {
		case offset < e.StartOffset:
			return offset + shift
		case offset < e.EndOffset || (offset == e.StartOffset && e.Len() == 0):
			return e.StartOffset + shift + len(e.NewText)
		}
		shift += e.Delta()
	}
	return offset + shift
}
