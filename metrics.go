package fons

import "strings"

// splitLines splits text into lines on "\n", dropping a trailing "\r" from
// each line and ignoring a final line terminator.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// TextBoundsMultiline measures text at pos with the given font size and
// returns [x, y, w, h].
//
// The first line is measured exactly. Every following line, empty or not,
// adds fontSize+lineSpacing to the height; the width is the widest line.
func (ft *FontTexture) TextBoundsMultiline(text string, x, y, fontSize, lineSpacing float32) [4]float32 {
	lines := splitLines(text)
	if len(lines) == 0 {
		return [4]float32{x, y, 0, 0}
	}

	st := ft.stash
	st.PushState()
	defer st.PopState()
	st.SetSize(fontSize)

	_, b := st.TextBounds(x, y, lines[0])
	bx, by := b[0], b[1]
	w, h := b[2]-b[0], b[3]-b[1]

	for _, line := range lines[1:] {
		if line != "" {
			_, lb := st.TextBounds(0, 0, line)
			w = max(w, lb[2]-lb[0])
		}
		h += fontSize + lineSpacing
	}
	return [4]float32{bx, by, w, h}
}

// TextSizeMultiline returns the [w, h] of text with the given font size,
// using the same line rules as TextBoundsMultiline.
func (ft *FontTexture) TextSizeMultiline(text string, fontSize, lineSpacing float32) [2]float32 {
	lines := splitLines(text)
	if len(lines) == 0 {
		return [2]float32{}
	}

	st := ft.stash
	st.PushState()
	defer st.PopState()
	st.SetSize(fontSize)

	size := st.TextSize(lines[0])
	w, h := size[0], size[1]
	for _, line := range lines[1:] {
		if line != "" {
			w = max(w, st.TextSize(line)[0])
		}
		h += fontSize + lineSpacing
	}
	return [2]float32{w, h}
}
