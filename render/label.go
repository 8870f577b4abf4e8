package render

import "strings"

// LabelShape is the layout decision for a field label.
type LabelShape struct {
	Text string // label without the trailing colon when Side is set
	Side bool   // inline "Name: ______" layout instead of a caption above a box
}

// ClassifyLabel decides the layout from trailing punctuation. A label whose
// trimmed form ends with ":" is a side label and loses that colon; a label
// made only of a colon is a side label with empty text. Whitespace-only
// labels are stacked.
func ClassifyLabel(label string) LabelShape {
	trimmed := strings.TrimSpace(label)
	if strings.HasSuffix(trimmed, ":") {
		return LabelShape{Text: strings.TrimSuffix(trimmed, ":"), Side: true}
	}
	return LabelShape{Text: label}
}
