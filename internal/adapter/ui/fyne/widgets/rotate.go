package widgets

// Rotator scrolls text that is too long for its label one rune per step.
type Rotator struct {
	runes  []rune
	maxLen int
}

// rotatorGap separates the end of the text from its start while scrolling.
const rotatorGap = "    "

// NewRotator creates a rotator for text shown in maxLength runes.
func NewRotator(text string, maxLength int) *Rotator {
	r := &Rotator{maxLen: maxLength}
	if len([]rune(text)) > maxLength {
		text += rotatorGap
	}
	r.runes = []rune(text)
	return r
}

// Rotate advances the text by one rune and returns it. Text that fits is
// returned unchanged.
func (r *Rotator) Rotate() string {
	if len(r.runes) <= r.maxLen {
		return string(r.runes)
	}
	r.runes = append(r.runes[1:], r.runes[0])
	return string(r.runes)
}

// Text returns the current text without advancing it.
func (r *Rotator) Text() string {
	return string(r.runes)
}
