package profile

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ScenarioTags is the closed quick-select vocabulary.
var ScenarioTags = []string{
	"Energy Grid",
	"Insurance",
	"Healthcare",
	"Tourism",
	"Supply Chain",
	"Logistics",
	"Smart Traffic",
	"Land Registry",
}

var ErrUnknownTag = errors.New("unknown scenario tag")

// tagSeparator joins selected tags into the scenario text.
const tagSeparator = ", "

// Scenario keeps the quick-select tags and the free-text box resolved into one
// scenario string. Toggling a tag regenerates the text from the selection alone,
// discarding any free text typed before it. Editing the text never touches the
// selection.
type Scenario struct {
	selected []string
	text     string
}

// IsScenarioTag reports whether tag belongs to the vocabulary.
func IsScenarioTag(tag string) bool {
	return slices.Contains(ScenarioTags, tag)
}

// Toggle flips membership of tag and rewrites the text from the selection.
func (s *Scenario) Toggle(tag string) error {
	if !IsScenarioTag(tag) {
		return fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	if i := slices.Index(s.selected, tag); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
	} else {
		s.selected = append(s.selected, tag)
	}
	s.text = strings.Join(s.selected, tagSeparator)
	return nil
}

// EditFreeText replaces the scenario text verbatim.
func (s *Scenario) EditFreeText(text string) {
	s.text = text
}

// Text is the reconciled scenario string.
func (s *Scenario) Text() string { return s.text }

// Selected returns the selected tags in selection order.
func (s *Scenario) Selected() []string {
	return slices.Clone(s.selected)
}

// IsSelected reports whether tag is currently selected.
func (s *Scenario) IsSelected(tag string) bool {
	return slices.Contains(s.selected, tag)
}

// Clone returns an independent copy.
func (s *Scenario) Clone() Scenario {
	return Scenario{selected: slices.Clone(s.selected), text: s.text}
}
