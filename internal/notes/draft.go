package notes

import (
	"strings"

	"github.com/bra3n/bra3n/internal/models"
)

// Tag input keys that commit the pending tag instead of inserting a literal
// character.
const (
	TagKeyEnter = "Enter"
	TagKeyComma = ","
)

// Draft holds the editable, unsaved fields of a note being created or edited.
// Load and Reset replace every field at once so callers never observe a
// partially applied draft.
type Draft struct {
	Title    string
	Content  string
	Tags     []string
	TagInput string
	AIModel  models.AIModel
}

// NewDraft returns an empty draft with the default model choice.
func NewDraft() *Draft {
	return &Draft{AIModel: models.AIModelClaude}
}

// Load replaces all draft fields with the note's persisted values. The tag
// slice is copied so later edits do not mutate the source note.
func (d *Draft) Load(note *models.Note) {
	d.Title = note.Title
	d.Content = note.Content
	d.Tags = append([]string(nil), note.Tags...)
	d.TagInput = ""
	d.AIModel = note.AIModel
	if d.AIModel == "" {
		d.AIModel = models.AIModelClaude
	}
}

// Reset clears all draft fields back to their empty defaults.
func (d *Draft) Reset() {
	d.Title = ""
	d.Content = ""
	d.Tags = nil
	d.TagInput = ""
	d.AIModel = models.AIModelClaude
}

// HasTag reports whether the draft carries tag (case-sensitive exact match).
func (d *Draft) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CommitTag commits the pending tag input: the input is trimmed of
// whitespace and appended iff non-empty and not already present
// (case-sensitive). The input is cleared whether or not a tag was added.
// Returns true when a tag was added.
func (d *Draft) CommitTag() bool {
	tag := strings.TrimSpace(d.TagInput)
	d.TagInput = ""
	if tag == "" || d.HasTag(tag) {
		return false
	}
	d.Tags = append(d.Tags, tag)
	return true
}

// RemoveTag removes the exact tag from the draft. No-op if absent.
func (d *Draft) RemoveTag(tag string) bool {
	for i, t := range d.Tags {
		if t == tag {
			d.Tags = append(d.Tags[:i], d.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// HandleTagKey processes a keystroke in the tag input. Enter and comma commit
// the pending tag and are suppressed (never inserted literally); any other
// key is appended to the input. Returns true when the key committed a tag
// input rather than extending it.
func (d *Draft) HandleTagKey(key string) bool {
	switch key {
	case TagKeyEnter, TagKeyComma:
		d.CommitTag()
		return true
	default:
		d.TagInput += key
		return false
	}
}

// ApplyTo writes the draft fields onto note, leaving identity and timestamps
// untouched. The tag slice is copied.
func (d *Draft) ApplyTo(note *models.Note) {
	note.Title = d.Title
	note.Content = d.Content
	note.Tags = append([]string(nil), d.Tags...)
	note.AIModel = d.AIModel
}
