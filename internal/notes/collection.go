package notes

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bra3n/bra3n/internal/models"
)

// Deleter is the persistence operation needed by Collection.Delete.
type Deleter interface {
	DeleteNote(ctx context.Context, id uuid.UUID) error
}

// ConfirmFunc is the explicit yes/no gate shown to the user before a note is
// deleted. Returning false cancels the deletion.
type ConfirmFunc func(note *models.Note) bool

// Collection is an ordered sequence of notes scoped to one brain, with a tag
// filter and the derived set of all tags. AllTags is always exactly the union
// of tags across the current notes.
type Collection struct {
	notes     []*models.Note
	tagFilter string
	allTags   []string
}

// NewCollection builds a collection over notes and derives the tag set.
func NewCollection(input []*models.Note) *Collection {
	c := &Collection{notes: append([]*models.Note(nil), input...)}
	c.recomputeTags()
	return c
}

// Notes returns the notes in collection order.
func (c *Collection) Notes() []*models.Note {
	return c.notes
}

// Len returns the number of notes in the collection.
func (c *Collection) Len() int {
	return len(c.notes)
}

// AllTags returns the union of tags across all notes, in first-seen order.
func (c *Collection) AllTags() []string {
	return c.allTags
}

// SetTagFilter restricts Visible to notes carrying tag; empty shows all.
func (c *Collection) SetTagFilter(tag string) {
	c.tagFilter = tag
}

// TagFilter returns the active tag filter ("" when unfiltered).
func (c *Collection) TagFilter() string {
	return c.tagFilter
}

// Visible returns the notes matching the search query and the active tag
// filter, in collection order.
func (c *Collection) Visible(query string) []*models.Note {
	return FilterByTag(Search(c.notes, query), c.tagFilter)
}

// Get returns the note with the given id, or nil.
func (c *Collection) Get(id uuid.UUID) *models.Note {
	for _, note := range c.notes {
		if note.ID == id {
			return note
		}
	}
	return nil
}

// Upsert replaces the note with the same id or appends it, then recomputes
// the tag set.
func (c *Collection) Upsert(note *models.Note) {
	for i, existing := range c.notes {
		if existing.ID == note.ID {
			c.notes[i] = note
			c.recomputeTags()
			return
		}
	}
	c.notes = append(c.notes, note)
	c.recomputeTags()
}

// Remove drops the note with the given id and recomputes the tag set so no
// tag unique to the removed note survives. Returns false if the id is absent.
func (c *Collection) Remove(id uuid.UUID) bool {
	for i, note := range c.notes {
		if note.ID == id {
			c.notes = append(c.notes[:i], c.notes[i+1:]...)
			c.recomputeTags()
			return true
		}
	}
	return false
}

// Delete removes a note through the persistence layer, gated by an explicit
// user confirmation. A declined confirmation or unknown id is a no-op. On
// persistence failure the collection is left untouched and the error is
// returned for the caller to surface.
func (c *Collection) Delete(ctx context.Context, id uuid.UUID, confirm ConfirmFunc, deleter Deleter) (bool, error) {
	note := c.Get(id)
	if note == nil {
		return false, nil
	}
	if confirm == nil || !confirm(note) {
		return false, nil
	}
	if err := deleter.DeleteNote(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}
	c.Remove(id)
	return true, nil
}

func (c *Collection) recomputeTags() {
	seen := make(map[string]bool)
	var tags []string
	for _, note := range c.notes {
		for _, tag := range note.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	c.allTags = tags
}
