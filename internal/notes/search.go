package notes

import (
	"strings"

	"github.com/bra3n/bra3n/internal/models"
)

// Search filters notes by a case-insensitive substring match against title,
// content, or any tag. An empty or whitespace-only query returns the input
// slice unchanged, preserving order. Search is pure; it never mutates notes.
func Search(input []*models.Note, query string) []*models.Note {
	query = strings.TrimSpace(query)
	if query == "" {
		return input
	}

	needle := strings.ToLower(query)
	var out []*models.Note
	for _, note := range input {
		if matchesQuery(note, needle) {
			out = append(out, note)
		}
	}
	return out
}

func matchesQuery(note *models.Note, needle string) bool {
	if strings.Contains(strings.ToLower(note.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(note.Content), needle) {
		return true
	}
	for _, tag := range note.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// FilterByTag restricts notes to those carrying tag (case-sensitive exact
// match). An empty tag returns the input unchanged.
func FilterByTag(input []*models.Note, tag string) []*models.Note {
	if tag == "" {
		return input
	}
	var out []*models.Note
	for _, note := range input {
		if note.HasTag(tag) {
			out = append(out, note)
		}
	}
	return out
}
