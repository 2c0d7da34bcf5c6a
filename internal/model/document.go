package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the lifecycle state of a Document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is one of the persisted states.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Document is the only persistent entity. It carries no storage tags;
// each repository driver maps it to its own record shape.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      Tags      `json:"tags"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentFields are the author-editable parts of a Document.
type DocumentFields struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    Tags   `json:"tags"`
}

// IsEmpty reports whether both title and content are empty. Tags alone do not count.
func (f DocumentFields) IsEmpty() bool {
	return f.Title == "" && f.Content == ""
}

// Tags is an ordered list of labels. At the boundary it is a single comma-joined string.
// Segments are kept verbatim so the string round-trips exactly; use Labels for display.
type Tags []string

const tagSeparator = ","

// ParseTags splits the wire form. An empty string yields nil.
func ParseTags(s string) Tags {
	if s == "" {
		return nil
	}
	return Tags(strings.Split(s, tagSeparator))
}

// String joins the tags back into the wire form.
func (t Tags) String() string {
	return strings.Join(t, tagSeparator)
}

// Labels returns trimmed, non-empty labels in their original order.
func (t Tags) Labels() []string {
	out := make([]string, 0, len(t))
	for _, tag := range t {
		if v := strings.TrimSpace(tag); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// MarshalJSON encodes the tags as the comma-joined string.
func (t Tags) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the comma-joined string, or an array of labels for convenience.
func (t *Tags) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = ParseTags(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*t = Tags(list)
	return nil
}
