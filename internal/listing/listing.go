// Package listing derives the listing view from List results: drafts and published
// posts apart, the tag filter choices, and the filtered published set.
package listing

import (
	"strings"

	"blogeditor/internal/model"
)

// AllTags is the filter value that selects every published post.
const AllTags = "All"

// Split separates drafts from published documents, keeping the input order.
func Split(docs []model.Document) (drafts, published []model.Document) {
	for _, d := range docs {
		switch d.Status {
		case model.StatusDraft:
			drafts = append(drafts, d)
		case model.StatusPublished:
			published = append(published, d)
		}
	}
	return drafts, published
}

// Tags returns the distinct trimmed labels in first-seen order, prefixed with AllTags.
func Tags(docs []model.Document) []string {
	seen := make(map[string]struct{})
	out := []string{AllTags}
	for _, d := range docs {
		for _, label := range d.Tags.Labels() {
			key := strings.ToLower(label)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, label)
		}
	}
	return out
}

// FilterByTag keeps documents carrying tag, compared case-insensitively on trimmed labels.
// An empty tag or AllTags keeps everything.
func FilterByTag(docs []model.Document, tag string) []model.Document {
	tag = strings.TrimSpace(tag)
	if tag == "" || tag == AllTags {
		return docs
	}
	var out []model.Document
	for _, d := range docs {
		for _, label := range d.Tags.Labels() {
			if strings.EqualFold(label, tag) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
