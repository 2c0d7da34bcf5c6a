package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blogeditor/internal/model"
)

func docs() []model.Document {
	return []model.Document{
		{ID: "1", Status: model.StatusPublished, Tags: model.ParseTags("go, web")},
		{ID: "2", Status: model.StatusDraft, Tags: model.ParseTags("Go,drafts")},
		{ID: "3", Status: model.StatusPublished, Tags: model.ParseTags(" Web ,,ops")},
		{ID: "4", Status: model.StatusPublished},
	}
}

func ids(ds []model.Document) []string {
	out := []string{}
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

func TestSplit(t *testing.T) {
	drafts, published := Split(docs())
	assert.Equal(t, []string{"2"}, ids(drafts))
	assert.Equal(t, []string{"1", "3", "4"}, ids(published))
}

func TestTags(t *testing.T) {
	assert.Equal(t, []string{"All", "go", "web", "drafts", "ops"}, Tags(docs()))
	assert.Equal(t, []string{"All"}, Tags(nil))
}

func TestFilterByTag(t *testing.T) {
	_, published := Split(docs())

	tests := []struct {
		tag  string
		want []string
	}{
		{"All", []string{"1", "3", "4"}},
		{"", []string{"1", "3", "4"}},
		{"web", []string{"1", "3"}},
		{" WEB ", []string{"1", "3"}},
		{"ops", []string{"3"}},
		{"we", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterByTag(published, tt.tag)))
		})
	}
}
