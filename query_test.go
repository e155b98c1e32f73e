package listq_test

import (
	"testing"

	"listq"

	"github.com/stretchr/testify/assert"
)

func TestQueryCleanDropsEmptyEntries(t *testing.T) {
	q := listq.Query{
		"criteria":  "javascript",
		"order":     "",
		"trackSlug": nil,
		"tags":      []string{},
		"page":      2,
	}

	cleaned := q.Clean()
	assert.Equal(t, listq.Query{"criteria": "javascript", "page": 2}, cleaned)
	// Clean copies; the original keeps its entries.
	assert.Len(t, q, 5)
}

func TestQueryMergeDeletesEmptyFields(t *testing.T) {
	base := listq.Query{"criteria": "javascript", "page": 3, "trackSlug": "go"}

	merged := base.Merge(listq.Query{"criteria": "rust", "page": nil})

	assert.Equal(t, "rust", merged["criteria"])
	assert.Equal(t, "go", merged["trackSlug"])
	_, hasPage := merged["page"]
	assert.False(t, hasPage, "empty merge value must delete the field")
	// Merge never mutates the receiver.
	assert.Equal(t, 3, base["page"])
}

func TestQueryValuesOmitsEmptyEntries(t *testing.T) {
	q := listq.Query{
		"criteria": "",
		"order":    nil,
		"tags":     []string{},
		"track":    "elixir",
	}

	encoded := q.Encode()
	assert.Equal(t, "track=elixir", encoded)
	assert.NotContains(t, encoded, "criteria")
	assert.NotContains(t, encoded, "order")
	assert.NotContains(t, encoded, "tags")
}

func TestQueryValuesCanonicalizesTagOrder(t *testing.T) {
	a := listq.Query{"tags": []string{"recursion", "arrays", "maps"}}
	b := listq.Query{"tags": []string{"maps", "recursion", "arrays"}}

	assert.Equal(t, a.Encode(), b.Encode())
	assert.Equal(t, "tags=arrays&tags=maps&tags=recursion", a.Encode())
}

func TestQueryValuesStringifiesScalars(t *testing.T) {
	q := listq.Query{"page": 2, "mentored": true, "rating": 4.0}
	assert.Equal(t, "mentored=true&page=2&rating=4", q.Encode())
}
