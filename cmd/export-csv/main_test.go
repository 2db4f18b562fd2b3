package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediahub/internal/archive"
)

func TestRecordOfTagsCellIsJSON(t *testing.T) {
	api := archive.APIMediaItem{
		ID:        "0b783b9e-3f56-44e2-8f3e-5a1b8c9c2f10",
		Title:     "Dune",
		MediaType: "movie",
		Status:    "completed",
		Tags:      []string{"favorite", "sci-fi; space opera"},
	}

	record := recordOf(api)
	require.Len(t, record, len(exportHeader))

	// a tag holding a separator character must survive as one tag
	var tags []string
	require.NoError(t, json.Unmarshal([]byte(record[11]), &tags))
	assert.Equal(t, api.Tags, tags)
}

func TestRecordOfEmptyTags(t *testing.T) {
	record := recordOf(archive.APIMediaItem{Title: "X", MediaType: "movie"})
	assert.Equal(t, "[]", record[11])
}
