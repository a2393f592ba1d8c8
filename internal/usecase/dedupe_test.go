package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpulse/leadpulse/internal/entity"
)

func TestDedupeLeads(t *testing.T) {
	existing := []entity.Lead{
		{ID: "e1", ProfileURL: "https://x.com/a"},
		{ID: "e2", ProfileURL: "https://x.com/b"},
	}
	incoming := []AddLeadInput{
		{Name: "A again", ProfileURL: "https://x.com/a"},
		{Name: "C", ProfileURL: "https://x.com/c"},
		{Name: "C again", ProfileURL: "https://x.com/c"},
	}

	res := DedupeLeads(existing, incoming)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.Duplicates)
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "C", res.Accepted[0].Name)
}

func TestDedupeLeadsNormalizesURLs(t *testing.T) {
	existing := []entity.Lead{{ProfileURL: "https://x.com/Alice"}}
	incoming := []AddLeadInput{
		{Name: "same, different case", ProfileURL: "https://x.com/alice"},
		{Name: "same, padded", ProfileURL: "  https://x.com/ALICE  "},
	}

	res := DedupeLeads(existing, incoming)

	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 2, res.Duplicates)
}

func TestDedupeLeadsEmptyURLsNeverCollide(t *testing.T) {
	existing := []entity.Lead{{ProfileURL: ""}}
	incoming := []AddLeadInput{
		{Name: "no url 1"},
		{Name: "no url 2"},
		{Name: "blank url", ProfileURL: "   "},
	}

	res := DedupeLeads(existing, incoming)

	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 0, res.Duplicates)
}

func TestDedupeLeadsEmptyBatch(t *testing.T) {
	res := DedupeLeads(nil, nil)

	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 0, res.Duplicates)
	assert.NotNil(t, res.Accepted)
}
