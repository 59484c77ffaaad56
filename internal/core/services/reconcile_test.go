package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

func TestMerge_LeftJoin(t *testing.T) {
	keywords := []domain.KeywordRecord{
		{Query: "best running shoes", Volume: 1000},
		{Query: "cheap flights london", Volume: 800},
		{Query: "standing desk reviews", Volume: 50},
	}
	results := []domain.ResultRecord{
		{Query: "cheap flights london", Links: []string{"https://a.example", "https://b.example"}},
		{Query: "standing desk reviews", Links: []string{}},
	}

	unified, err := Merge(keywords, results)
	require.NoError(t, err)
	require.Len(t, unified, len(keywords))

	assert.Equal(t, "best running shoes", unified[0].Query)
	assert.Equal(t, 1000, unified[0].Volume)
	assert.NotNil(t, unified[0].Links)
	assert.Empty(t, unified[0].Links)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, unified[1].Links)
	assert.Empty(t, unified[2].Links)
}

func TestMerge_DropsUnknownResultQueries(t *testing.T) {
	keywords := []domain.KeywordRecord{{Query: "best running shoes", Volume: 10}}
	results := []domain.ResultRecord{
		{Query: "best running shoes", Links: []string{"https://a.example"}},
		{Query: "not in the table", Links: []string{"https://x.example"}},
	}

	unified, err := Merge(keywords, results)
	require.NoError(t, err)
	require.Len(t, unified, 1)
	assert.Equal(t, "best running shoes", unified[0].Query)
}

func TestMerge_OutputAlignsWithKeywordUniverse(t *testing.T) {
	keywords := []domain.KeywordRecord{
		{Query: "alpha keyword"},
		{Query: "beta keyword"},
	}

	unified, err := Merge(keywords, nil)
	require.NoError(t, err)
	require.Len(t, unified, len(keywords))
	for i, u := range unified {
		assert.Equal(t, keywords[i].Query, u.Query)
		assert.NotNil(t, u.Links)
	}
}

func TestMerge_DuplicateKeywordFails(t *testing.T) {
	keywords := []domain.KeywordRecord{
		{Query: "best running shoes", Volume: 10},
		{Query: "best running shoes", Volume: 20},
	}

	_, err := Merge(keywords, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateQuery)
	assert.Contains(t, err.Error(), "best running shoes")
}

func TestMerge_DuplicateResultQueryLastWins(t *testing.T) {
	keywords := []domain.KeywordRecord{{Query: "best running shoes"}}
	results := []domain.ResultRecord{
		{Query: "best running shoes", Links: []string{"https://old.example"}},
		{Query: "best running shoes", Links: []string{"https://new.example"}},
	}

	unified, err := Merge(keywords, results)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://new.example"}, unified[0].Links)
}
