package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePageProperties(t *testing.T) {
	tests := []struct {
		name        string
		pageNumber  int
		pageSize    int
		totalCount  int64
		wantPages   int
		wantCurrent int
		wantStart   int64
		wantEnd     int64
	}{
		{"single partial page", 1, 25, 3, 1, 1, 1, 3},
		{"exact page boundary", 2, 25, 50, 2, 2, 26, 50},
		{"middle page", 2, 25, 55, 3, 2, 26, 50},
		{"last partial page", 3, 25, 55, 3, 3, 51, 55},
		{"page below range clamps to 1", 0, 25, 55, 3, 1, 1, 25},
		{"negative page clamps to 1", -7, 25, 55, 3, 1, 1, 25},
		{"page above range clamps to last", 99, 25, 55, 3, 3, 51, 55},
		{"zero results", 4, 25, 0, 0, 1, 0, 0},
		{"page size one", 5, 1, 5, 5, 5, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e ResultEnvelope
			e.computePageProperties(tt.pageNumber, tt.pageSize, tt.totalCount)

			assert.Equal(t, tt.totalCount, e.TotalCount)
			assert.Equal(t, tt.wantPages, e.TotalPages)
			assert.Equal(t, tt.wantCurrent, e.CurrentPage)
			assert.Equal(t, tt.wantStart, e.StartIndex)
			assert.Equal(t, tt.wantEnd, e.EndIndex)

			if tt.totalCount > 0 {
				assert.GreaterOrEqual(t, e.CurrentPage, 1)
				assert.LessOrEqual(t, e.CurrentPage, e.TotalPages)
				assert.LessOrEqual(t, e.StartIndex, e.EndIndex)
				assert.LessOrEqual(t, e.EndIndex, e.TotalCount)
			}
		})
	}
}

// aggTree builds the decoded response tree the assembler consumes.
func aggTree(inner map[string]Aggregation) map[string]Aggregation {
	return map[string]Aggregation{
		allEntriesAgg: {Sub: inner},
	}
}

func TestBuildAvailableFilters(t *testing.T) {
	s := testSchema(t)

	aggs := aggTree(map[string]Aggregation{
		gameAggPrefix + "nl": {DocCount: 7},
		gameAggPrefix + "ww": {DocCount: 0},
		"species" + filterSuffix: {Sub: map[string]Aggregation{
			"species": {Buckets: []Bucket{
				{Key: "dog", DocCount: 2},
				{Key: "cat", DocCount: 5},
				{Key: "axolotl", DocCount: 1}, // not in the enumerated map
			}},
		}},
		"personality" + filterSuffix: {Sub: map[string]Aggregation{
			"personality" + nestedSuffix: {Sub: map[string]Aggregation{
				"personality" + matchingSuffix: {Sub: map[string]Aggregation{
					"personality": {Buckets: []Bucket{
						{Key: "lazy", DocCount: 3},
					}},
				}},
			}},
		}},
		"tag" + filterSuffix: {Sub: map[string]Aggregation{
			"tag": {Buckets: []Bucket{
				{Key: "beta", DocCount: 1},
				{Key: "alpha", DocCount: 4},
			}},
		}},
	})

	available := s.buildAvailableFilters(aggs, nil)
	require.Len(t, available, 4)

	// Ascending sort weight: game, species, personality, tag.
	assert.Equal(t, "game", available[0].Key)
	assert.Equal(t, "species", available[1].Key)
	assert.Equal(t, "personality", available[2].Key)
	assert.Equal(t, "tag", available[3].Key)

	// Game facet: zero-count games are dropped, labels from the value map.
	assert.Equal(t, []FilterValue{{Value: "nl", Label: "New Leaf", Count: 7}}, available[0].Values)

	// Enumerated facet: value-map order, unlisted bucket keys dropped.
	assert.Equal(t, []FilterValue{
		{Value: "cat", Label: "Cat", Count: 5},
		{Value: "dog", Label: "Dog", Count: 2},
	}, available[1].Values)

	// Game-dependent facet buckets come from the nested scopes.
	assert.Equal(t, []FilterValue{{Value: "lazy", Label: "Lazy", Count: 3}}, available[2].Values)

	// Unenumerated facet: lexicographic order, raw key doubles as label.
	assert.Equal(t, []FilterValue{
		{Value: "alpha", Label: "alpha", Count: 4},
		{Value: "beta", Label: "beta", Count: 1},
	}, available[3].Values)
}

func TestBuildAvailableFilters_EmptyFacetsOmitted(t *testing.T) {
	s := testSchema(t)

	aggs := aggTree(map[string]Aggregation{
		gameAggPrefix + "nl": {DocCount: 1},
		"species" + filterSuffix: {Sub: map[string]Aggregation{
			"species": {Buckets: nil},
		}},
	})

	available := s.buildAvailableFilters(aggs, nil)
	require.Len(t, available, 1)
	assert.Equal(t, "game", available[0].Key)
}

func TestBuildAvailableFilters_PinnedFacetsOmitted(t *testing.T) {
	s := testSchema(t)

	aggs := aggTree(map[string]Aggregation{
		gameAggPrefix + "nl": {DocCount: 1},
		"species" + filterSuffix: {Sub: map[string]Aggregation{
			"species": {Buckets: []Bucket{{Key: "cat", DocCount: 1}}},
		}},
	})

	available := s.buildAvailableFilters(aggs, FixedQueries{"species": {"cat"}})
	for _, f := range available {
		assert.NotEqual(t, "species", f.Key)
	}
}

func TestBuildAvailableFilters_NoAggregations(t *testing.T) {
	s := testSchema(t)
	assert.Nil(t, s.buildAvailableFilters(nil, nil))
	assert.Nil(t, s.buildAvailableFilters(map[string]Aggregation{}, nil))
}
