package browser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregation_UnmarshalJSON(t *testing.T) {
	payload := []byte(`{
		"all_entries": {
			"doc_count": 391,
			"species_filter": {
				"doc_count": 120,
				"species": {
					"doc_count_error_upper_bound": 0,
					"sum_other_doc_count": 0,
					"buckets": [
						{"key": "cat", "doc_count": 23},
						{"key": "dog", "doc_count": 16}
					]
				}
			},
			"personality_filter": {
				"doc_count": 120,
				"personality_nested": {
					"doc_count": 480,
					"personality_matching": {
						"doc_count": 120,
						"personality": {
							"buckets": [
								{"key": "lazy", "doc_count": 60}
							]
						}
					}
				}
			},
			"game_nl": {"doc_count": 333}
		}
	}`)

	var aggs map[string]Aggregation
	require.NoError(t, json.Unmarshal(payload, &aggs))

	root, ok := aggs["all_entries"]
	require.True(t, ok)
	assert.Equal(t, int64(391), root.DocCount)

	species, ok := root.Descend("species_filter", "species")
	require.True(t, ok)
	require.Len(t, species.Buckets, 2)
	assert.Equal(t, Bucket{Key: "cat", DocCount: 23}, species.Buckets[0])

	lazy, ok := root.Descend("personality_filter", "personality_nested", "personality_matching", "personality")
	require.True(t, ok)
	assert.Equal(t, []Bucket{{Key: "lazy", DocCount: 60}}, lazy.Buckets)

	nl, ok := root.Descend("game_nl")
	require.True(t, ok)
	assert.Equal(t, int64(333), nl.DocCount)

	_, ok = root.Descend("missing")
	assert.False(t, ok)
}

func TestBucket_UnmarshalJSON_NonStringKeys(t *testing.T) {
	var b Bucket
	require.NoError(t, json.Unmarshal([]byte(`{"key": 1, "key_as_string": "true", "doc_count": 4}`), &b))
	assert.Equal(t, "true", b.Key)
	assert.Equal(t, int64(4), b.DocCount)

	require.NoError(t, json.Unmarshal([]byte(`{"key": 7, "doc_count": 2}`), &b))
	assert.Equal(t, "7", b.Key)
}

func TestSearchHit_SourceString(t *testing.T) {
	hit := SearchHit{Source: map[string]interface{}{"name": "Tom", "rank": 3}}
	assert.Equal(t, "Tom", hit.SourceString("name"))
	assert.Equal(t, "", hit.SourceString("rank"))
	assert.Equal(t, "", hit.SourceString("missing"))
}
