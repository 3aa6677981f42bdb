package browser

// Aggregation naming conventions shared with the result assembler.
const (
	allEntriesAgg  = "all_entries"
	filterSuffix   = "_filter"
	nestedSuffix   = "_nested"
	matchingSuffix = "_matching"
	gameAggPrefix  = "game_"
)

// BuildAggregations builds the per-facet "available options" aggregations.
//
// Every aggregable facet (except game, and except facets pinned by a fixed
// query) gets a filtered aggregation whose filter applies every *other*
// facet's constraint but not its own, so its buckets show what selecting or
// broadening that facet would yield. Flat facets bucket directly on the
// field; game-dependent facets descend into their nested sub-documents and
// only count sub-documents belonging to the selected games.
//
// The game facet cannot use a flat terms aggregation because game membership
// itself gates the nested matches above. Instead one sibling aggregation is
// built per enumerated game value, pinning the game facet to exactly that
// value and recomputing every game-dependent constraint under it; the
// filter's doc_count is that game's cross-consistent result count.
func (s *Schema) BuildAggregations(applied AppliedFilters, appliedQueries map[string]map[string]interface{}, fixed FixedQueries, aggSize int) map[string]interface{} {
	inner := map[string]interface{}{}

	for _, key := range s.ordered {
		def := s.byKey[key]
		if !def.CanAggregate || key == GameFacetKey {
			continue
		}
		if _, pinned := fixed[key]; pinned {
			continue
		}

		// Self-exclusion: every other facet's query, never this one's.
		others := make(map[string]map[string]interface{}, len(appliedQueries))
		for k, q := range appliedQueries {
			if k != key {
				others[k] = q
			}
		}

		inner[key+filterSuffix] = map[string]interface{}{
			"filter":       s.BuildRootQuery(others, fixed),
			"aggregations": s.facetTermsAggregation(def, applied, aggSize),
		}
	}

	inner = s.addGameAggregations(inner, applied, fixed)

	// The engine requires the facet aggregations nested one level under a
	// global scope for the filters to bypass the query context.
	return map[string]interface{}{
		allEntriesAgg: map[string]interface{}{
			"global":       map[string]interface{}{},
			"aggregations": inner,
		},
	}
}

// facetTermsAggregation buckets one facet's values, either directly on the
// field or through its nested sub-document path.
func (s *Schema) facetTermsAggregation(def *FilterDefinition, applied AppliedFilters, aggSize int) map[string]interface{} {
	terms := map[string]interface{}{
		"terms": map[string]interface{}{
			"field": def.Key,
			"size":  aggSize,
		},
	}

	if def.Kind != FacetGameDependent {
		return map[string]interface{}{
			def.Key: terms,
		}
	}

	terms["terms"].(map[string]interface{})["field"] = def.Key + ".value"

	// Only count sub-documents that belong to a selected game.
	var matching map[string]interface{}
	if games := applied[GameFacetKey]; len(games) > 0 {
		should := make([]interface{}, 0, len(games))
		for _, game := range games {
			should = append(should, map[string]interface{}{
				"term": map[string]interface{}{
					def.Key + ".game": map[string]interface{}{
						"value": game,
					},
				},
			})
		}
		matching = map[string]interface{}{
			"bool": map[string]interface{}{
				"should": should,
			},
		}
	} else {
		matching = map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}

	return map[string]interface{}{
		def.Key + nestedSuffix: map[string]interface{}{
			"nested": map[string]interface{}{
				"path": def.Key,
			},
			"aggregations": map[string]interface{}{
				def.Key + matchingSuffix: map[string]interface{}{
					"filter": matching,
					"aggregations": map[string]interface{}{
						def.Key: terms,
					},
				},
			},
		},
	}
}

// addGameAggregations appends the per-game sibling aggregations.
func (s *Schema) addGameAggregations(inner map[string]interface{}, applied AppliedFilters, fixed FixedQueries) map[string]interface{} {
	gameDef, ok := s.byKey[GameFacetKey]
	if !ok || !gameDef.CanAggregate {
		return inner
	}
	if _, pinned := fixed[GameFacetKey]; pinned {
		return inner
	}

	for _, ev := range gameDef.EnumeratedValues {
		// Pin the game facet to this single value, overriding any user
		// selection, and rebuild every facet query under that state so
		// game-dependent constraints follow the pinned game.
		forced := applied.Clone()
		forced[GameFacetKey] = []string{ev.Value}

		keys := forced.Clone()
		for k := range fixed {
			delete(keys, k)
		}

		inner[gameAggPrefix+ev.Value] = map[string]interface{}{
			"filter": s.BuildRootQuery(s.BuildAppliedQueries(keys, forced), fixed),
		}
	}

	return inner
}
