package browser

import "sort"

// FixedQueries are route-level constraints (entity type, item category). They
// are server-controlled, bypass sanitization, and shadow any user-supplied
// filter for the same key.
type FixedQueries map[string][]string

// BuildQuery converts one facet value into its Elasticsearch query fragments.
//
// Text facets contribute two scoring fragments (an analyzed match on name and
// a fuzzy match on the phrase field). Exact facets contribute a single term
// match. Game-dependent facets contribute a nested query into the facet's
// sub-document path, matching the sub-document value and, when the game facet
// has applied values, restricting to sub-documents of the selected games.
func (s *Schema) BuildQuery(key, value string, applied AppliedFilters) []map[string]interface{} {
	def, ok := s.byKey[key]
	if !ok {
		return nil
	}

	switch def.Kind {
	case FacetText:
		return []map[string]interface{}{
			{
				"match": map[string]interface{}{
					"name": map[string]interface{}{
						"query": value,
					},
				},
			},
			{
				"match": map[string]interface{}{
					"phrase": map[string]interface{}{
						"query":     value,
						"fuzziness": "auto",
					},
				},
			},
		}

	case FacetGameDependent:
		must := []interface{}{
			map[string]interface{}{
				"term": map[string]interface{}{
					key + ".value": map[string]interface{}{
						"value": value,
					},
				},
			},
		}
		if games := applied[GameFacetKey]; len(games) > 0 {
			should := make([]interface{}, 0, len(games))
			for _, game := range games {
				should = append(should, map[string]interface{}{
					"term": map[string]interface{}{
						key + ".game": map[string]interface{}{
							"value": game,
						},
					},
				})
			}
			must = append(must, map[string]interface{}{
				"bool": map[string]interface{}{
					"should": should,
				},
			})
		}
		return []map[string]interface{}{
			{
				"nested": map[string]interface{}{
					"path": key,
					"query": map[string]interface{}{
						"bool": map[string]interface{}{
							"must": must,
						},
					},
				},
			},
		}

	default: // FacetExact
		return []map[string]interface{}{
			{
				"term": map[string]interface{}{
					key: map[string]interface{}{
						"value": value,
					},
				},
			},
		}
	}
}

// BuildAppliedQueries builds one should-group per facet in keys, combining a
// facet's multi-value fragments with OR semantics. The context filters carry
// the full applied state (including fixed constraints) so game-dependent
// fragments see the selected games even when the facet list being built is a
// subset.
func (s *Schema) BuildAppliedQueries(keys AppliedFilters, context AppliedFilters) map[string]map[string]interface{} {
	queries := make(map[string]map[string]interface{}, len(keys))
	for key, values := range keys {
		var fragments []interface{}
		for _, value := range values {
			for _, q := range s.BuildQuery(key, value, context) {
				fragments = append(fragments, q)
			}
		}
		if len(fragments) == 0 {
			continue
		}
		queries[key] = map[string]interface{}{
			"bool": map[string]interface{}{
				"should": fragments,
			},
		}
	}
	return queries
}

// BuildRootQuery composes the boolean query sent to the engine: a must-clause
// of the subset predicate followed by every applied facet's should-group.
//
// The subset predicate is match_all when no fixed queries are configured;
// otherwise a should-group of exact term matches per fixed key. Facets are
// appended in schema declaration order, then any fixed-only keys in sorted
// order, so identical inputs always marshal to identical payloads.
func (s *Schema) BuildRootQuery(appliedQueries map[string]map[string]interface{}, fixed FixedQueries) map[string]interface{} {
	must := []interface{}{s.subsetQuery(fixed)}

	for _, key := range s.ordered {
		if q, ok := appliedQueries[key]; ok {
			must = append(must, q)
		}
	}

	// Queries for keys outside the schema (only possible via fixed-query
	// recomputation) would otherwise be dropped; keep them, sorted.
	var extra []string
	for key := range appliedQueries {
		if _, known := s.byKey[key]; !known {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		must = append(must, appliedQueries[key])
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{
			"must": must,
		},
	}
}

// subsetQuery is the predicate every query must satisfy. With no fixed
// constraints it is an always-true match_all.
func (s *Schema) subsetQuery(fixed FixedQueries) map[string]interface{} {
	if len(fixed) == 0 {
		return map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}

	keys := make([]string, 0, len(fixed))
	for key := range fixed {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	must := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		should := make([]interface{}, 0, len(fixed[key]))
		for _, value := range fixed[key] {
			should = append(should, map[string]interface{}{
				"term": map[string]interface{}{
					key: map[string]interface{}{
						"value": value,
					},
				},
			})
		}
		must = append(must, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": should,
			},
		})
	}

	if len(must) == 1 {
		return must[0].(map[string]interface{})
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"must": must,
		},
	}
}
