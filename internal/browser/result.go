package browser

import "sort"

// FilterValue is one selectable facet value with its result count.
type FilterValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AvailableFilter is one facet the current result set can still be narrowed
// by, with its display label and value counts.
type AvailableFilter struct {
	Key    string        `json:"key"`
	Label  string        `json:"label"`
	Values []FilterValue `json:"values"`
}

// Result is one catalog entry in the result list.
type Result struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl"`
}

// ResultEnvelope is the display-ready browse response.
type ResultEnvelope struct {
	AppliedFilters   AppliedFilters    `json:"appliedFilters"`
	AvailableFilters []AvailableFilter `json:"availableFilters,omitempty"`
	Results          []Result          `json:"results"`
	TotalCount       int64             `json:"totalCount"`
	TotalPages       int               `json:"totalPages"`
	CurrentPage      int               `json:"currentPage"`
	StartIndex       int64             `json:"startIndex"`
	EndIndex         int64             `json:"endIndex"`
}

// computePageProperties fills in the pagination fields, clamping the
// requested page into the valid range.
func (e *ResultEnvelope) computePageProperties(pageNumber, pageSize int, totalCount int64) {
	e.TotalCount = totalCount
	e.TotalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))

	if pageNumber < 1 || e.TotalPages == 0 {
		pageNumber = 1
	} else if pageNumber > e.TotalPages {
		pageNumber = e.TotalPages
	}
	e.CurrentPage = pageNumber

	if totalCount == 0 {
		e.StartIndex = 0
		e.EndIndex = 0
		return
	}

	e.StartIndex = int64(pageSize)*int64(pageNumber-1) + 1
	e.EndIndex = int64(pageSize) * int64(pageNumber)
	if e.EndIndex > totalCount {
		e.EndIndex = totalCount
	}
}

// buildAvailableFilters reshapes the engine's aggregation buckets into the
// ordered, labeled filter list shown next to the results.
//
// Facets appear in ascending sort weight. A facet with no matching buckets is
// omitted so the frontend never offers a dead-end choice. Bucket entries
// follow the facet's enumerated value order when one exists (unlisted keys
// are dropped); otherwise buckets sort lexicographically and the raw key
// doubles as the label.
func (s *Schema) buildAvailableFilters(aggs map[string]Aggregation, fixed FixedQueries) []AvailableFilter {
	root, ok := aggs[allEntriesAgg]
	if !ok {
		return nil
	}

	var defs []*FilterDefinition
	for _, key := range s.ordered {
		def := s.byKey[key]
		if !def.CanAggregate {
			continue
		}
		if _, pinned := fixed[key]; pinned {
			continue
		}
		defs = append(defs, def)
	}
	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].SortWeight < defs[j].SortWeight
	})

	var available []AvailableFilter
	for _, def := range defs {
		var values []FilterValue
		if def.Key == GameFacetKey {
			values = gameFilterValues(def, root)
		} else {
			values = facetFilterValues(def, root)
		}
		if len(values) == 0 {
			continue
		}
		available = append(available, AvailableFilter{
			Key:    def.Key,
			Label:  def.DisplayName,
			Values: values,
		})
	}

	return available
}

// gameFilterValues reads the per-game sibling aggregation counts, keeping
// enumerated order and dropping games with no results.
func gameFilterValues(def *FilterDefinition, root Aggregation) []FilterValue {
	var values []FilterValue
	for _, ev := range def.EnumeratedValues {
		agg, ok := root.Descend(gameAggPrefix + ev.Value)
		if !ok || agg.DocCount == 0 {
			continue
		}
		values = append(values, FilterValue{
			Value: ev.Value,
			Label: ev.Label,
			Count: agg.DocCount,
		})
	}
	return values
}

// facetFilterValues reads a facet's terms buckets from under its filter
// aggregation, descending through the nested scopes for game-dependent
// facets.
func facetFilterValues(def *FilterDefinition, root Aggregation) []FilterValue {
	path := []string{def.Key + filterSuffix, def.Key}
	if def.Kind == FacetGameDependent {
		path = []string{
			def.Key + filterSuffix,
			def.Key + nestedSuffix,
			def.Key + matchingSuffix,
			def.Key,
		}
	}

	agg, ok := root.Descend(path...)
	if !ok || len(agg.Buckets) == 0 {
		return nil
	}

	counts := make(map[string]int64, len(agg.Buckets))
	for _, b := range agg.Buckets {
		counts[b.Key] = b.DocCount
	}

	var values []FilterValue
	if len(def.EnumeratedValues) > 0 {
		for _, ev := range def.EnumeratedValues {
			if count, ok := counts[ev.Value]; ok {
				values = append(values, FilterValue{Value: ev.Value, Label: ev.Label, Count: count})
			}
		}
		return values
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values = append(values, FilterValue{Value: key, Label: key, Count: counts[key]})
	}
	return values
}
