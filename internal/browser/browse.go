package browser

import (
	"context"
	"time"

	"github.com/google/uuid"

	"catalog-browser/internal/common/config"
	"catalog-browser/internal/common/logger"
	"catalog-browser/internal/common/metrics"
)

// Browser is the orchestration facade over the browse pipeline. It holds no
// mutable state; concurrent Browse calls are fully independent.
type Browser struct {
	client SearchClient
	schema *Schema
	cfg    config.SearchConfig
	logger logger.Logger
}

// New creates a Browser.
func New(client SearchClient, schema *Schema, cfg config.SearchConfig, log logger.Logger) *Browser {
	return &Browser{
		client: client,
		schema: schema,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "browser"}),
	}
}

// Schema returns the facet configuration the browser was built with.
func (b *Browser) Schema() *Schema {
	return b.schema
}

// GetAppliedFilters sanitizes the user queries and merges in the fixed
// queries, which bypass sanitization and shadow any user-supplied values for
// the same key. The result is what the frontend renders as the applied
// filter state.
func (b *Browser) GetAppliedFilters(userQueries map[string]string, fixedQueries FixedQueries) (AppliedFilters, error) {
	applied, err := b.schema.Sanitize(userQueries, b.cfg.MaxQueryLength)
	if err != nil {
		return nil, err
	}

	for key, values := range fixedQueries {
		vals := make([]string, len(values))
		copy(vals, values)
		applied[key] = vals
	}

	return applied, nil
}

// Browse runs the full pipeline for one page: sanitize, build the root query
// and aggregations, count, and (when anything matched) fetch the windowed
// results and reshape them into the display envelope.
//
// A count of zero short-circuits before the search call. Sanitizer failures
// surface as client errors; engine failures propagate to the caller
// unchanged, with no retries.
func (b *Browser) Browse(ctx context.Context, pageNumber int, userQueries map[string]string, fixedQueries FixedQueries) (*ResultEnvelope, error) {
	start := time.Now()
	log := b.logger.WithFields(map[string]interface{}{
		"requestId": uuid.NewString(),
		"page":      pageNumber,
	})

	envelope, err := b.browse(ctx, pageNumber, userQueries, fixedQueries, log)

	duration := time.Since(start)
	metrics.BrowseDuration.Observe(duration.Seconds())
	if err != nil {
		metrics.BrowseRequestsTotal.WithLabelValues("error").Inc()
		log.WithError(err).Error("browse failed", map[string]interface{}{
			"durationMs": duration.Milliseconds(),
		})
		return nil, err
	}

	metrics.BrowseRequestsTotal.WithLabelValues("ok").Inc()
	log.Info("browse completed", map[string]interface{}{
		"totalCount": envelope.TotalCount,
		"page":       envelope.CurrentPage,
		"facets":     len(envelope.AppliedFilters),
		"durationMs": duration.Milliseconds(),
	})
	return envelope, nil
}

func (b *Browser) browse(ctx context.Context, pageNumber int, userQueries map[string]string, fixedQueries FixedQueries, log logger.Logger) (*ResultEnvelope, error) {
	applied, err := b.GetAppliedFilters(userQueries, fixedQueries)
	if err != nil {
		return nil, err
	}

	// Fixed constraints live in the subset predicate; only the remaining
	// facets contribute should-groups.
	userApplied := applied.Clone()
	for key := range fixedQueries {
		delete(userApplied, key)
	}
	appliedQueries := b.schema.BuildAppliedQueries(userApplied, applied)

	query := b.schema.BuildRootQuery(appliedQueries, fixedQueries)
	aggregations := b.schema.BuildAggregations(applied, appliedQueries, fixedQueries, b.cfg.AggregationSize)

	envelope := &ResultEnvelope{
		AppliedFilters: applied,
		Results:        []Result{},
	}

	totalCount, err := b.client.Count(ctx, b.cfg.IndexName, query)
	if err != nil {
		return nil, err
	}

	envelope.computePageProperties(pageNumber, b.cfg.PageSize, totalCount)

	if totalCount == 0 {
		metrics.BrowseZeroResults.Inc()
		log.Debug("no documents matched, skipping search call", nil)
		return envelope, nil
	}

	result, err := b.client.Search(ctx, b.cfg.IndexName, &SearchRequest{
		From:         b.cfg.PageSize * (envelope.CurrentPage - 1),
		Size:         b.cfg.PageSize,
		Query:        query,
		Aggregations: aggregations,
		Sort:         b.buildSort(applied),
	})
	if err != nil {
		return nil, err
	}

	envelope.AvailableFilters = b.schema.buildAvailableFilters(result.Aggregations, fixedQueries)

	for _, hit := range result.Hits {
		envelope.Results = append(envelope.Results, Result{
			ID:       hit.ID,
			Name:     hit.SourceString("name"),
			URL:      hit.SourceString("url"),
			ImageURL: hit.SourceString("imageUrl"),
		})
	}

	return envelope, nil
}

// buildSort orders results by relevance when a text search is in play, with
// a keyword tiebreak so identical inputs always paginate identically.
func (b *Browser) buildSort(applied AppliedFilters) []interface{} {
	var sortClauses []interface{}
	if _, textApplied := applied[b.schema.TextKey()]; textApplied {
		sortClauses = append(sortClauses, "_score")
	}
	return append(sortClauses, map[string]interface{}{
		"keyword": "asc",
	})
}
