package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "catalog-browser/internal/common/errors"
)

// ElasticClient implements SearchClient against Elasticsearch.
type ElasticClient struct {
	es *elasticsearch.Client
}

// NewElasticClient wraps an Elasticsearch client.
func NewElasticClient(es *elasticsearch.Client) *ElasticClient {
	return &ElasticClient{es: es}
}

// Count returns the number of documents matching the query.
func (c *ElasticClient) Count(ctx context.Context, index string, query map[string]interface{}) (int64, error) {
	body, err := encodeBody(map[string]interface{}{
		"query": query,
	})
	if err != nil {
		return 0, err
	}

	res, err := c.es.Count(
		c.es.Count.WithContext(ctx),
		c.es.Count.WithIndex(index),
		c.es.Count.WithBody(body),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, apperrors.NewSearchTimeoutError("count")
		}
		return 0, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return 0, apperrors.NewIndexNotFoundError(index)
		}
		return 0, apperrors.NewSearchQueryFailedError("count", fmt.Errorf("status %s", res.Status()))
	}

	var out struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, apperrors.NewSearchQueryFailedError("count", err)
	}
	return out.Count, nil
}

// Search runs the windowed query.
func (c *ElasticClient) Search(ctx context.Context, index string, req *SearchRequest) (*SearchResult, error) {
	payload := map[string]interface{}{
		"query": req.Query,
	}
	if len(req.Aggregations) > 0 {
		payload["aggregations"] = req.Aggregations
	}
	if len(req.Sort) > 0 {
		payload["sort"] = req.Sort
	}

	body, err := encodeBody(payload)
	if err != nil {
		return nil, err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithFrom(req.From),
		c.es.Search.WithSize(req.Size),
		c.es.Search.WithBody(body),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewSearchTimeoutError("search")
		}
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return nil, apperrors.NewIndexNotFoundError(index)
		}
		return nil, apperrors.NewSearchQueryFailedError("search", fmt.Errorf("status %s", res.Status()))
	}

	var out struct {
		Hits struct {
			Hits []SearchHit `json:"hits"`
		} `json:"hits"`
		Aggregations map[string]Aggregation `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, apperrors.NewSearchQueryFailedError("search", err)
	}

	return &SearchResult{
		Hits:         out.Hits.Hits,
		Aggregations: out.Aggregations,
	}, nil
}

func encodeBody(payload map[string]interface{}) (*bytes.Reader, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query body: %w", err)
	}
	return bytes.NewReader(data), nil
}
