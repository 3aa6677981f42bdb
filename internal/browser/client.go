package browser

import (
	"context"
	"encoding/json"
	"fmt"
)

// SearchClient is the minimal engine contract the browse pipeline needs.
// The production implementation talks to Elasticsearch; tests substitute a
// recording fake.
type SearchClient interface {
	// Count returns how many documents match the query.
	Count(ctx context.Context, index string, query map[string]interface{}) (int64, error)
	// Search runs the windowed query with aggregations and sorting.
	Search(ctx context.Context, index string, req *SearchRequest) (*SearchResult, error)
}

// SearchRequest is one windowed search call.
type SearchRequest struct {
	From         int
	Size         int
	Query        map[string]interface{}
	Aggregations map[string]interface{}
	Sort         []interface{}
}

// SearchHit is a single matching document.
type SearchHit struct {
	ID     string                 `json:"_id"`
	Source map[string]interface{} `json:"_source"`
}

// SourceString returns a string field from the hit's source, or "".
func (h *SearchHit) SourceString(field string) string {
	if v, ok := h.Source[field].(string); ok {
		return v
	}
	return ""
}

// SearchResult is the decoded engine response.
type SearchResult struct {
	Hits         []SearchHit
	Aggregations map[string]Aggregation
}

// Bucket is one terms-aggregation bucket.
type Bucket struct {
	Key      string
	DocCount int64
}

func (b *Bucket) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key         interface{} `json:"key"`
		KeyAsString string      `json:"key_as_string"`
		DocCount    int64       `json:"doc_count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.DocCount = raw.DocCount
	if s, ok := raw.Key.(string); ok {
		b.Key = s
	} else if raw.KeyAsString != "" {
		b.Key = raw.KeyAsString
	} else {
		b.Key = fmt.Sprintf("%v", raw.Key)
	}
	return nil
}

// Aggregation is one node of the engine's aggregation response tree: a
// doc_count for filter/nested scopes, buckets for terms scopes, and named
// children for everything nested below.
type Aggregation struct {
	DocCount int64
	Buckets  []Bucket
	Sub      map[string]Aggregation
}

// Reserved response keys that are not sub-aggregations.
var aggregationMetaKeys = map[string]bool{
	"doc_count":                   true,
	"buckets":                     true,
	"meta":                        true,
	"doc_count_error_upper_bound": true,
	"sum_other_doc_count":         true,
}

func (a *Aggregation) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		switch key {
		case "doc_count":
			if err := json.Unmarshal(value, &a.DocCount); err != nil {
				return err
			}
		case "buckets":
			if err := json.Unmarshal(value, &a.Buckets); err != nil {
				return err
			}
		default:
			if aggregationMetaKeys[key] || len(value) == 0 || value[0] != '{' {
				continue
			}
			var sub Aggregation
			if err := json.Unmarshal(value, &sub); err != nil {
				return err
			}
			if a.Sub == nil {
				a.Sub = map[string]Aggregation{}
			}
			a.Sub[key] = sub
		}
	}
	return nil
}

// Descend walks named children, returning the node at the path and whether
// every step existed.
func (a Aggregation) Descend(path ...string) (Aggregation, bool) {
	node := a
	for _, name := range path {
		child, ok := node.Sub[name]
		if !ok {
			return Aggregation{}, false
		}
		node = child
	}
	return node, true
}
