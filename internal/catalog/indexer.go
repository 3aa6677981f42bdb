package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"catalog-browser/internal/common/database"
	"catalog-browser/internal/common/errors"
	"catalog-browser/internal/common/logger"
	"catalog-browser/internal/common/metrics"
)

// indexMapping is the search index mapping. Facet fields are keywords so
// term queries and terms aggregations match exactly; personality is nested
// so game and value pair up within one sub-document.
var indexMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"type":     map[string]interface{}{"type": "keyword"},
			"keyword":  map[string]interface{}{"type": "keyword"},
			"name":     map[string]interface{}{"type": "text"},
			"phrase":   map[string]interface{}{"type": "text"},
			"url":      map[string]interface{}{"type": "keyword", "index": false},
			"imageUrl": map[string]interface{}{"type": "keyword", "index": false},
			"game":     map[string]interface{}{"type": "keyword"},
			"gender":   map[string]interface{}{"type": "keyword"},
			"species":  map[string]interface{}{"type": "keyword"},
			"zodiac":   map[string]interface{}{"type": "keyword"},
			"category": map[string]interface{}{"type": "keyword"},
			"personality": map[string]interface{}{
				"type": "nested",
				"properties": map[string]interface{}{
					"game":  map[string]interface{}{"type": "keyword"},
					"value": map[string]interface{}{"type": "keyword"},
				},
			},
		},
	},
}

// Indexer writes catalog documents into the search index.
type Indexer struct {
	db        *database.ElasticsearchClient
	indexName string
	logger    logger.Logger
}

// NewIndexer creates an Indexer targeting indexName.
func NewIndexer(db *database.ElasticsearchClient, indexName string, log logger.Logger) *Indexer {
	return &Indexer{
		db:        db,
		indexName: indexName,
		logger:    log.WithFields(map[string]interface{}{"component": "indexer", "index": indexName}),
	}
}

// EnsureIndex creates the index with its mapping if it does not exist yet.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	es := i.db.Client

	res, err := es.Indices.Exists([]string{i.indexName}, es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}
	if res.StatusCode != 404 {
		return errors.NewIndexingFailedError(fmt.Errorf("index existence check returned %s", res.Status()))
	}

	body, err := json.Marshal(indexMapping)
	if err != nil {
		return fmt.Errorf("failed to encode index mapping: %w", err)
	}

	createRes, err := es.Indices.Create(
		i.indexName,
		es.Indices.Create.WithContext(ctx),
		es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return errors.NewIndexingFailedError(fmt.Errorf("index creation returned %s", createRes.Status()))
	}

	i.logger.Info("created search index", nil)
	return nil
}

// Index writes one document, replacing any previous version with the same
// document id.
func (i *Indexer) Index(ctx context.Context, doc *Document) error {
	es := i.db.Client

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	res, err := es.Index(
		i.indexName,
		bytes.NewReader(body),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(doc.DocumentID()),
	)
	if err != nil {
		metrics.DocumentsIndexed.WithLabelValues("error").Inc()
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.DocumentsIndexed.WithLabelValues("error").Inc()
		return errors.NewIndexingFailedError(fmt.Errorf("indexing %s returned %s", doc.DocumentID(), res.Status()))
	}

	metrics.DocumentsIndexed.WithLabelValues("success").Inc()
	i.logger.Debug("indexed document", map[string]interface{}{"document_id": doc.DocumentID()})
	return nil
}
