// test/e2e/e2e_test.go
//
// End-to-end tests against a live Elasticsearch (and optionally Redis).
// Run with the services from the development environment up:
//
//	ELASTICSEARCH_URL=http://localhost:9200 go test ./test/e2e/...
//
// Tests are skipped when ELASTICSEARCH_URL is unset or in short mode.
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-browser/internal/browser"
	"catalog-browser/internal/catalog"
	"catalog-browser/internal/common/config"
	"catalog-browser/internal/common/database"
	"catalog-browser/internal/common/logger"
)

var (
	esClient  *database.ElasticsearchClient
	indexName string
)

func TestMain(m *testing.M) {
	url := os.Getenv("ELASTICSEARCH_URL")
	if url == "" {
		// Individual tests skip themselves.
		os.Exit(m.Run())
	}

	var err error
	esClient, err = database.NewElasticsearch(config.ElasticsearchConfig{URL: url})
	if err != nil {
		fmt.Printf("failed to create elasticsearch client: %v\n", err)
		os.Exit(1)
	}
	if err := esClient.Ping(); err != nil {
		fmt.Printf("elasticsearch not reachable: %v\n", err)
		os.Exit(1)
	}

	// Throwaway index per run so tests never touch real data.
	indexName = "entity-e2e-" + uuid.NewString()[:8]

	code := m.Run()

	res, err := esClient.Client.Indices.Delete([]string{indexName})
	if err == nil {
		res.Body.Close()
	}

	os.Exit(code)
}

func requireLiveCluster(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e tests in short mode")
	}
	if esClient == nil {
		t.Skip("ELASTICSEARCH_URL not set")
	}
}

func searchConfig() config.SearchConfig {
	return config.SearchConfig{
		IndexName:       indexName,
		PageSize:        25,
		MaxQueryLength:  64,
		AggregationSize: 50,
	}
}

func seedCatalog(ctx context.Context, t *testing.T) {
	t.Helper()

	validator, err := catalog.NewValidator()
	require.NoError(t, err)

	indexer := catalog.NewIndexer(esClient, indexName, logger.NewTestLogger(t))
	require.NoError(t, indexer.EnsureIndex(ctx))

	villagers := []map[string]interface{}{
		{
			"id": "tom", "name": "Tom", "gender": "male", "species": "cat",
			"birthday": "12-10",
			"games": map[string]interface{}{
				"nl": map[string]interface{}{"personality": "cranky"},
				"ww": map[string]interface{}{"personality": "cranky"},
			},
		},
		{
			"id": "rosie", "name": "Rosie", "gender": "female", "species": "cat",
			"birthday": "02-27",
			"games": map[string]interface{}{
				"nl": map[string]interface{}{"personality": "peppy", "phrase": "silly billy"},
			},
		},
		{
			"id": "goldie", "name": "Goldie", "gender": "female", "species": "dog",
			"birthday": "12-27",
			"games": map[string]interface{}{
				"nl": map[string]interface{}{"personality": "normal"},
			},
		},
	}

	for _, entity := range villagers {
		require.NoError(t, validator.Validate(catalog.TypeVillager, entity))
		doc, err := catalog.BuildVillagerDocument(entity)
		require.NoError(t, err)
		require.NoError(t, indexer.Index(ctx, doc))
	}

	// Make the seeded documents visible to search immediately.
	res, err := esClient.Client.Indices.Refresh(
		esClient.Client.Indices.Refresh.WithIndex(indexName),
		esClient.Client.Indices.Refresh.WithContext(ctx),
	)
	require.NoError(t, err)
	res.Body.Close()
}

func TestBrowseRoundTrip(t *testing.T) {
	requireLiveCluster(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seedCatalog(ctx, t)

	engine := browser.New(
		browser.NewElasticClient(esClient.Client),
		browser.DefaultSchema(),
		searchConfig(),
		logger.NewTestLogger(t),
	)

	t.Run("unfiltered browse returns the whole catalog", func(t *testing.T) {
		envelope, err := engine.Browse(ctx, 1, nil, browser.FixedQueries{"type": {"villager"}})
		require.NoError(t, err)

		assert.EqualValues(t, 3, envelope.TotalCount)
		assert.Equal(t, 1, envelope.TotalPages)
		require.Len(t, envelope.Results, 3)
		// Default sort is keyword ascending.
		assert.Equal(t, "Goldie", envelope.Results[0].Name)
	})

	t.Run("exact facet narrows results and recomputes counts", func(t *testing.T) {
		envelope, err := engine.Browse(ctx, 1, map[string]string{"species": "cat"}, browser.FixedQueries{"type": {"villager"}})
		require.NoError(t, err)

		assert.EqualValues(t, 2, envelope.TotalCount)

		var species *browser.AvailableFilter
		for i := range envelope.AvailableFilters {
			if envelope.AvailableFilters[i].Key == "species" {
				species = &envelope.AvailableFilters[i]
			}
		}
		require.NotNil(t, species, "species facet must stay available")
		// Self-excluding counts: dog remains offered while cat is selected.
		values := map[string]int64{}
		for _, v := range species.Values {
			values[v.Value] = v.Count
		}
		assert.EqualValues(t, 2, values["cat"])
		assert.EqualValues(t, 1, values["dog"])
	})

	t.Run("game-dependent facet matches within one game", func(t *testing.T) {
		envelope, err := engine.Browse(ctx, 1, map[string]string{
			"personality": "cranky",
			"game":        "ww",
		}, browser.FixedQueries{"type": {"villager"}})
		require.NoError(t, err)

		require.Len(t, envelope.Results, 1)
		assert.Equal(t, "Tom", envelope.Results[0].Name)
	})

	t.Run("text search ranks matches by relevance", func(t *testing.T) {
		envelope, err := engine.Browse(ctx, 1, map[string]string{"q": "rosie"}, browser.FixedQueries{"type": {"villager"}})
		require.NoError(t, err)

		require.NotEmpty(t, envelope.Results)
		assert.Equal(t, "Rosie", envelope.Results[0].Name)
	})

	t.Run("text search matches catchphrases fuzzily", func(t *testing.T) {
		envelope, err := engine.Browse(ctx, 1, map[string]string{"q": "sily billy"}, browser.FixedQueries{"type": {"villager"}})
		require.NoError(t, err)

		require.NotEmpty(t, envelope.Results)
		assert.Equal(t, "Rosie", envelope.Results[0].Name)
	})
}
