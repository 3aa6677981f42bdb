// cmd/tools/index-builder/main.go
//
// Rebuilds the search index from a directory of catalog entity files.
// Expects the layout the catalog data is maintained in:
//
//	<dir>/villagers/*.json
//	<dir>/items/*.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"catalog-browser/internal/catalog"
	"catalog-browser/internal/common/config"
	"catalog-browser/internal/common/database"
	"catalog-browser/internal/common/logger"
)

var typeDirs = map[string]string{
	"villagers": catalog.TypeVillager,
	"items":     catalog.TypeItem,
}

func main() {
	dir := flag.String("dir", "data", "directory holding villagers/ and items/ JSON files")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall indexing timeout")
	flag.Parse()

	log := logger.NewStructured("info", "console")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		fmt.Printf("Error creating Elasticsearch client: %v\n", err)
		os.Exit(1)
	}
	if err := esClient.Ping(); err != nil {
		fmt.Printf("Error reaching Elasticsearch: %v\n", err)
		os.Exit(1)
	}

	validator, err := catalog.NewValidator()
	if err != nil {
		fmt.Printf("Error compiling schemas: %v\n", err)
		os.Exit(1)
	}
	indexer := catalog.NewIndexer(esClient, cfg.Search.IndexName, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := indexer.EnsureIndex(ctx); err != nil {
		fmt.Printf("Error preparing index: %v\n", err)
		os.Exit(1)
	}

	indexed, failed := 0, 0
	for subdir, entityType := range typeDirs {
		files, err := filepath.Glob(filepath.Join(*dir, subdir, "*.json"))
		if err != nil {
			fmt.Printf("Error listing %s: %v\n", subdir, err)
			os.Exit(1)
		}

		for _, file := range files {
			if err := indexFile(ctx, validator, indexer, entityType, file); err != nil {
				fmt.Printf("Error indexing %s: %v\n", file, err)
				failed++
				continue
			}
			indexed++
		}
	}

	fmt.Printf("Indexed %d documents, %d failures\n", indexed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func indexFile(ctx context.Context, validator *catalog.Validator, indexer *catalog.Indexer, entityType, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var entity map[string]interface{}
	if err := json.Unmarshal(data, &entity); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := validator.Validate(entityType, entity); err != nil {
		return err
	}

	var doc *catalog.Document
	switch entityType {
	case catalog.TypeVillager:
		doc, err = catalog.BuildVillagerDocument(entity)
	case catalog.TypeItem:
		doc, err = catalog.BuildItemDocument(entity)
	default:
		return fmt.Errorf("unknown entity type %q", entityType)
	}
	if err != nil {
		return err
	}

	return indexer.Index(ctx, doc)
}
