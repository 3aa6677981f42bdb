// cmd/catalog-browser/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"catalog-browser/internal/browser"
	"catalog-browser/internal/cache"
	"catalog-browser/internal/common/config"
	"catalog-browser/internal/common/database"
	"catalog-browser/internal/common/logger"
	"catalog-browser/internal/common/observability"
)

// routes maps a browse route slug to its pinned query set, mirroring the
// catalog's URL structure: /villagers, /items, and one route per clothing
// category.
var routes = map[string]browser.FixedQueries{
	"villagers":   {"type": {"villager"}},
	"items":       {"type": {"item"}},
	"accessories": {"category": {"Accessories"}},
	"bottoms":     {"category": {"Bottoms"}},
	"dresses":     {"category": {"Dresses"}},
	"hats":        {"category": {"Hats"}},
	"shoes":       {"category": {"Shoes"}},
	"socks":       {"category": {"Socks"}},
	"tops":        {"category": {"Tops"}},
	"umbrellas":   {"category": {"Umbrellas"}},
	"wetsuits":    {"category": {"Wetsuits"}},
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	route := flag.String("route", "villagers", "browse route slug (villagers, items, or an item category)")
	page := flag.String("page", "1", "page number")
	query := flag.String("query", "", "user filters as a URL query string, e.g. \"q=tom&species=cat,dog\"")
	timeout := flag.Duration("timeout", 30*time.Second, "browse timeout")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	fixed, ok := routes[*route]
	if !ok {
		zapLog.Fatal("unknown route", zap.String("route", *route))
	}

	userQueries, err := parseUserQueries(*query)
	if err != nil {
		zapLog.Fatal("bad query string", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("catalog-browser")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	engine := browser.New(
		browser.NewElasticClient(esClient.Client),
		browser.DefaultSchema(),
		cfg.Search,
		log,
	)

	// --- Init Redis cache when a TTL is configured ---
	var facade cache.Facade = engine
	if cfg.Search.CacheTTL > 0 {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")

		ttl := time.Duration(cfg.Search.CacheTTL) * time.Second
		facade = cache.New(engine, redis, ttl, log)
	}

	// --- Health/Metrics Server ---
	if cfg.Metrics.Enabled {
		go func() {
			http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	browseCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	started := time.Now()
	envelope, err := facade.Browse(browseCtx, browser.ParsePageNumber(*page), userQueries, fixed)
	status := "ok"
	if err != nil {
		status = "error"
	}
	obs.RecordBrowse(browseCtx, status)
	obs.RecordBrowseDuration(browseCtx, time.Since(started), status)
	if err != nil {
		zapLog.Fatal("browse failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		zapLog.Fatal("failed to encode envelope", zap.Error(err))
	}
	fmt.Fprintln(os.Stdout, string(out))
}

// parseUserQueries turns a URL query string into the single-valued map the
// sanitizer expects. Repeated keys collapse into one comma-separated value.
func parseUserQueries(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, err
	}

	queries := make(map[string]string, len(values))
	for key, vals := range values {
		queries[key] = strings.Join(vals, ",")
	}
	return queries, nil
}
