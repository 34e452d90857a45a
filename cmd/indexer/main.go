// Command indexer builds the assessment catalog: it reads scraped catalog
// JSON, embeds each record's document text, writes the records to Redis and
// (re)creates the vector index. Runs offline; the API server only reads.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skillmatch-cloud/skillmatch/internal/config"
	dbRedis "github.com/skillmatch-cloud/skillmatch/internal/db/redis"
	"github.com/skillmatch-cloud/skillmatch/internal/domain"
	logpkg "github.com/skillmatch-cloud/skillmatch/internal/logger"
	"github.com/skillmatch-cloud/skillmatch/internal/metrics"
	catalogrepo "github.com/skillmatch-cloud/skillmatch/internal/repository/catalog"
	"github.com/skillmatch-cloud/skillmatch/internal/repository/embcache"
	indexrepo "github.com/skillmatch-cloud/skillmatch/internal/repository/index"
	openaiTransport "github.com/skillmatch-cloud/skillmatch/internal/transport/openai"
)

// embedBatchSize bounds one embedding API call.
const embedBatchSize = 64

// catalogRecord mirrors one entry of the scraped catalog JSON.
type catalogRecord struct {
	Name            string   `json:"name"`
	URL             string   `json:"url"`
	Description     string   `json:"description"`
	TestType        string   `json:"test_type"`
	DurationMinutes int      `json:"duration_minutes"`
	SkillsMeasured  []string `json:"skills_measured"`
}

func main() {
	catalogPath := flag.String("catalog", "data/assessments.json", "path to the scraped catalog JSON")
	recreate := flag.Bool("recreate", false, "drop the existing index and records before loading")
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, *catalogPath, *recreate, logger); err != nil {
		logger.Fatal("Indexing failed", zap.Error(err))
	}
}

func run(cfg config.Config, catalogPath string, recreate bool, logger *zap.Logger) error {
	records, err := readCatalog(catalogPath, logger)
	if err != nil {
		return err
	}
	logger.Info("Catalog file loaded",
		zap.String("path", catalogPath),
		zap.Int("assessments", len(records)),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	metrics.RegisterPipelineMetrics()

	embedder := buildDocumentEmbedder(cfg.Embedding, store, logger)

	vectors, err := embedAll(ctx, embedder, records, logger)
	if err != nil {
		return err
	}

	catalogRepo := catalogrepo.New(store)
	idxRepo := indexrepo.New(store)

	if recreate {
		logger.Info("Recreating catalog from scratch")
		if err := store.DropIndex(ctx, indexrepo.Name); err != nil {
			logger.Warn("Drop index failed (may not exist yet)", zap.Error(err))
		}
		if err := catalogRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete records: %w", err)
		}
	}

	if err := catalogRepo.UpsertAll(ctx, records, vectors); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	logger.Info("Records written", zap.Int("count", len(records)))

	exists, err := idxRepo.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if !exists {
		if err := store.CreateIndex(ctx, indexrepo.Definition(cfg.Embedding.Dimensions)); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		logger.Info("Vector index created",
			zap.String("name", indexrepo.Name),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Info("Vector index already exists", zap.String("name", indexrepo.Name))
	}

	logger.Info("Indexing complete", zap.Int("assessments", len(records)))
	return nil
}

// readCatalog parses the scraped catalog JSON into assessment records.
// Records with an unknown test type are skipped, not fatal.
func readCatalog(path string, logger *zap.Logger) ([]domain.Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var raw []catalogRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	records := make([]domain.Assessment, 0, len(raw))
	for _, rec := range raw {
		category, err := domain.ParseCategory(rec.TestType)
		if err != nil {
			logger.Warn("Skipping record", zap.String("name", rec.Name), zap.Error(err))
			continue
		}
		records = append(records, domain.Assessment{
			ID:              slug(rec.Name),
			Name:            rec.Name,
			URL:             rec.URL,
			Description:     rec.Description,
			Category:        category,
			DurationMinutes: rec.DurationMinutes,
			Skills:          rec.SkillsMeasured,
			Seq:             len(records),
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no usable records", path)
	}
	return records, nil
}

// embedAll embeds document texts in bounded batches. The cache decorator
// makes re-runs cheap: unchanged records hit the cache.
func embedAll(
	ctx context.Context,
	embedder domain.Embedder,
	records []domain.Assessment,
	logger *zap.Logger,
) ([][]float32, error) {
	texts := make([]string, len(records))
	for i := range records {
		texts[i] = records[i].Document()
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		var (
			res domain.BatchEmbeddingResult
			err error
		)
		if be, ok := embedder.(domain.BatchEmbedder); ok {
			res, err = be.BatchEmbed(ctx, texts[start:end])
		} else {
			res, err = domain.BatchFallback(ctx, embedder, texts[start:end])
		}
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}

		vectors = append(vectors, res.Embeddings...)
		logger.Info("Embedded batch",
			zap.Int("done", end),
			zap.Int("total", len(texts)),
			zap.Int("tokens", res.TotalTokens),
		)
	}
	return vectors, nil
}

// buildDocumentEmbedder assembles the same chain as the server, with the
// document instruction instead of the query instruction.
func buildDocumentEmbedder(cfg config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Logger:     logger,
	})

	var embedder domain.Embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)

	if cfg.DocumentInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.DocumentInstruction)
	}
	return embedder
}

// slug derives a stable record ID from the assessment name.
func slug(name string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
