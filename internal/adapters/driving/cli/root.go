// Package cli implements the cobra command tree driving the ingestion
// and search services.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/calliope-labs/calliope/internal/adapters/driven/articlesource"
	s3blob "github.com/calliope-labs/calliope/internal/adapters/driven/blob/s3"
	"github.com/calliope-labs/calliope/internal/adapters/driven/config/file"
	openaiembed "github.com/calliope-labs/calliope/internal/adapters/driven/embedding/openai"
	openaillm "github.com/calliope-labs/calliope/internal/adapters/driven/llm/openai"
	coherererank "github.com/calliope-labs/calliope/internal/adapters/driven/reranker/cohere"
	"github.com/calliope-labs/calliope/internal/adapters/driven/storage/sqlite"
	"github.com/calliope-labs/calliope/internal/adapters/driven/tokenizer/tiktoken"
	qdrantindex "github.com/calliope-labs/calliope/internal/adapters/driven/vector/qdrant"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
	"github.com/calliope-labs/calliope/internal/core/ports/driving"
	"github.com/calliope-labs/calliope/internal/core/services"
	"github.com/calliope-labs/calliope/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

// Services wired by Execute. Commands check for nil so partial
// configuration degrades to a clear error instead of a panic.
var (
	configStore      driven.ConfigStore
	ingestionService driving.IngestionService
	searchService    driving.SearchService
)

var rootCmd = &cobra.Command{
	Use:   "calliope",
	Short: "Encyclopedia article ingestion and hybrid search",
	Long: `Calliope ingests encyclopedia articles into a local chunk store and
vector index, and answers queries with hybrid retrieval: BM25 and
vector search fused by reciprocal rank, optionally reranked.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute wires services from configuration and runs the command tree.
func Execute() error {
	if err := initServices(); err != nil {
		return err
	}
	return rootCmd.Execute()
}

// initServices constructs the adapter stack from configuration.
// Missing optional pieces (reranker, blob store) are skipped; missing
// required pieces leave the dependent service nil.
func initServices() error {
	// A local .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := file.NewConfigStore(os.Getenv("CALLIOPE_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	configStore = cfg

	store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening chunk store: %w", err)
	}

	openaiKey := setting(cfg, "openai.api_key", "OPENAI_API_KEY")
	if openaiKey == "" {
		logger.Warn("No OpenAI API key configured; ingestion and search are unavailable")
		return nil
	}

	embedder, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  openaiKey,
		BaseURL: setting(cfg, "openai.base_url", "OPENAI_BASE_URL"),
		Model:   cfg.GetString("openai.embedding_model"),
	})
	if err != nil {
		return fmt.Errorf("creating embedding service: %w", err)
	}

	qdrantAddr := cfg.GetString("qdrant.address")
	if qdrantAddr == "" {
		qdrantAddr = "localhost:6334"
	}
	collection := cfg.GetString("qdrant.collection")
	if collection == "" {
		collection = "calliope-chunks"
	}
	vectors, err := qdrantindex.NewIndex(qdrantAddr, collection, embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("connecting to vector index: %w", err)
	}

	var reranker driven.Reranker
	if key := setting(cfg, "cohere.api_key", "COHERE_API_KEY"); key != "" {
		r, err := coherererank.NewReranker(key, cfg.GetString("cohere.model"))
		if err != nil {
			return fmt.Errorf("creating reranker: %w", err)
		}
		reranker = r
	} else {
		logger.Debug("No Cohere API key configured, reranking disabled")
	}

	var blobs driven.BlobStore
	if bucket := setting(cfg, "s3.bucket", "CALLIOPE_S3_BUCKET"); bucket != "" {
		b, err := s3blob.NewBlobStore(context.Background(), s3blob.Config{
			Bucket:       bucket,
			Region:       cfg.GetString("s3.region"),
			Endpoint:     cfg.GetString("s3.endpoint"),
			UsePathStyle: cfg.GetBool("s3.use_path_style"),
		})
		if err != nil {
			return fmt.Errorf("creating blob store: %w", err)
		}
		blobs = b
	} else {
		logger.Debug("No S3 bucket configured, generation text not persisted")
	}

	searchService = services.NewSearchService(store, vectors, embedder, reranker, blobs)

	baseURL := setting(cfg, "source.base_url", "CALLIOPE_SOURCE_URL")
	if baseURL == "" {
		logger.Warn("No article source configured; ingestion is unavailable")
		return nil
	}
	source, err := articlesource.NewSource(articlesource.Config{
		BaseURL:           baseURL,
		DescriptionSuffix: cfg.GetString("source.description_suffix"),
	})
	if err != nil {
		return fmt.Errorf("creating article source: %w", err)
	}

	tokenizer, err := tiktoken.NewTokenizer(cfg.GetString("chunker.encoding"))
	if err != nil {
		return fmt.Errorf("loading tokenizer: %w", err)
	}

	converter, err := openaillm.NewConverter(openaillm.Config{
		APIKey:  openaiKey,
		BaseURL: setting(cfg, "openai.base_url", "OPENAI_BASE_URL"),
		Model:   cfg.GetString("openai.chat_model"),
	})
	if err != nil {
		return fmt.Errorf("creating converter: %w", err)
	}

	var uploaderOpts []services.UploaderOption
	if rate := cfg.GetFloat("embeddings.rate_limit"); rate > 0 {
		uploaderOpts = append(uploaderOpts, services.WithRateLimit(rate))
	}
	uploader := services.NewUploader(embedder, vectors, uploaderOpts...)

	ingestionService = services.NewIngestionService(
		source,
		store,
		vectors,
		blobs,
		tokenizer,
		services.NewUnitBuilder(converter),
		uploader,
		cfg.GetInt("chunker.max_tokens"),
	)

	return nil
}

// setting reads a config key, falling back to an environment variable.
func setting(cfg driven.ConfigStore, key, envVar string) string {
	if v := cfg.GetString(key); v != "" {
		return v
	}
	return os.Getenv(envVar)
}
