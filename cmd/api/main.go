// Package main implements the ClaimLens API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ClaimLensAI/claimlens-mvp/engine/graph"
	"github.com/ClaimLensAI/claimlens-mvp/engine/router"
	"github.com/ClaimLensAI/claimlens-mvp/engine/semantic"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/metrics"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/mid"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/ollama"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/openaiembed"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	QdrantURL    string
	Collection   string
	OllamaURL    string
	EmbedModel   string
	OpenAIKey    string
	Neo4jURL     string
	Neo4jUser    string
	Neo4jPass    string
	Neo4jEnabled bool
	CORSOrigin   string
}

func loadConfig() Config {
	return Config{
		Port:         envOr("PORT", "8080"),
		QdrantURL:    envOr("QDRANT_URL", "localhost:6334"),
		Collection:   envOr("QDRANT_COLLECTION", "claims"),
		OllamaURL:    envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:   envOr("EMBED_MODEL", "nomic-embed-text"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		Neo4jURL:     envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:    envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:    envOr("NEO4J_PASS", "password"),
		Neo4jEnabled: os.Getenv("NEO4J_ENABLED") == "true",
		CORSOrigin:   envOr("CORS_ORIGIN", "*"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to Qdrant ---
	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	// --- Embedder: OpenAI when a key is set, local Ollama otherwise ---
	var embedder router.Embedder
	if cfg.OpenAIKey != "" {
		embedder = openaiembed.New(cfg.OpenAIKey, "")
		logger.Info("using openai embedder")
	} else {
		embedder = ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel)
		logger.Info("using ollama embedder", "model", cfg.EmbedModel)
	}

	// --- Neo4j enrichment (optional) ---
	var enricher router.Enricher
	if cfg.Neo4jEnabled {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(ctx)
		enricher = graph.New(driver)
	}

	routerSvc := router.New(embedder, vectorStore, enricher, router.DefaultOptions(), logger)

	reg := metrics.New()

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("POST /api/query", handleQuery(routerSvc, reg, logger))

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.Metrics(reg),
		mid.OTel("claimlens-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// QueryRequest is the JSON body for POST /api/query.
type QueryRequest struct {
	Question string `json:"question"`
}

func handleQuery(svc *router.Service, reg *metrics.Registry, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Question == "" {
			http.Error(w, `{"error":"question is required"}`, http.StatusBadRequest)
			return
		}

		res, err := svc.Ask(r.Context(), req.Question)
		if err != nil {
			logger.Error("query failed", "err", err)
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		reg.Counter(
			metrics.WithLabels("claimlens_queries_total", "intent", res.Intent()),
			"Queries answered, by routed intent.",
		).Inc()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(queryResponse(res))
	}
}

// queryResponse tags the routed result with its intent so clients can
// dispatch without sniffing fields.
func queryResponse(res router.Result) map[string]any {
	return map[string]any{
		"type":   res.Intent(),
		"result": res,
	}
}
