// Command ingest loads the claims workbook into Qdrant, or runs as a NATS
// consumer for live single-claim ingestion. With -publish it reads the
// workbook and publishes each row to the ingest subject instead of writing
// to the store directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"

	"github.com/ClaimLensAI/claimlens-mvp/engine/graph"
	"github.com/ClaimLensAI/claimlens-mvp/engine/ingest"
	"github.com/ClaimLensAI/claimlens-mvp/engine/semantic"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/metrics"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/natsutil"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/ollama"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/openaiembed"
)

var met = metrics.New()

var (
	mRowsLoaded    = met.Counter("claimlens_ingest_rows_total", "Rows loaded into the collection")
	mRowsFailed    = met.Counter("claimlens_ingest_row_errors_total", "Rows rejected during ingestion")
	mReloads       = met.Counter("claimlens_ingest_reloads_total", "Collection rebuilds performed")
	mReloadDur     = met.Histogram("claimlens_ingest_reload_duration_seconds", "Bulk reload wall time", nil)
	mRowsPublished = met.Counter("claimlens_ingest_rows_published_total", "Rows published to NATS")
)

const vectorDims = 768 // nomic-embed-text

func main() {
	var (
		file        = flag.String("file", "", "claims CSV to load (bulk reload mode)")
		consume     = flag.Bool("consume", false, "run as a NATS consumer for live claims")
		publish     = flag.Bool("publish", false, "publish CSV rows to NATS instead of loading")
		natsURL     = flag.String("nats", nats.DefaultURL, "NATS server URL")
		ollamaURL   = flag.String("ollama", "http://localhost:11434", "Ollama base URL")
		ollamaModel = flag.String("model", "nomic-embed-text", "Ollama embedding model")
		qdrantAddr  = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection  = flag.String("collection", "claims", "Qdrant collection name")
		neo4jURL    = flag.String("neo4j", "", "Neo4j bolt URL (empty disables the graph)")
		neo4jUser   = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass   = flag.String("neo4j-pass", "password", "Neo4j password")
		embedRate   = flag.Float64("embed-rate", 0, "embedder calls per second, 0 for unlimited")
		metricsPort = flag.Int("metrics-port", 9091, "metrics listen port, 0 disables")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *metricsPort > 0 {
		go serveMetrics(*metricsPort, log)
	}

	switch {
	case *publish:
		if *file == "" {
			log.Error("-publish requires -file")
			os.Exit(1)
		}
		if err := publishRows(ctx, *file, *natsURL, log); err != nil {
			log.Error("publish failed", "error", err)
			os.Exit(1)
		}
	case *consume:
		if err := runConsumer(ctx, consumerConfig{
			natsURL:     *natsURL,
			ollamaURL:   *ollamaURL,
			ollamaModel: *ollamaModel,
			qdrantAddr:  *qdrantAddr,
			collection:  *collection,
			neo4jURL:    *neo4jURL,
			neo4jUser:   *neo4jUser,
			neo4jPass:   *neo4jPass,
		}, log); err != nil {
			log.Error("consumer failed", "error", err)
			os.Exit(1)
		}
	case *file != "":
		if err := reload(ctx, reloadConfig{
			file:        *file,
			ollamaURL:   *ollamaURL,
			ollamaModel: *ollamaModel,
			qdrantAddr:  *qdrantAddr,
			collection:  *collection,
			neo4jURL:    *neo4jURL,
			neo4jUser:   *neo4jUser,
			neo4jPass:   *neo4jPass,
			embedRate:   *embedRate,
		}, log); err != nil {
			log.Error("reload failed", "error", err)
			os.Exit(1)
		}
	default:
		log.Error("nothing to do: pass -file, -consume, or -publish")
		os.Exit(1)
	}
}

type reloadConfig struct {
	file        string
	ollamaURL   string
	ollamaModel string
	qdrantAddr  string
	collection  string
	neo4jURL    string
	neo4jUser   string
	neo4jPass   string
	embedRate   float64
}

func reload(ctx context.Context, cfg reloadConfig, log *slog.Logger) error {
	f, err := os.Open(cfg.file)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.file, err)
	}
	defer f.Close()

	claims, err := ingest.ReadClaims(f)
	if err != nil {
		return fmt.Errorf("read claims: %w", err)
	}
	log.Info("claims parsed", "file", cfg.file, "rows", len(claims))

	vs, err := semantic.New(cfg.qdrantAddr, cfg.collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vs.Close()

	deps := ingest.Deps{
		Embedder: newEmbedder(cfg.ollamaURL, cfg.ollamaModel, log),
		Logger:   log,
	}
	gw, closeGraph, err := newGraph(ctx, cfg.neo4jURL, cfg.neo4jUser, cfg.neo4jPass, log)
	if err != nil {
		return err
	}
	defer closeGraph()
	deps.Graph = gw

	loader := ingest.NewLoader(deps, vs, ingest.LoaderOpts{
		Dims:      vectorDims,
		EmbedRate: rate.Limit(cfg.embedRate),
	})

	start := time.Now()
	n, err := loader.Reload(ctx, claims)
	mReloadDur.Since(start)
	mReloads.Inc()
	mRowsLoaded.Add(int64(n))
	if err != nil {
		mRowsFailed.Inc()
		return fmt.Errorf("reload: %w", err)
	}
	log.Info("reload complete", "rows", n, "took", time.Since(start).Round(time.Millisecond))
	return nil
}

type consumerConfig struct {
	natsURL     string
	ollamaURL   string
	ollamaModel string
	qdrantAddr  string
	collection  string
	neo4jURL    string
	neo4jUser   string
	neo4jPass   string
}

func runConsumer(ctx context.Context, cfg consumerConfig, log *slog.Logger) error {
	nc, err := nats.Connect(cfg.natsURL)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	vs, err := semantic.New(cfg.qdrantAddr, cfg.collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vs.Close()
	if err := vs.EnsureCollection(ctx, vectorDims); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	deps := ingest.Deps{
		Embedder: newEmbedder(cfg.ollamaURL, cfg.ollamaModel, log),
		Vectors:  vs,
		Logger:   log,
	}
	gw, closeGraph, err := newGraph(ctx, cfg.neo4jURL, cfg.neo4jUser, cfg.neo4jPass, log)
	if err != nil {
		return err
	}
	defer closeGraph()
	deps.Graph = gw

	sub, err := ingest.StartConsumer(nc, deps)
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer sub.Unsubscribe()

	log.Info("consuming claims", "subject", ingest.IngestSubject)
	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

func publishRows(ctx context.Context, file, natsURL string, log *slog.Logger) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	claims, err := ingest.ReadClaims(f)
	if err != nil {
		return fmt.Errorf("read claims: %w", err)
	}

	nc, err := nats.Connect(natsURL)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	for i, c := range claims {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := ingest.Message{Claim: c, Ordinal: i}
		if err := natsutil.Publish(ctx, nc, ingest.IngestSubject, msg); err != nil {
			return fmt.Errorf("publish row %d: %w", i, err)
		}
		mRowsPublished.Inc()
	}
	log.Info("rows published", "subject", ingest.IngestSubject, "rows", len(claims))
	return nil
}

// newEmbedder prefers OpenAI when OPENAI_API_KEY is set, matching the API
// server's selection.
func newEmbedder(ollamaURL, model string, log *slog.Logger) ingest.Embedder {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		log.Info("using openai embedder")
		return openaiembed.New(key, "")
	}
	log.Info("using ollama embedder", "model", model)
	return ollama.NewEmbedClient(ollamaURL, model)
}

// newGraph returns a nil writer when no Neo4j URL is configured.
func newGraph(ctx context.Context, url, user, pass string, log *slog.Logger) (ingest.GraphWriter, func(), error) {
	if url == "" {
		return nil, func() {}, nil
	}
	driver, err := neo4j.NewDriverWithContext(url, neo4j.BasicAuth(user, pass, ""))
	if err != nil {
		return nil, nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, nil, fmt.Errorf("neo4j verify: %w", err)
	}
	log.Info("connected to Neo4j")
	return graph.New(driver), func() { driver.Close(context.Background()) }, nil
}

func serveMetrics(port int, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", met.Handler())
	addr := fmt.Sprintf(":%d", port)
	log.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server", "error", err)
	}
}
