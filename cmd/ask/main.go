// Command ask is an interactive terminal client for querying the claims
// collection. It connects straight to Qdrant and the embedder, routes each
// question, and prints the answer in a shape suited to the intent.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ClaimLensAI/claimlens-mvp/engine/graph"
	"github.com/ClaimLensAI/claimlens-mvp/engine/router"
	"github.com/ClaimLensAI/claimlens-mvp/engine/semantic"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/ollama"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/openaiembed"
)

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	qdrantAddr := envOr("QDRANT_URL", "localhost:6334")
	collection := envOr("QDRANT_COLLECTION", "claims")
	ollamaURL := envOr("OLLAMA_URL", "http://localhost:11434")
	embedModel := envOr("EMBED_MODEL", "nomic-embed-text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := semantic.New(qdrantAddr, collection)
	if err != nil {
		logger.Error("qdrant connect failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	var embedder router.Embedder
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		embedder = openaiembed.New(key, "")
	} else {
		embedder = ollama.NewEmbedClient(ollamaURL, embedModel)
	}

	var enricher router.Enricher
	if url := os.Getenv("NEO4J_URL"); url != "" {
		driver, err := neo4j.NewDriverWithContext(url, neo4j.BasicAuth(envOr("NEO4J_USER", "neo4j"), envOr("NEO4J_PASS", "password"), ""))
		if err != nil {
			logger.Error("neo4j driver failed", "err", err)
			os.Exit(1)
		}
		defer driver.Close(ctx)
		enricher = graph.New(driver)
	}

	svc := router.New(embedder, store, enricher, router.DefaultOptions(), logger)

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nAsk a question about the claims (or 'q' to quit): ")
		if !in.Scan() {
			break
		}
		question := strings.TrimSpace(in.Text())
		if question == "" {
			continue
		}
		if question == "q" {
			break
		}

		res, err := svc.Ask(ctx, question)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		printResult(res)
	}
}

func printResult(res router.Result) {
	switch r := res.(type) {
	case router.StatusCount:
		fmt.Printf("Number of claims with status '%s': %d\n", r.Status, r.Count)
	case router.GenderCount:
		fmt.Printf("Number of claims by %s patients: %d\n", strings.ToLower(r.Gender), r.Count)
	case router.MonthlySummary:
		if len(r.Entries) == 0 {
			fmt.Printf("No claims found for %d.\n", r.Year)
			return
		}
		fmt.Printf("Total claim amounts by month in %d:\n", r.Year)
		for _, e := range r.Entries {
			fmt.Printf("  %d-%02d: %.2f\n", e.Year, e.Month, e.AmountInsured)
		}
	case router.SemanticMatches:
		if len(r.Matches) == 0 {
			fmt.Println("No matching claims found.")
			return
		}
		for i, m := range r.Matches {
			fmt.Printf("%d. %s\n", i+1, m.Description)
		}
		if len(r.RelatedDiagnoses) > 0 {
			fmt.Printf("Related diagnoses at this provider: %s\n", strings.Join(r.RelatedDiagnoses, ", "))
		}
		if len(r.RelatedProviders) > 0 {
			fmt.Printf("Providers seeing this diagnosis: %s\n", strings.Join(r.RelatedProviders, ", "))
		}
	default:
		fmt.Printf("%+v\n", res)
	}
}
