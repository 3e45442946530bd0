// Package ingest provides the claims ingestion pipeline: validation,
// description synthesis, embedding, and storage. A bulk reload recreates the
// collection before loading, so re-running ingestion can never duplicate.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ClaimLensAI/claimlens-mvp/engine/domain"
	"github.com/ClaimLensAI/claimlens-mvp/engine/semantic"
	"github.com/ClaimLensAI/claimlens-mvp/pkg/fn"
)

// Deps holds the external dependencies for the ingestion pipeline.
type Deps struct {
	Embedder Embedder
	Vectors  VectorWriter
	Graph    GraphWriter // optional
	Logger   *slog.Logger
}

// --- Pipeline Stages ---

// Validate gates rows through domain validation.
var Validate fn.Stage[Row, Row] = func(_ context.Context, row Row) fn.Result[Row] {
	if err := domain.ValidateClaim(row.Claim); err != nil {
		return fn.Err[Row](fmt.Errorf("row %d: %w", row.Ordinal, err))
	}
	return fn.Ok(row)
}

// Describe synthesizes the document id and description for a row.
var Describe fn.Stage[Row, DescribedClaim] = func(_ context.Context, row Row) fn.Result[DescribedClaim] {
	return fn.Ok(DescribedClaim{
		Row:         row,
		DocID:       DocID(row.Ordinal),
		Description: Description(row.Claim),
	})
}

// NewEmbed creates a stage that embeds the claim description.
func NewEmbed(e Embedder) fn.Stage[DescribedClaim, EmbeddedClaim] {
	return func(ctx context.Context, doc DescribedClaim) fn.Result[EmbeddedClaim] {
		vec, err := e.Embed(ctx, doc.Description)
		if err != nil {
			return fn.Err[EmbeddedClaim](fmt.Errorf("embed %s: %w", doc.DocID, err))
		}
		return fn.Ok(EmbeddedClaim{DescribedClaim: doc, Embedding: vec})
	}
}

// NewStore creates a stage that writes the claim into Qdrant and, when a
// graph writer is configured, into the knowledge graph.
func NewStore(vw VectorWriter, gw GraphWriter) fn.Stage[EmbeddedClaim, string] {
	return func(ctx context.Context, doc EmbeddedClaim) fn.Result[string] {
		payload := doc.Claim.Metadata()
		payload["description"] = doc.Description
		payload["claim_id"] = doc.DocID

		rec := semantic.ClaimRecord{
			ID:        PointID(doc.DocID),
			Embedding: doc.Embedding,
			Payload:   payload,
		}
		if err := vw.Upsert(ctx, []semantic.ClaimRecord{rec}); err != nil {
			return fn.Err[string](fmt.Errorf("vector upsert: %w", err))
		}

		if gw != nil {
			if err := gw.SaveClaim(ctx, doc.DocID, doc.Claim); err != nil {
				// Graph is an enrichment, not the source of truth.
				slog.Warn("ingest: graph save", "error", err, "claim_id", doc.DocID)
			}
		}
		return fn.Ok(doc.DocID)
	}
}

// PointID derives the deterministic Qdrant point UUID for a document id, so
// upserting the same claim id overwrites the previous point.
func PointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(docID)).String()
}

// LoggedTap returns a stage that logs entry and exit with duration.
func LoggedTap[T any](name string, log *slog.Logger) fn.Stage[T, T] {
	return func(ctx context.Context, t T) fn.Result[T] {
		log.Debug("stage.enter", "stage", name)
		start := time.Now()
		defer func() {
			log.Debug("stage.exit", "stage", name, "duration", time.Since(start))
		}()
		return fn.Ok(t)
	}
}

// NewPipeline constructs the full per-row ingestion pipeline.
func NewPipeline(deps Deps) fn.Stage[Row, string] {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	validated := fn.Then(LoggedTap[Row]("validate", log), Validate)
	described := fn.Then(validated, Describe)
	embedded := fn.Then(described, fn.TracedStage("embed", NewEmbed(deps.Embedder)))
	stored := fn.Then(embedded, fn.TracedStage("store", NewStore(deps.Vectors, deps.Graph)))
	return stored
}

// LoaderOpts configures a bulk reload.
type LoaderOpts struct {
	// Dims is the embedding dimensionality used when creating the collection.
	Dims int
	// EmbedRate caps embedder calls per second; zero means unlimited.
	EmbedRate rate.Limit
	// EmbedBurst is the limiter burst size.
	EmbedBurst int
}

// Loader performs destructive-replace bulk loads of the claims collection.
type Loader struct {
	pipeline fn.Stage[Row, string]
	store    CollectionManager
	opts     LoaderOpts
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewLoader creates a Loader. The store in deps.Vectors is ignored; the
// CollectionManager is used for both the rebuild and the row writes.
func NewLoader(deps Deps, store CollectionManager, opts LoaderOpts) *Loader {
	deps.Vectors = store
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	var limiter *rate.Limiter
	if opts.EmbedRate > 0 {
		burst := opts.EmbedBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.EmbedRate, burst)
	}
	return &Loader{
		pipeline: NewPipeline(deps),
		store:    store,
		opts:     opts,
		limiter:  limiter,
		logger:   log,
	}
}

// Reload drops and recreates the collection, then loads every claim in
// order. Any row failure aborts the run; a rerun starts from scratch, so a
// failed run leaves no partial state worth preserving.
func (l *Loader) Reload(ctx context.Context, claims []domain.Claim) (int, error) {
	if err := l.store.RecreateCollection(ctx, l.opts.Dims); err != nil {
		return 0, fmt.Errorf("ingest: recreate collection: %w", err)
	}

	start := time.Now()
	for i, c := range claims {
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return i, err
			}
		}
		result := l.pipeline(ctx, Row{Claim: c, Ordinal: i})
		if result.IsErr() {
			_, err := result.Unwrap()
			return i, fmt.Errorf("ingest: %w", err)
		}
	}

	l.logger.Info("ingest: reload complete",
		"claims", len(claims),
		"duration", time.Since(start),
	)
	return len(claims), nil
}
