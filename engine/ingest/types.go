package ingest

import (
	"context"

	"github.com/ClaimLensAI/claimlens-mvp/engine/domain"
	"github.com/ClaimLensAI/claimlens-mvp/engine/semantic"
)

// Row is a claim record paired with its zero-based position in the source,
// which determines its stable document id.
type Row struct {
	Claim   domain.Claim
	Ordinal int
}

// DescribedClaim is a row with its synthesized natural-language description.
type DescribedClaim struct {
	Row
	DocID       string
	Description string
}

// EmbeddedClaim is a described claim with its embedding vector.
type EmbeddedClaim struct {
	DescribedClaim
	Embedding []float32
}

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorWriter writes claim documents into the vector store.
type VectorWriter interface {
	Upsert(ctx context.Context, records []semantic.ClaimRecord) error
}

// CollectionManager is a VectorWriter whose collection can be rebuilt from
// scratch. Satisfied by *semantic.VectorStore.
type CollectionManager interface {
	VectorWriter
	RecreateCollection(ctx context.Context, dims int) error
}

// GraphWriter records claims into the knowledge graph.
type GraphWriter interface {
	SaveClaim(ctx context.Context, claimID string, c domain.Claim) error
}
