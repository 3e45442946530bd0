package semantic

// SearchResult represents a single vector search hit.
type SearchResult struct {
	ID          string            `json:"id"`
	Score       float32           `json:"score"`
	Description string            `json:"description"`
	ClaimID     string            `json:"claim_id"`
	Meta        map[string]string `json:"metadata"`
}

// ClaimRecord represents a single claim document to store in Qdrant.
type ClaimRecord struct {
	ID        string
	Embedding []float32
	Payload   map[string]any // description, claim_id, plus claim metadata
}
