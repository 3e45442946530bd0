// Package openaiembed provides an OpenAI-backed text embedder.
package openaiembed

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Client produces embeddings via the OpenAI embeddings API.
type Client struct {
	api   *openai.Client
	model openai.EmbeddingModel
}

// New creates an OpenAI embedding client. Model defaults to
// text-embedding-3-small when empty.
func New(apiKey, model string) *Client {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: openai.EmbeddingModel(model),
	}
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in a single API request.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embed: got %d embeddings for %d texts", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}
