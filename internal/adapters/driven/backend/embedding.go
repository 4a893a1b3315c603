package backend

import (
	"context"
	"net/url"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// Embed computes embeddings for a loaded or chunked document.
func (c *Client) Embed(ctx context.Context, req driven.EmbedRequest) (*domain.EmbedResult, error) {
	body := map[string]string{
		"documentId": req.DocumentID,
		"provider":   req.Provider,
		"model":      req.Model,
	}

	var payload struct {
		Embeddings []embeddingPayload `json:"embeddings"`
		Filepath   string             `json:"filepath"`
	}
	if err := c.postJSON(ctx, "/embed", body, &payload); err != nil {
		return nil, err
	}
	return &domain.EmbedResult{
		Embeddings: embeddingsToDomain(payload.Embeddings),
		Filepath:   payload.Filepath,
	}, nil
}

// ListEmbedded returns summaries of the embedded artifact namespace.
func (c *Client) ListEmbedded(ctx context.Context) ([]domain.Document, error) {
	ctx, cancel := c.listContext(ctx)
	defer cancel()

	var payload struct {
		Documents []documentSummary `json:"documents"`
	}
	if err := c.getJSON(ctx, "/list-embedded", &payload); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, len(payload.Documents))
	for i := range payload.Documents {
		docs[i] = payload.Documents[i].toDomain(domain.KindEmbedded)
	}
	return docs, nil
}

// GetEmbedded fetches one embedded document's per-chunk metadata.
func (c *Client) GetEmbedded(ctx context.Context, name string) (*domain.EmbedResult, error) {
	var payload struct {
		Embeddings []embeddingPayload `json:"embeddings"`
	}
	if err := c.getJSON(ctx, "/embedded-docs/"+url.PathEscape(name), &payload); err != nil {
		return nil, err
	}
	return &domain.EmbedResult{Embeddings: embeddingsToDomain(payload.Embeddings)}, nil
}

// DeleteEmbedded removes one embedded document server-side.
func (c *Client) DeleteEmbedded(ctx context.Context, name string) error {
	return c.delete(ctx, "/embedded-docs/"+url.PathEscape(name))
}
