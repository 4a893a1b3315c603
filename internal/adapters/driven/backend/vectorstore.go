package backend

import (
	"context"
	"net/url"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// ListProviders returns the vector store backends the service supports.
func (c *Client) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	ctx, cancel := c.listContext(ctx)
	defer cancel()

	var payload struct {
		Providers []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"providers"`
	}
	if err := c.getJSON(ctx, "/providers", &payload); err != nil {
		return nil, err
	}

	providers := make([]domain.Provider, len(payload.Providers))
	for i, p := range payload.Providers {
		providers[i] = domain.Provider{ID: p.ID, Name: p.Name}
	}
	return providers, nil
}

// ListCollections returns the collections of one provider.
func (c *Client) ListCollections(ctx context.Context, provider string) ([]domain.Collection, error) {
	ctx, cancel := c.listContext(ctx)
	defer cancel()

	var payload struct {
		Collections []struct {
			ID    string  `json:"id"`
			Name  string  `json:"name"`
			Count flexInt `json:"count"`
		} `json:"collections"`
	}
	path := "/collections?provider=" + url.QueryEscape(provider)
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	collections := make([]domain.Collection, len(payload.Collections))
	for i, col := range payload.Collections {
		collections[i] = domain.Collection{ID: col.ID, Name: col.Name, Count: int(col.Count)}
	}
	return collections, nil
}

// GetCollection fetches detailed information about one collection.
func (c *Client) GetCollection(ctx context.Context, provider, name string) (*domain.IndexResult, error) {
	var payload indexPayload
	path := "/collections/" + url.PathEscape(provider) + "/" + url.PathEscape(name)
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	result := payload.toDomain()
	if result.CollectionName == "" {
		result.CollectionName = name
	}
	if result.Database == "" {
		result.Database = provider
	}
	return result, nil
}

// DeleteCollection drops one collection.
func (c *Client) DeleteCollection(ctx context.Context, provider, name string) error {
	return c.delete(ctx, "/collections/"+url.PathEscape(provider)+"/"+url.PathEscape(name))
}

// Index writes an embedding file into a vector store collection.
func (c *Client) Index(ctx context.Context, req driven.IndexRequest) (*domain.IndexResult, error) {
	body := map[string]string{
		"fileId":    req.FileID,
		"vectorDb":  req.VectorDB,
		"indexMode": req.IndexMode,
	}

	var payload indexPayload
	if err := c.postJSON(ctx, "/index", body, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}
