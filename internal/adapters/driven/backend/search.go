package backend

import (
	"context"
	"net/url"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// Search runs similarity search against a collection. The hits arrive
// nested one level down ({"results": {"results": [...]}}).
func (c *Client) Search(ctx context.Context, req driven.SearchRequest) (*driven.SearchResponse, error) {
	body := map[string]any{
		"query":                req.Query,
		"collection_id":        req.CollectionID,
		"top_k":                req.TopK,
		"threshold":            req.Threshold,
		"word_count_threshold": req.WordCountThreshold,
		"save_results":         req.SaveResults,
	}

	var payload struct {
		Results struct {
			Results       []searchHit `json:"results"`
			SavedFilepath string      `json:"saved_filepath"`
		} `json:"results"`
	}
	if err := c.postJSON(ctx, "/search", body, &payload); err != nil {
		return nil, err
	}
	return &driven.SearchResponse{
		Results:       hitsToDomain(payload.Results.Results),
		SavedFilepath: payload.Results.SavedFilepath,
	}, nil
}

// SaveSearch persists an already-fetched result set server-side and
// returns the saved filepath.
func (c *Client) SaveSearch(ctx context.Context, req driven.SaveSearchRequest) (string, error) {
	hits := make([]map[string]any, len(req.Results))
	for i, result := range req.Results {
		hits[i] = map[string]any{
			"score": result.Score,
			"text":  result.Text,
			"metadata": map[string]any{
				"source": result.Metadata.Source,
				"page":   result.Metadata.Page,
				"chunk":  result.Metadata.Chunk,
			},
		}
	}
	body := map[string]any{
		"query":         req.Query,
		"collection_id": req.CollectionID,
		"results":       hits,
	}

	var payload struct {
		SavedFilepath string `json:"saved_filepath"`
	}
	if err := c.postJSON(ctx, "/save-search", body, &payload); err != nil {
		return "", err
	}
	return payload.SavedFilepath, nil
}

// ListSearchResults returns saved result files, newest first.
func (c *Client) ListSearchResults(ctx context.Context) ([]driven.SearchResultFile, error) {
	ctx, cancel := c.listContext(ctx)
	defer cancel()

	var payload struct {
		Files []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"files"`
	}
	if err := c.getJSON(ctx, "/search-results", &payload); err != nil {
		return nil, err
	}

	files := make([]driven.SearchResultFile, len(payload.Files))
	for i, file := range payload.Files {
		files[i] = driven.SearchResultFile{ID: file.ID, Name: file.Name}
	}
	return files, nil
}

// GetSearchResults reloads one saved result set.
func (c *Client) GetSearchResults(ctx context.Context, id string) (*domain.SavedSearch, error) {
	var payload struct {
		Query        string      `json:"query"`
		CollectionID string      `json:"collection_id"`
		Results      []searchHit `json:"results"`
	}
	if err := c.getJSON(ctx, "/search-results/"+url.PathEscape(id), &payload); err != nil {
		return nil, err
	}
	return &domain.SavedSearch{
		ID:           id,
		Name:         payload.Query,
		Query:        payload.Query,
		CollectionID: payload.CollectionID,
		Results:      hitsToDomain(payload.Results),
	}, nil
}
