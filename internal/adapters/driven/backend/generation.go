package backend

import (
	"context"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// ListModels returns the generation catalog: provider → model name →
// model identifier.
func (c *Client) ListModels(ctx context.Context) (map[string]map[string]string, error) {
	ctx, cancel := c.listContext(ctx)
	defer cancel()

	var payload struct {
		Models map[string]map[string]string `json:"models"`
	}
	if err := c.getJSON(ctx, "/generation/models", &payload); err != nil {
		return nil, err
	}
	return payload.Models, nil
}

// Generate produces an answer from the carried search results. The API
// key, when given, is forwarded with the request and never stored.
func (c *Client) Generate(ctx context.Context, req driven.GenerateRequest) (*domain.GenerateResult, error) {
	hits := make([]map[string]any, len(req.SearchResults))
	for i, result := range req.SearchResults {
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
		"query":          req.Query,
		"provider":       req.Provider,
		"model_name":     req.ModelName,
		"search_results": hits,
		"show_reasoning": req.ShowReasoning,
	}
	if req.APIKey != "" {
		body["api_key"] = req.APIKey
	}

	var payload struct {
		Response      string `json:"response"`
		SavedFilepath string `json:"saved_filepath"`
	}
	if err := c.postJSON(ctx, "/generate", body, &payload); err != nil {
		return nil, err
	}
	return &domain.GenerateResult{
		Response:      payload.Response,
		SavedFilepath: payload.SavedFilepath,
	}, nil
}
