package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// ListDocuments returns artifact summaries for one kind (or all).
// Listing is bounded by the configured list timeout.
func (c *Client) ListDocuments(ctx context.Context, kind domain.ArtifactKind) ([]domain.Document, error) {
	ctx, cancel := c.listContext(ctx)
	defer cancel()

	var payload struct {
		Documents []documentSummary `json:"documents"`
	}
	path := "/documents?type=" + url.QueryEscape(string(kind))
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, len(payload.Documents))
	for i := range payload.Documents {
		docs[i] = payload.Documents[i].toDomain(kind)
	}
	return docs, nil
}

// GetDocument fetches the full detail record, chunks included.
func (c *Client) GetDocument(ctx context.Context, name string, kind domain.ArtifactKind) (*domain.ChunkResult, error) {
	var payload documentPayload
	path := "/documents/" + url.PathEscape(name) + "?type=" + url.QueryEscape(string(kind))
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// DeleteDocument removes one artifact server-side.
func (c *Client) DeleteDocument(ctx context.Context, name string, kind domain.ArtifactKind) error {
	path := "/documents/" + url.PathEscape(name) + "?type=" + url.QueryEscape(string(kind))
	return c.delete(ctx, path)
}

// Load uploads a PDF and has the service parse it. The upload is a
// multipart form; unstructured chunking options travel as a JSON field.
func (c *Client) Load(ctx context.Context, req driven.LoadRequest) (*domain.ChunkResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}

	fields := map[string]string{"loading_method": req.LoadingMethod}
	if req.Strategy != "" {
		fields["strategy"] = req.Strategy
	}
	if req.ChunkingStrategy != "" {
		fields["chunking_strategy"] = req.ChunkingStrategy
	}
	if req.ChunkingOptions != nil {
		opts, err := json.Marshal(req.ChunkingOptions)
		if err != nil {
			return nil, fmt.Errorf("marshal chunking options: %w", err)
		}
		fields["chunking_options"] = string(opts)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/load", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var payload struct {
		LoadedContent documentPayload `json:"loaded_content"`
		Filepath      string          `json:"filepath"`
	}
	if err := c.do(httpReq, &payload); err != nil {
		return nil, err
	}
	return payload.LoadedContent.toDomain(), nil
}

// Chunk asks the service to split a loaded document.
func (c *Client) Chunk(ctx context.Context, req driven.ChunkRequest) (*domain.ChunkResult, error) {
	body := map[string]any{
		"doc_id":          req.DocID,
		"chunking_option": req.ChunkingOption,
	}
	if req.ChunkSize > 0 {
		body["chunk_size"] = req.ChunkSize
	}

	var payload documentPayload
	if err := c.postJSON(ctx, "/chunk", body, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}
