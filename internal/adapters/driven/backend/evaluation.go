package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// Evaluate uploads a labeled query-set CSV and returns the server-side
// evaluation report.
func (c *Client) Evaluate(ctx context.Context, req driven.EvaluateRequest) (*domain.EvaluationReport, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, req.CSV); err != nil {
		return nil, fmt.Errorf("copy query set: %w", err)
	}

	fields := map[string]string{
		"collection_id": req.CollectionID,
		"top_k":         strconv.Itoa(req.TopK),
		"threshold":     strconv.FormatFloat(req.Threshold, 'f', -1, 64),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/evaluate", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var payload evaluationPayload
	if err := c.do(httpReq, &payload); err != nil {
		return nil, err
	}

	report := payload.toDomain(req.CollectionID, c.bands)
	// The server does not assign run identifiers; the archive needs one.
	report.RunID = uuid.NewString()
	return report, nil
}
