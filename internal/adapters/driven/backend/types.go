package backend

import (
	"strconv"
	"strings"
	"time"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
)

// flexInt decodes a number that the service sometimes serialises as a
// string (page numbers from vector store payloads, "N/A" index sizes).
// Unparseable values decode to zero rather than failing the payload.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// flexTime decodes the service's ISO-8601 timestamps, which carry no
// timezone suffix. A malformed timestamp decodes to the zero time.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

// chunkMetadata is the per-chunk metadata block in load/chunk payloads.
type chunkMetadata struct {
	ChunkID    flexInt `json:"chunk_id"`
	PageNumber flexInt `json:"page_number"`
	PageRange  string  `json:"page_range"`
	WordCount  flexInt `json:"word_count"`
}

// chunkPayload is one chunk in a load/chunk response.
type chunkPayload struct {
	Content  string        `json:"content"`
	Metadata chunkMetadata `json:"metadata"`
}

// documentPayload is the document shape shared by the load response,
// the chunk response and the document detail endpoint.
type documentPayload struct {
	Filename       string         `json:"filename"`
	TotalPages     flexInt        `json:"total_pages"`
	TotalChunks    flexInt        `json:"total_chunks"`
	LoadingMethod  string         `json:"loading_method"`
	ChunkingMethod string         `json:"chunking_method"`
	Timestamp      flexTime       `json:"timestamp"`
	Chunks         []chunkPayload `json:"chunks"`
}

func (p *documentPayload) toDomain() *domain.ChunkResult {
	result := &domain.ChunkResult{
		Filename:       p.Filename,
		TotalPages:     int(p.TotalPages),
		TotalChunks:    int(p.TotalChunks),
		LoadingMethod:  p.LoadingMethod,
		ChunkingMethod: p.ChunkingMethod,
		Timestamp:      p.Timestamp.Time,
		Chunks:         make([]domain.Chunk, len(p.Chunks)),
	}
	for i, chunk := range p.Chunks {
		result.Chunks[i] = domain.Chunk{
			ID:         int(chunk.Metadata.ChunkID),
			PageRange:  chunk.Metadata.PageRange,
			PageNumber: int(chunk.Metadata.PageNumber),
			WordCount:  int(chunk.Metadata.WordCount),
			Content:    chunk.Content,
		}
	}
	if result.TotalChunks == 0 {
		result.TotalChunks = len(result.Chunks)
	}
	return result
}

// documentSummary is one entry of the listing endpoints.
type documentSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Metadata struct {
		DocumentName       string   `json:"document_name"`
		TotalPages         flexInt  `json:"total_pages"`
		TotalChunks        flexInt  `json:"total_chunks"`
		LoadingMethod      string   `json:"loading_method"`
		ChunkingMethod     string   `json:"chunking_method"`
		Timestamp          flexTime `json:"timestamp"`
		EmbeddingModel     string   `json:"embedding_model"`
		EmbeddingProvider  string   `json:"embedding_provider"`
		EmbeddingTimestamp flexTime `json:"embedding_timestamp"`
		VectorDimension    flexInt  `json:"vector_dimension"`
	} `json:"metadata"`
}

func (s *documentSummary) toDomain(kind domain.ArtifactKind) domain.Document {
	if s.Type != "" {
		kind = domain.ArtifactKind(s.Type)
	}
	return domain.Document{
		Name:               s.Name,
		Kind:               kind,
		TotalPages:         int(s.Metadata.TotalPages),
		TotalChunks:        int(s.Metadata.TotalChunks),
		LoadingMethod:      s.Metadata.LoadingMethod,
		ChunkingMethod:     s.Metadata.ChunkingMethod,
		Timestamp:          s.Metadata.Timestamp.Time,
		EmbeddingModel:     s.Metadata.EmbeddingModel,
		EmbeddingProvider:  s.Metadata.EmbeddingProvider,
		EmbeddingTimestamp: s.Metadata.EmbeddingTimestamp.Time,
		VectorDimension:    int(s.Metadata.VectorDimension),
	}
}

// embeddingPayload is one entry of an embed response or embedded-doc
// detail. The vector itself is ignored client-side.
type embeddingPayload struct {
	Metadata struct {
		DocumentName       string   `json:"document_name"`
		ChunkID            flexInt  `json:"chunk_id"`
		TotalChunks        flexInt  `json:"total_chunks"`
		Content            string   `json:"content"`
		PageNumber         flexInt  `json:"page_number"`
		PageRange          string   `json:"page_range"`
		EmbeddingModel     string   `json:"embedding_model"`
		EmbeddingProvider  string   `json:"embedding_provider"`
		EmbeddingTimestamp flexTime `json:"embedding_timestamp"`
		VectorDimension    flexInt  `json:"vector_dimension"`
	} `json:"metadata"`
}

func (p *embeddingPayload) toDomain() domain.Embedding {
	return domain.Embedding{
		ChunkID:            int(p.Metadata.ChunkID),
		TotalChunks:        int(p.Metadata.TotalChunks),
		DocumentName:       p.Metadata.DocumentName,
		PageNumber:         int(p.Metadata.PageNumber),
		PageRange:          p.Metadata.PageRange,
		Content:            p.Metadata.Content,
		EmbeddingModel:     p.Metadata.EmbeddingModel,
		EmbeddingProvider:  p.Metadata.EmbeddingProvider,
		VectorDimension:    int(p.Metadata.VectorDimension),
		EmbeddingTimestamp: p.Metadata.EmbeddingTimestamp.Time,
	}
}

func embeddingsToDomain(payloads []embeddingPayload) []domain.Embedding {
	embeddings := make([]domain.Embedding, len(payloads))
	for i := range payloads {
		embeddings[i] = payloads[i].toDomain()
	}
	return embeddings
}

// indexPayload is the /index response and the collection-info shape.
type indexPayload struct {
	Database       string  `json:"database"`
	CollectionName string  `json:"collection_name"`
	IndexMode      string  `json:"index_mode"`
	TotalVectors   flexInt `json:"total_vectors"`
	IndexSize      flexInt `json:"index_size"`
	ProcessingTime float64 `json:"processing_time"`
}

func (p *indexPayload) toDomain() *domain.IndexResult {
	return &domain.IndexResult{
		Database:       p.Database,
		CollectionName: p.CollectionName,
		IndexMode:      p.IndexMode,
		TotalVectors:   int(p.TotalVectors),
		IndexSize:      int(p.IndexSize),
		ProcessingTime: p.ProcessingTime,
	}
}

// searchHit is one similarity-search result.
type searchHit struct {
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
	Metadata struct {
		Source string  `json:"source"`
		Page   flexInt `json:"page"`
		Chunk  flexInt `json:"chunk"`
	} `json:"metadata"`
}

func hitsToDomain(hits []searchHit) []domain.SearchResult {
	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResult{
			Score: hit.Score,
			Text:  hit.Text,
			Metadata: domain.ResultMetadata{
				Source: hit.Metadata.Source,
				Page:   int(hit.Metadata.Page),
				Chunk:  int(hit.Metadata.Chunk),
			},
		}
	}
	return results
}

// evaluationPayload is the /evaluate response.
type evaluationPayload struct {
	Results []struct {
		ID               string  `json:"id"`
		Requirement      string  `json:"requirement"`
		ExpectedPages    []int   `json:"expected_pages"`
		FoundPages       []int   `json:"found_pages"`
		ScoreHit         float64 `json:"score_hit"`
		ScoreFind        float64 `json:"score_find"`
		ComplianceStatus string  `json:"compliance_status"`
	} `json:"results"`
	AverageScores struct {
		ScoreHit  float64 `json:"score_hit"`
		ScoreFind float64 `json:"score_find"`
	} `json:"average_scores"`
	TotalQueries int `json:"total_queries"`
}

func (p *evaluationPayload) toDomain(collectionID string, bands domain.ComplianceBands) *domain.EvaluationReport {
	report := &domain.EvaluationReport{
		CollectionID: collectionID,
		Rows:         make([]domain.EvaluationRow, len(p.Results)),
		Averages: domain.AverageScores{
			ScoreHit:  p.AverageScores.ScoreHit,
			ScoreFind: p.AverageScores.ScoreFind,
		},
		TotalQueries: p.TotalQueries,
	}
	for i, row := range p.Results {
		compliance := domain.ComplianceStatus(row.ComplianceStatus)
		if compliance == "" {
			compliance = bands.Classify(row.ScoreFind)
		}
		report.Rows[i] = domain.EvaluationRow{
			ID:            row.ID,
			Requirement:   row.Requirement,
			ExpectedPages: row.ExpectedPages,
			FoundPages:    row.FoundPages,
			ScoreHit:      row.ScoreHit,
			ScoreFind:     row.ScoreFind,
			Compliance:    compliance,
		}
	}
	return report
}
