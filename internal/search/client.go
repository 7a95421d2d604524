// Package search is the query and pagination layer: the only component
// that talks to the external full-text index. It builds structured
// queries, executes them over HTTP and normalizes the hit envelopes.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ministryofjustice/cica-review-case-documents-sub001/config"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/apperr"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/caseref"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/models"
)

// pageChunkLimit caps how many chunks one page lookup pulls back; OCR
// output rarely exceeds a few hundred regions per page.
const pageChunkLimit = 1000

// Client issues queries against the configured indices. It is safe for
// concurrent use; all state is read-only after construction.
type Client struct {
	httpClient    *http.Client
	endpoint      string
	username      string
	password      string
	chunkIndex    string
	metadataIndex string
	logger        *log.Logger
}

// NewClient wires a client from configuration. Missing index names are
// a configuration failure surfaced here, at startup, never at request
// time. The logger is optional.
func NewClient(cfg config.SearchConfig, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, apperr.New(apperr.KindConfiguration, "search endpoint is not configured")
	}
	if strings.TrimSpace(cfg.ChunkIndex) == "" {
		return nil, apperr.New(apperr.KindConfiguration, "chunk index name is not configured")
	}
	if strings.TrimSpace(cfg.MetadataIndex) == "" {
		return nil, apperr.New(apperr.KindConfiguration, "page metadata index name is not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		username:      cfg.Username,
		password:      cfg.Password,
		chunkIndex:    cfg.ChunkIndex,
		metadataIndex: cfg.MetadataIndex,
		logger:        logger,
	}, nil
}

// SearchChunksByKeyword matches chunk_text against the keyword AND
// case_ref against the case reference; both clauses are required, this
// is not a ranked OR. Pagination: from = perPage*(page-1), size =
// perPage. Zero hits is an empty list, not an error.
func (c *Client) SearchChunksByKeyword(ctx context.Context, q models.SearchQuery) ([]models.ChunkHit, error) {
	if q.PageNumber < 1 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "page number must be >= 1, got %d", q.PageNumber)
	}
	if q.ItemsPerPage < 1 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "items per page must be > 0, got %d", q.ItemsPerPage)
	}
	if !caseref.Valid(q.CaseRef) {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "invalid case reference number %q", q.CaseRef)
	}
	body := map[string]any{
		"from": q.ItemsPerPage * (q.PageNumber - 1),
		"size": q.ItemsPerPage,
		"query": boolMust(
			match("chunk_text", q.Keyword),
			match("case_ref", q.CaseRef),
		),
	}
	hits, err := c.execute(ctx, opKeywordSearch, c.chunkIndex, body)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChunkHit, 0, len(hits))
	for _, h := range hits {
		var chunk models.Chunk
		if err := json.Unmarshal(h.Source, &chunk); err != nil {
			return nil, apperr.Wrap(apperr.KindSearchExecution,
				fmt.Sprintf("Failed to execute search query against index %q", c.chunkIndex), err)
		}
		out = append(out, models.ChunkHit{ID: h.ID, Source: chunk})
	}
	return out, nil
}

// GetPageMetadata looks up the rendering metadata record for one
// (document, page) pair. Returns nil, not an error, when no record
// matches.
func (c *Client) GetPageMetadata(ctx context.Context, documentID string, pageNumber int) (*models.PageMetadata, error) {
	if pageNumber < 1 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "page number must be a positive integer, got %d", pageNumber)
	}
	body := map[string]any{
		"size": 1,
		"query": boolMust(
			match("source_doc_id", documentID),
			match("page_num", pageNumber),
		),
	}
	hits, err := c.execute(ctx, opPageMetadata, c.metadataIndex, body)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	var page models.PageMetadata
	if err := json.Unmarshal(hits[0].Source, &page); err != nil {
		return nil, apperr.Wrap(apperr.KindSearchExecution,
			fmt.Sprintf("Failed to execute search query against index %q", c.metadataIndex), err)
	}
	return &page, nil
}

// GetDocumentMetadata looks up the document-level record carrying the
// correspondence classification. Returns nil when the document is
// unknown to the index.
func (c *Client) GetDocumentMetadata(ctx context.Context, documentID string) (*models.DocumentMetadata, error) {
	body := map[string]any{
		"size":  1,
		"query": boolMust(match("source_doc_id", documentID)),
	}
	hits, err := c.execute(ctx, opDocumentMetadata, c.metadataIndex, body)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	var doc models.DocumentMetadata
	if err := json.Unmarshal(hits[0].Source, &doc); err != nil {
		return nil, apperr.Wrap(apperr.KindSearchExecution,
			fmt.Sprintf("Failed to execute search query against index %q", c.metadataIndex), err)
	}
	return &doc, nil
}

// GetChunksForPage returns the chunks of one page scoped to a case.
// searchTerm is optional; when present it narrows the chunks to those
// matching it. Ordering is whatever the index returns, expected
// ascending chunk_index.
func (c *Client) GetChunksForPage(ctx context.Context, documentID string, pageNumber int, crn, searchTerm string) ([]models.Chunk, error) {
	if pageNumber < 1 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "page number must be a positive integer, got %d", pageNumber)
	}
	if !caseref.Valid(crn) {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "invalid case reference number %q", crn)
	}
	clauses := []map[string]any{
		match("source_doc_id", documentID),
		match("page_num", pageNumber),
		match("case_ref", crn),
	}
	if strings.TrimSpace(searchTerm) != "" {
		clauses = append(clauses, match("chunk_text", searchTerm))
	}
	body := map[string]any{
		"from":  0,
		"size":  pageChunkLimit,
		"query": boolMust(clauses...),
	}
	hits, err := c.execute(ctx, opPageChunks, c.chunkIndex, body)
	if err != nil {
		return nil, err
	}
	out := make([]models.Chunk, 0, len(hits))
	for _, h := range hits {
		var chunk models.Chunk
		if err := json.Unmarshal(h.Source, &chunk); err != nil {
			return nil, apperr.Wrap(apperr.KindSearchExecution,
				fmt.Sprintf("Failed to execute search query against index %q", c.chunkIndex), err)
		}
		if chunk.ChunkID == "" {
			chunk.ChunkID = h.ID
		}
		out = append(out, chunk)
	}
	return out, nil
}

// execute posts a query body to <endpoint>/<index>/_search and decodes
// the hit envelope. Every failure past this point is a search
// execution error wrapping its cause and naming the target index.
func (c *Client) execute(ctx context.Context, op, index string, body map[string]any) ([]hit, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, c.execErr(op, index, err)
	}
	url := fmt.Sprintf("%s/%s/_search", c.endpoint, index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, c.execErr(op, index, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	observeQuery(op, err == nil, time.Since(start))
	if err != nil {
		return nil, c.execErr(op, index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, c.execErr(op, index,
			fmt.Errorf("index returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var envelope searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, c.execErr(op, index, err)
	}
	return envelope.Hits.Hits, nil
}

func (c *Client) execErr(op, index string, cause error) error {
	if c.logger != nil {
		c.logger.Printf("%s against index %q failed: %v", op, index, cause)
	}
	return apperr.Wrap(apperr.KindSearchExecution,
		fmt.Sprintf("Failed to execute search query against index %q", index), cause)
}

func match(field string, value any) map[string]any {
	return map[string]any{"match": map[string]any{field: value}}
}

func boolMust(clauses ...map[string]any) map[string]any {
	return map[string]any{"bool": map[string]any{"must": clauses}}
}
