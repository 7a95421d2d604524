package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/apperr"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/document"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/highlight"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/models"
)

type stubSearcher struct {
	keyword  func(models.SearchQuery) ([]models.ChunkHit, error)
	page     func(string, int) (*models.PageMetadata, error)
	document func(string) (*models.DocumentMetadata, error)
	chunks   func(string, int, string, string) ([]models.Chunk, error)
	calls    int
}

func (s *stubSearcher) SearchChunksByKeyword(_ context.Context, q models.SearchQuery) ([]models.ChunkHit, error) {
	s.calls++
	return s.keyword(q)
}
func (s *stubSearcher) GetPageMetadata(_ context.Context, docID string, page int) (*models.PageMetadata, error) {
	s.calls++
	return s.page(docID, page)
}
func (s *stubSearcher) GetDocumentMetadata(_ context.Context, docID string) (*models.DocumentMetadata, error) {
	s.calls++
	return s.document(docID)
}
func (s *stubSearcher) GetChunksForPage(_ context.Context, docID string, page int, crn, term string) ([]models.Chunk, error) {
	s.calls++
	return s.chunks(docID, page, crn, term)
}

const testDocID = "a4a9b92e-6d3c-4f6a-9c7e-2f8b1a0d5e44"

func newHandler(s document.Searcher) *DocumentsHandler {
	return &DocumentsHandler{
		Metadata:       &document.MetadataService{Search: s},
		Chunks:         &document.ChunkService{Search: s},
		DefaultPerPage: 10,
	}
}

func metadataContext(e *echo.Echo, crn, docID, page string, query string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/api/cases/metadata"+query, nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("crn", "documentId", "pageNumber")
	ctx.SetParamValues(crn, docID, page)
	return ctx, rec
}

func TestPageMetadataSuccess(t *testing.T) {
	t.Parallel()
	corr := "medical_report"
	stub := &stubSearcher{
		page: func(string, int) (*models.PageMetadata, error) {
			return &models.PageMetadata{PageNum: 2, PageCount: 5, ImageURI: "s3://pages/2.png", Text: "body"}, nil
		},
		document: func(string) (*models.DocumentMetadata, error) {
			return &models.DocumentMetadata{CorrespondenceType: &corr}, nil
		},
	}
	h := newHandler(stub)
	e := echo.New()
	ctx, rec := metadataContext(e, "26-711111", testDocID, "2", "")

	if err := h.pageMetadata(ctx); err != nil {
		t.Fatalf("pageMetadata: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp models.CombinedMetadata
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CorrespondenceType == nil || *resp.CorrespondenceType != "medical_report" || resp.PageCount != 5 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestPageMetadataValidationBeforeIndexCall(t *testing.T) {
	t.Parallel()
	stub := &stubSearcher{
		page:     func(string, int) (*models.PageMetadata, error) { return &models.PageMetadata{PageNum: 1}, nil },
		document: func(string) (*models.DocumentMetadata, error) { return &models.DocumentMetadata{}, nil },
	}
	h := newHandler(stub)
	e := echo.New()

	cases := []struct {
		name             string
		crn, doc, page   string
	}{
		{"bad crn", "12-345678", testDocID, "1"},
		{"bad uuid", "26-711111", "not-a-uuid", "1"},
		{"uuid wrong version", "26-711111", "a4a9b92e-6d3c-1f6a-9c7e-2f8b1a0d5e44", "1"},
		{"zero page", "26-711111", testDocID, "0"},
		{"decimal page", "26-711111", testDocID, "1.5"},
		{"negative page", "26-711111", testDocID, "-2"},
	}
	for _, tc := range cases {
		ctx, _ := metadataContext(e, tc.crn, tc.doc, tc.page, "")
		err := h.pageMetadata(ctx)
		if !apperr.IsKind(err, apperr.KindInvalidArgument) {
			t.Fatalf("%s: expected invalid_argument, got %v", tc.name, err)
		}
	}
	if stub.calls != 0 {
		t.Fatalf("validation failures must not hit the index, saw %d calls", stub.calls)
	}
}

func TestPageMetadataNotFoundStatus(t *testing.T) {
	t.Parallel()
	stub := &stubSearcher{
		page: func(string, int) (*models.PageMetadata, error) { return nil, nil },
	}
	h := newHandler(stub)
	e := echo.New()
	ctx, _ := metadataContext(e, "26-711111", testDocID, "1", "")

	err := h.pageMetadata(ctx)
	if apperr.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", apperr.StatusOf(err))
	}
}

func TestPageChunksAlignAndHighlight(t *testing.T) {
	t.Parallel()
	stub := &stubSearcher{
		chunks: func(_ string, _ int, crn, term string) ([]models.Chunk, error) {
			if crn != "26-711111" {
				t.Errorf("crn = %q", crn)
			}
			if term != "injury" {
				t.Errorf("searchTerm = %q", term)
			}
			return []models.Chunk{
				{ChunkID: "a", ChunkIndex: 0, BoundingBox: &models.BoundingBox{Top: 0, Left: 0, Width: 10, Height: 10}},
				{ChunkID: "b", ChunkIndex: 1, BoundingBox: &models.BoundingBox{Top: 1, Left: 1, Width: 2, Height: 2}},
			}, nil
		},
	}
	h := newHandler(stub)
	e := echo.New()

	enc := highlight.Encode(models.BoundingBox{Top: 0.1, Left: 0.2, Width: 0.3, Height: 0.4})
	q := "?align=true&searchTerm=injury&highlight=" + url.QueryEscape(enc)
	req := httptest.NewRequest(http.MethodGet, "/api/cases/chunks"+q, nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("crn", "documentId", "pageNumber")
	ctx.SetParamValues("26-711111", testDocID, "1")

	if err := h.pageChunks(ctx); err != nil {
		t.Fatalf("pageChunks: %v", err)
	}
	var resp struct {
		Chunks    []models.ChunkOverlay `json:"chunks"`
		Highlight []models.BoundingBox  `json:"highlight"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Chunks) != 1 || resp.Chunks[0].ChunkID != "a" {
		t.Fatalf("aligned chunks = %+v", resp.Chunks)
	}
	if len(resp.Highlight) != 1 || resp.Highlight[0].Width != 0.3 {
		t.Fatalf("highlight = %+v", resp.Highlight)
	}
}

func TestPageChunksWithoutAlignKeepsRawList(t *testing.T) {
	t.Parallel()
	stub := &stubSearcher{
		chunks: func(string, int, string, string) ([]models.Chunk, error) {
			return []models.Chunk{
				{ChunkID: "a", BoundingBox: &models.BoundingBox{Top: 0, Left: 0, Width: 10, Height: 10}},
				{ChunkID: "b", BoundingBox: &models.BoundingBox{Top: 1, Left: 1, Width: 2, Height: 2}},
			}, nil
		},
	}
	h := newHandler(stub)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cases/chunks", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("crn", "documentId", "pageNumber")
	ctx.SetParamValues("26-711111", testDocID, "1")

	if err := h.pageChunks(ctx); err != nil {
		t.Fatalf("pageChunks: %v", err)
	}
	var resp struct {
		Chunks []models.ChunkOverlay `json:"chunks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Chunks) != 2 {
		t.Fatalf("alignment must be opt-in, got %d chunks", len(resp.Chunks))
	}
}

func TestSearchEndpoint(t *testing.T) {
	t.Parallel()
	stub := &stubSearcher{
		keyword: func(q models.SearchQuery) ([]models.ChunkHit, error) {
			if q.PageNumber != 3 || q.ItemsPerPage != 5 {
				t.Errorf("pagination %+v", q)
			}
			return []models.ChunkHit{{ID: "c-9", Source: models.Chunk{ChunkID: "c-9", ChunkText: "injury"}}}, nil
		},
	}
	h := newHandler(stub)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cases/search?keyword=injury&page=3&perPage=5", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("crn")
	ctx.SetParamValues("26-711111")

	if err := h.search(ctx); err != nil {
		t.Fatalf("search: %v", err)
	}
	var resp struct {
		Hits    []models.ChunkHit `json:"hits"`
		Page    int               `json:"page"`
		PerPage int               `json:"per_page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Hits) != 1 || resp.Page != 3 || resp.PerPage != 5 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestSearchEndpointRequiresKeyword(t *testing.T) {
	t.Parallel()
	stub := &stubSearcher{
		keyword: func(models.SearchQuery) ([]models.ChunkHit, error) { return nil, nil },
	}
	h := newHandler(stub)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cases/search", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("crn")
	ctx.SetParamValues("26-711111")

	err := h.search(ctx)
	if !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("missing keyword must not reach the index")
	}
}
