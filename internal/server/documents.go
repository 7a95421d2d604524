package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/apperr"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/caseref"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/document"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/highlight"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/models"
)

// DocumentsHandler serves page metadata, page chunks and keyword
// search for a case's documents.
type DocumentsHandler struct {
	Metadata       *document.MetadataService
	Chunks         *document.ChunkService
	DefaultPerPage int
}

func (h *DocumentsHandler) Register(g *echo.Group) {
	g.GET("/:crn/search", h.search)
	g.GET("/:crn/documents/:documentId/pages/:pageNumber/metadata", h.pageMetadata)
	g.GET("/:crn/documents/:documentId/pages/:pageNumber/chunks", h.pageChunks)
}

// pageMetadata returns the combined metadata record for one page.
func (h *DocumentsHandler) pageMetadata(c echo.Context) error {
	_, docID, pageNumber, err := pageParams(c)
	if err != nil {
		return err
	}
	meta, err := h.Metadata.Combined(c.Request().Context(), docID, pageNumber)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meta)
}

// pageChunks returns overlay DTOs for one page. ?align=true opts into
// highlight overlap resolution; ?highlight= carries an encoded box
// that is decoded with the sanitizing codec and echoed back.
func (h *DocumentsHandler) pageChunks(c echo.Context) error {
	crn, docID, pageNumber, err := pageParams(c)
	if err != nil {
		return err
	}
	alignOverlaps, _ := strconv.ParseBool(c.QueryParam("align"))
	searchTerm := c.QueryParam("searchTerm")

	chunks, err := h.Chunks.PageChunks(c.Request().Context(), docID, pageNumber, crn.String(), searchTerm, alignOverlaps)
	if err != nil {
		return err
	}

	resp := map[string]any{"chunks": chunks}
	if encoded := c.QueryParam("highlight"); encoded != "" {
		resp["highlight"] = highlight.Decode(encoded)
	}
	return c.JSON(http.StatusOK, resp)
}

// search runs a paginated keyword search across the case's chunks.
func (h *DocumentsHandler) search(c echo.Context) error {
	crn, err := caseref.Parse(c.Param("crn"))
	if err != nil {
		return err
	}
	keyword := c.QueryParam("keyword")
	if keyword == "" {
		return apperr.New(apperr.KindInvalidArgument, "keyword is required")
	}
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if page, err = positiveInt(raw, "page"); err != nil {
			return err
		}
	}
	perPage := h.DefaultPerPage
	if raw := c.QueryParam("perPage"); raw != "" {
		if perPage, err = positiveInt(raw, "perPage"); err != nil {
			return err
		}
	}

	hits, err := h.Chunks.KeywordSearch(c.Request().Context(), models.SearchQuery{
		Keyword:      keyword,
		CaseRef:      crn.String(),
		PageNumber:   page,
		ItemsPerPage: perPage,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"hits": hits, "page": page, "per_page": perPage})
}

// pageParams validates the three path parameters shared by the page
// endpoints. All failures are 400s raised before any index call.
func pageParams(c echo.Context) (caseref.CRN, string, int, error) {
	crn, err := caseref.Parse(c.Param("crn"))
	if err != nil {
		return "", "", 0, err
	}
	docID, err := parseDocumentID(c.Param("documentId"))
	if err != nil {
		return "", "", 0, err
	}
	pageNumber, err := positiveInt(c.Param("pageNumber"), "pageNumber")
	if err != nil {
		return "", "", 0, err
	}
	return crn, docID, pageNumber, nil
}

func parseDocumentID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id.Version() != 4 {
		return "", apperr.Newf(apperr.KindInvalidArgument, "document id must be a v4 UUID, got %q", raw)
	}
	return id.String(), nil
}

// positiveInt rejects anything that is not a strictly positive
// integer; decimals never pass.
func positiveInt(raw, name string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.Newf(apperr.KindInvalidArgument, "%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}
