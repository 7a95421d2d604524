// Package document orchestrates the search layer into the two
// page-level operations callers consume: combined page metadata and
// overlay-ready chunk lists.
package document

import (
	"context"
	"log"

	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/apperr"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/highlight"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/models"
)

// Searcher is the slice of the query layer these services need.
type Searcher interface {
	SearchChunksByKeyword(ctx context.Context, q models.SearchQuery) ([]models.ChunkHit, error)
	GetPageMetadata(ctx context.Context, documentID string, pageNumber int) (*models.PageMetadata, error)
	GetDocumentMetadata(ctx context.Context, documentID string) (*models.DocumentMetadata, error)
	GetChunksForPage(ctx context.Context, documentID string, pageNumber int, crn, searchTerm string) ([]models.Chunk, error)
}

// MetadataService combines the page rendering record and the
// document-level correspondence record into one response.
type MetadataService struct {
	Search Searcher
	Logger *log.Logger
}

// Combined fetches both metadata records sequentially and merges them.
// The lookups are deliberately not parallel: the second is never
// attempted when the first fails or finds nothing.
func (s *MetadataService) Combined(ctx context.Context, documentID string, pageNumber int) (*models.CombinedMetadata, error) {
	if pageNumber < 1 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "page number must be a positive integer, got %d", pageNumber)
	}

	page, err := s.Search.GetPageMetadata(ctx, documentID, pageNumber)
	if err != nil {
		return nil, err
	}
	if page == nil {
		s.logf("page metadata not found for document %s page %d", documentID, pageNumber)
		return nil, apperr.New(apperr.KindNotFound, "Page metadata not found")
	}

	doc, err := s.Search.GetDocumentMetadata(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		s.logf("document metadata not found for document %s", documentID)
		return nil, apperr.New(apperr.KindNotFound, "Page metadata not found")
	}

	// The page record comes from an external system; its page number
	// is re-checked before it is placed in the result.
	if page.PageNum < 1 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "index returned non-positive page number %d", page.PageNum)
	}

	return &models.CombinedMetadata{
		CorrespondenceType: doc.CorrespondenceType,
		PageCount:          page.PageCount,
		PageNum:            page.PageNum,
		ImageURI:           page.ImageURI,
		Text:               page.Text,
	}, nil
}

func (s *MetadataService) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// ChunkService returns a page's chunks as minimal overlay DTOs,
// optionally resolving highlight overlaps first.
type ChunkService struct {
	Search Searcher
	Logger *log.Logger
}

// PageChunks fetches the chunks for one (document, page) pair scoped
// to a case. When alignOverlaps is set the highlight alignment pass
// runs over the result; otherwise the raw list is returned unchanged.
// Query-layer failures pass through with their original status.
func (s *ChunkService) PageChunks(ctx context.Context, documentID string, pageNumber int, crn, searchTerm string, alignOverlaps bool) ([]models.ChunkOverlay, error) {
	if pageNumber < 1 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "page number must be a positive integer, got %d", pageNumber)
	}

	chunks, err := s.Search.GetChunksForPage(ctx, documentID, pageNumber, crn, searchTerm)
	if err != nil {
		return nil, err
	}
	if alignOverlaps {
		fetched := len(chunks)
		chunks = highlight.Align(chunks)
		if s.Logger != nil && len(chunks) != fetched {
			s.Logger.Printf("alignment reduced %d chunks to %d for document %s page %d", fetched, len(chunks), documentID, pageNumber)
		}
	}

	out := make([]models.ChunkOverlay, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, models.ChunkOverlay{
			ChunkID:     c.ChunkID,
			ChunkType:   c.ChunkType,
			ChunkIndex:  c.ChunkIndex,
			BoundingBox: c.BoundingBox,
		})
	}
	return out, nil
}

// KeywordSearch runs a paginated keyword search over a case's chunks.
func (s *ChunkService) KeywordSearch(ctx context.Context, q models.SearchQuery) ([]models.ChunkHit, error) {
	if q.Keyword == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "keyword is required")
	}
	return s.Search.SearchChunksByKeyword(ctx, q)
}
