package models

// BoundingBox is a page-relative rectangle in fractional units.
// Top/Left locate the upper-left corner; Bottom and Right are derived.
type BoundingBox struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BoundingBox) Bottom() float64 { return b.Top + b.Height }
func (b BoundingBox) Right() float64  { return b.Left + b.Width }

// Chunk is one OCR/layout unit on a document page. ChunkIndex defines
// document order within the page; highlight alignment depends on it.
type Chunk struct {
	ChunkID     string       `json:"chunk_id"`
	ChunkType   string       `json:"chunk_type"`
	ChunkIndex  int          `json:"chunk_index"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
	ChunkText   string       `json:"chunk_text"`
	CaseRef     string       `json:"case_ref,omitempty"`
}

// ChunkHit wraps a chunk together with the identifier the index
// returned it under.
type ChunkHit struct {
	ID     string `json:"id"`
	Source Chunk  `json:"source"`
}

// ChunkOverlay is the minimal chunk DTO handed back for overlay
// rendering: no text, just identity and geometry.
type ChunkOverlay struct {
	ChunkID     string       `json:"chunk_id"`
	ChunkType   string       `json:"chunk_type"`
	ChunkIndex  int          `json:"chunk_index"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
}

// PageMetadata is the rendering metadata record for one page, as
// stored in the page metadata index.
type PageMetadata struct {
	SourceDocID string  `json:"source_doc_id"`
	PageNum     int     `json:"page_num"`
	PageCount   int     `json:"page_count"`
	PageWidth   float64 `json:"page_width"`
	PageHeight  float64 `json:"page_height"`
	ImageURI    string  `json:"s3_page_image_s3_uri"`
	Text        string  `json:"text"`
}

// DocumentMetadata is the document-level record carrying the
// correspondence classification. CorrespondenceType stays nil when the
// source record does not carry the field.
type DocumentMetadata struct {
	SourceDocID        string  `json:"source_doc_id"`
	CorrespondenceType *string `json:"correspondence_type"`
}

// CombinedMetadata is the merged record callers actually need for a
// page view: correspondence type from the document record, everything
// else from the page record.
type CombinedMetadata struct {
	CorrespondenceType *string `json:"correspondence_type"`
	PageCount          int     `json:"page_count"`
	PageNum            int     `json:"page_num"`
	ImageURI           string  `json:"image_uri"`
	Text               string  `json:"text"`
}

// SearchQuery carries the parameters of one keyword search against the
// chunk index. PageNumber is 1-based.
type SearchQuery struct {
	Keyword      string `json:"keyword"`
	CaseRef      string `json:"case_ref"`
	PageNumber   int    `json:"page_number"`
	ItemsPerPage int    `json:"items_per_page"`
}
