// Package highlight resolves overlapping highlighted page regions into
// a non-overlapping set of bounding boxes, and provides the transport
// codec for box coordinates.
package highlight

import (
	"github.com/ministryofjustice/cica-review-case-documents-sub001/models"
)

// Align reduces the highlighted chunks to a minimal set of
// non-overlapping boxes with a single greedy pass. The outcome depends
// on input order: earlier chunks act as already placed, later ones are
// discarded, merged or trimmed against them, so callers must supply
// chunks in ascending chunk_index order. Chunks without a bounding box
// pass through untouched.
//
// Overlap at a placed box's top edge (a later chunk lying entirely
// above an earlier one) is intentionally left alone; pages are
// processed top to bottom, so only the bottom-edge case occurs in
// practice.
func Align(chunks []models.Chunk) []models.Chunk {
	out := make([]models.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.BoundingBox == nil {
			out = append(out, c)
			continue
		}
		box := *c.BoundingBox
		discarded := false
		for i := range out {
			placed := out[i].BoundingBox
			if placed == nil {
				continue
			}
			switch {
			case containedIn(box, *placed):
				discarded = true
			case verticallyContainedIn(box, *placed) && overlapsHorizontally(box, *placed):
				// Same line: widen the placed box to cover both spans.
				right := max(box.Right(), placed.Right())
				placed.Left = min(placed.Left, box.Left)
				placed.Width = right - placed.Left
				discarded = true
			case overlapsHorizontally(box, *placed) && box.Top < placed.Bottom() && box.Bottom() > placed.Bottom():
				// Hangs below a placed box in the same column: keep
				// only the part below it, then keep comparing.
				bottom := box.Bottom()
				box.Top = placed.Bottom()
				box.Height = max(0, bottom-box.Top)
			}
			if discarded {
				break
			}
		}
		if discarded || box.Height <= 0 {
			continue
		}
		c.BoundingBox = &box
		out = append(out, c)
	}
	return out
}

// AlignBoxes is Align over bare boxes, for callers that have no chunk
// identity to carry.
func AlignBoxes(boxes []models.BoundingBox) []models.BoundingBox {
	chunks := make([]models.Chunk, len(boxes))
	for i := range boxes {
		b := boxes[i]
		chunks[i].BoundingBox = &b
	}
	aligned := Align(chunks)
	out := make([]models.BoundingBox, 0, len(aligned))
	for _, c := range aligned {
		out = append(out, *c.BoundingBox)
	}
	return out
}

func containedIn(b, outer models.BoundingBox) bool {
	return b.Top >= outer.Top && b.Bottom() <= outer.Bottom() &&
		b.Left >= outer.Left && b.Right() <= outer.Right()
}

func verticallyContainedIn(b, outer models.BoundingBox) bool {
	return b.Top >= outer.Top && b.Bottom() <= outer.Bottom()
}

func overlapsHorizontally(a, b models.BoundingBox) bool {
	return a.Left < b.Right() && a.Right() > b.Left
}
