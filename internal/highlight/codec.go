package highlight

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/ministryofjustice/cica-review-case-documents-sub001/models"
)

// Encode serializes a single bounding box as base64 of a JSON
// one-element array, compact enough for URLs and data attributes.
func Encode(box models.BoundingBox) string {
	payload, _ := json.Marshal([]models.BoundingBox{box})
	return base64.StdEncoding.EncodeToString(payload)
}

// Decode reverses Encode. It never fails: the input arrives on an
// untrusted path (a user-controlled URL parameter), so anything that
// is not a JSON array of well-formed boxes degrades to zero boxes
// instead of erroring the request. A payload that is not an array at
// all yields a single zero box.
func Decode(encoded string) []models.BoundingBox {
	zero := []models.BoundingBox{{}}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return zero
	}
	var elems []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return zero
	}
	out := make([]models.BoundingBox, 0, len(elems))
	for _, elem := range elems {
		out = append(out, sanitizeBox(elem))
	}
	if len(out) == 0 {
		return zero
	}
	return out
}

// sanitizeBox maps one decoded element to a box, replacing the whole
// element with a zero box on any unknown key or non-numeric value.
func sanitizeBox(elem map[string]json.RawMessage) models.BoundingBox {
	var box models.BoundingBox
	for key, val := range elem {
		n, ok := asNumber(val)
		if !ok {
			return models.BoundingBox{}
		}
		switch key {
		case "top":
			box.Top = n
		case "left":
			box.Left = n
		case "width":
			box.Width = n
		case "height":
			box.Height = n
		default:
			return models.BoundingBox{}
		}
	}
	return box
}

func asNumber(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	// Tolerate numbers that arrive as strings.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
