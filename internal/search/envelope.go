package search

import "encoding/json"

// The index answers in two envelope dialects: keyword searches nest
// hits as {"hits":{"hits":[...]}} while the metadata lookups can hand
// back a bare {"hits":[...]} array. hitList decodes both.
type searchResponse struct {
	Hits hitList `json:"hits"`
}

type hitList struct {
	Hits []hit
}

func (l *hitList) UnmarshalJSON(b []byte) error {
	var flat []hit
	if err := json.Unmarshal(b, &flat); err == nil {
		l.Hits = flat
		return nil
	}
	var nested struct {
		Hits []hit `json:"hits"`
	}
	if err := json.Unmarshal(b, &nested); err != nil {
		return err
	}
	l.Hits = nested.Hits
	return nil
}

type hit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}
