package graph

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// jsonEntity is the export shape of one record.
type jsonEntity struct {
	ID    int64          `json:"id"`
	Kind  string         `json:"kind"`
	Attrs map[string]any `json:"attrs"`
}

// MarshalJSON renders the graph as a stable JSON document: entities in
// transaction order, attribute keys sorted by the encoder, references as
// plain identity numbers.
func (h *Handle) MarshalJSON() ([]byte, error) {
	out := make([]jsonEntity, 0, len(h.entities))
	for _, e := range h.entities {
		je := jsonEntity{ID: int64(e.ID), Kind: e.Kind.String(), Attrs: make(map[string]any, len(e.Attrs))}
		for k, v := range e.Attrs {
			switch rv := v.(type) {
			case Ident:
				je.Attrs[k] = int64(rv)
			case []Ident:
				refs := make([]int64, len(rv))
				for i, id := range rv {
					refs[i] = int64(id)
				}
				je.Attrs[k] = refs
			default:
				je.Attrs[k] = v
			}
		}
		out = append(out, je)
	}
	return json.Marshal(struct {
		Entities []jsonEntity `json:"entities"`
	}{out})
}

// WriteJSON writes the JSON export to w.
func (h *Handle) WriteJSON(w io.Writer) error {
	data, err := h.MarshalJSON()
	if err != nil {
		return fmt.Errorf("graph: encode json: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("graph: write json: %w", err)
	}
	return nil
}
