package store

import "encoding/json"

// ListMode selects the output form of List.
type ListMode int

const (
	ListJSON ListMode = iota
	ListText
)

type listJSON struct {
	Images []string `json:"Images"`
}

// List enumerates every NON_EMPTY entry in ascending slot-index order.
func (s *Store) List(mode ListMode) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, e := range s.meta {
		if e.isValid() {
			ids = append(ids, e.ImgID)
		}
	}
	if ids == nil {
		ids = []string{}
	}

	switch mode {
	case ListJSON:
		out, err := json.Marshal(listJSON{Images: ids})
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		if len(ids) == 0 {
			return "<empty imgFS>\n", nil
		}
		text := ""
		for _, id := range ids {
			text += id + "\n"
		}
		return text, nil
	}
}
