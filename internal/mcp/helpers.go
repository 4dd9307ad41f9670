package mcpserver

import (
	"encoding/json"
	"fmt"

	"sitebuilder/internal/domain"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// propsArg reads a props object from args. Clients send either a JSON
// object or a JSON-encoded string.
func propsArg(args map[string]any, key string) (domain.Props, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return domain.Props(v).Clone(), nil
	case string:
		if v == "" {
			return nil, nil
		}
		var p domain.Props
		if err := parseJSON(v, &p); err != nil {
			return nil, fmt.Errorf("%s: invalid JSON object: %w", key, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%s must be an object", key)
	}
}

// componentSummary is the compact form of a component returned by list tools.
type componentSummary struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Order    int          `json:"order"`
	ParentID string       `json:"parentId,omitempty"`
	Selected bool         `json:"selected,omitempty"`
	Props    domain.Props `json:"props"`
}

func summarize(cs []domain.Component, selectedID string) []componentSummary {
	out := make([]componentSummary, len(cs))
	for i, c := range cs {
		out[i] = componentSummary{
			ID:       c.ID,
			Type:     string(c.Type),
			Order:    c.Order,
			ParentID: c.ParentID,
			Selected: c.ID == selectedID,
			Props:    c.Props,
		}
	}
	return out
}
