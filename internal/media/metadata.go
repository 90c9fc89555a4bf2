package media

import "encoding/json"

func encodeMetadata(m map[string]any) json.RawMessage {
	data, err := json.Marshal(m)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}
