package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// unwrapEnvelope normalizes the service's inconsistent response shapes.
// Some endpoints return the payload bare, others wrapped as {"data": ...};
// callers always see the bare payload.
func unwrapEnvelope(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty response body")
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Data) > 0 {
			trimmed = envelope.Data
		}
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
