package broadcast

import (
	"encoding/json"
	"fmt"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

// envelope is the frame sent to viewers: {"event": "cast vote", "data": {...}}.
type envelope struct {
	Event string       `json:"event"`
	Data  domain.Event `json:"data"`
}

type envelopeHeader struct {
	Event string `json:"event"`
	Data  struct {
		PollID string `json:"pollId"`
	} `json:"data"`
}

func Encode(event domain.Event) ([]byte, error) {
	payload, err := json.Marshal(envelope{Event: event.EventName(), Data: event})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", event.EventName(), err)
	}
	return payload, nil
}

func decodeHeader(payload []byte) (envelopeHeader, error) {
	var h envelopeHeader
	if err := json.Unmarshal(payload, &h); err != nil {
		return h, fmt.Errorf("failed to decode event frame: %w", err)
	}
	return h, nil
}
