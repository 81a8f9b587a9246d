package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// acceptedEvent is the wire payload of a "document accepted" message.
type acceptedEvent struct {
	DocumentID string    `json:"document_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}

func encodeEvent(documentID string, at time.Time) ([]byte, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("encode event: empty document id")
	}
	return json.Marshal(acceptedEvent{DocumentID: documentID, AcceptedAt: at.UTC()})
}

// decodeEvent also accepts a bare document id so older publishers keep working.
func decodeEvent(data []byte) (acceptedEvent, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return acceptedEvent{}, fmt.Errorf("decode event: empty payload")
	}
	if !strings.HasPrefix(raw, "{") {
		return acceptedEvent{DocumentID: raw}, nil
	}
	var ev acceptedEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return acceptedEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.DocumentID == "" {
		return acceptedEvent{}, fmt.Errorf("decode event: missing document_id")
	}
	return ev, nil
}
