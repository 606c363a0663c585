package events

import (
	"encoding/json"
	"time"
)

// Event types emitted by the resume workflow.
const (
	TypeResumeUploaded          = "resume.uploaded"
	TypeResumeUpdated           = "resume.updated"
	TypeRecommendationsServed   = "recommendations.served"
	TypeRecommendationsApplied  = "recommendations.applied"
	TypeRecommendationsRejected = "recommendations.rejected"
)

// Version is bumped when the payload shape changes incompatibly.
const Version = 1

// Event is the payload delivered to downstream consumers.
type Event struct {
	Type       string         `json:"type"`
	DocumentID string         `json:"documentId,omitempty"`
	UserID     string         `json:"userId"`
	RequestID  string         `json:"requestId,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Version    int            `json:"version"`
	Data       map[string]any `json:"data,omitempty"`
}

// New stamps an event of the given type.
func New(eventType, userID, documentID string, data map[string]any) Event {
	return Event{
		Type:       eventType,
		DocumentID: documentID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Version:    Version,
		Data:       data,
	}
}

// Encode returns the JSON representation of an event.
func Encode(evt Event) ([]byte, error) {
	return json.Marshal(evt)
}

// Decode parses a JSON payload into an Event.
func Decode(payload []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}
