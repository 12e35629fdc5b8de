package events

import "time"

const (
	TypeBookCreated   = "book.created"
	TypeReviewCreated = "review.created"
)

// Event is one catalog mutation announced to connected clients.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

func BookCreated(payload any) Event {
	return Event{Type: TypeBookCreated, Payload: payload, At: time.Now().UTC()}
}

func ReviewCreated(payload any) Event {
	return Event{Type: TypeReviewCreated, Payload: payload, At: time.Now().UTC()}
}
