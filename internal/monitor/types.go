package monitor

import "time"

// SegmentMessage is one journaled segment broadcast to connected viewers.
type SegmentMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Speaker   string    `json:"speaker,omitempty"`
}
