package domain

import "time"

// TimestampLayout formats the display-only timestamp of a history entry.
const TimestampLayout = "2006. 1. 2. 15:04:05"

// HistoryEntry records one completed generation cycle. ID is the creation
// time in milliseconds and doubles as identity.
type HistoryEntry struct {
	ID           int64        `json:"id"`
	Prompt       string       `json:"prompt"`
	Model        string       `json:"model"`
	InitialImage ImagePayload `json:"initialImage"`
	FinalImage   ImagePayload `json:"finalImage"`
	Timestamp    string       `json:"timestamp"`
}

// NewHistoryEntry stamps an entry with id and display timestamp derived from now.
func NewHistoryEntry(now time.Time, prompt, model string, initial, final ImagePayload) HistoryEntry {
	return HistoryEntry{
		ID:           now.UnixMilli(),
		Prompt:       prompt,
		Model:        model,
		InitialImage: initial,
		FinalImage:   final,
		Timestamp:    now.Format(TimestampLayout),
	}
}
